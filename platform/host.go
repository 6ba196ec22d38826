package platform

import (
	"errors"

	"github.com/golang/glog"

	"github.com/templexxx/tsccal"
)

var (
	// ErrNoMSRDevice is returned when the msr driver isn't loaded.
	ErrNoMSRDevice = errors.New("msr device not found")
)

// Sources are the host calibration sources.
type Sources struct {
	Firmware DirFirmware
	BootArgs Cmdline
	CPU      HostCPU
	msr      *MSRFile
}

// Open collects the sources described by cfg.
// A missing msr device isn't fatal, registers then read as 0.
func Open(cfg Config) (*Sources, error) {
	args, err := ReadCmdline(cfg.Cmdline, cfg.BootArgs)
	if err != nil {
		return nil, err
	}

	s := &Sources{
		Firmware: DirFirmware{Root: cfg.FirmwareRoot, BigEndian: cfg.BigEndianProperties},
		BootArgs: args,
		CPU:      HostCPU{VMMBusKHz: cfg.VMMBusKHz},
	}

	s.msr, err = OpenMSR(cfg.MSRDevice)
	if err != nil {
		glog.Warningf("platform: %v, MSRs read as 0", err)
	}
	return s, nil
}

// Registers returns the MSR reader. Without the msr device every
// register reads as 0.
func (s *Sources) Registers() tsccal.Registers {
	return s.msr
}

// Calibrate runs the calibration on the host sources and publishes it.
func (s *Sources) Calibrate(opts ...tsccal.Option) *tsccal.Info {
	return tsccal.Calibrate(s.Firmware, s.BootArgs, s.Registers(), s.CPU, opts...)
}

// Close releases the msr device.
func (s *Sources) Close() error {
	if s.msr == nil {
		return nil
	}
	return s.msr.Close()
}
