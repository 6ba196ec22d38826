package tsccal

import "github.com/golang/glog"

// Firmware looks up properties published by platform firmware.
// ok is false if the path or the property doesn't exist.
type Firmware interface {
	Property(path, name string) (value []byte, ok bool)
}

// BootArgs looks up integer boot arguments.
// A bare flag (e.g. "-cpuEFI") is present with value 1.
type BootArgs interface {
	Int(name string) (v int64, ok bool)
}

// Registers reads model-specific registers.
// Unreadable registers read as 0.
type Registers interface {
	ReadMSR(addr uint32) uint64
}

// Vendor is the CPU vendor class.
type Vendor int

const (
	VendorIntel Vendor = iota // Intel and Intel-compatible.
	VendorAMD
)

func (v Vendor) String() string {
	if v == VendorAMD {
		return "AMD"
	}
	return "Intel"
}

// HypervisorInfo is what a hypervisor reports about the virtual timer.
type HypervisorInfo struct {
	Family          uint32
	TSCFrequencyKHz uint32
	BusFrequencyKHz uint32
}

// CPU identifies the running processor.
type CPU interface {
	Vendor() Vendor
	Family() int
	Model() int
	// Hypervisor returns ok == false on bare metal.
	Hypervisor() (HypervisorInfo, bool)
	// RealFrequency is a vendor specific measured core frequency in Hz,
	// 0 if unknown.
	RealFrequency() uint64
}

// Logger is the diagnostic sink. It must never fail the caller.
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
}

type glogLogger struct{}

func (glogLogger) Infof(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

func (glogLogger) Warningf(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}

type noBootArgs struct{}

func (noBootArgs) Int(string) (int64, bool) { return 0, false }

type noFirmware struct{}

func (noFirmware) Property(string, string) ([]byte, bool) { return nil, false }

type noRegisters struct{}

func (noRegisters) ReadMSR(uint32) uint64 { return 0 }
