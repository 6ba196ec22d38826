// tscinfo runs the calibration and prints the conversion factors.
//
// By default the sources are the host ones (TSCCAL_* environment, see
// package platform). -sim feeds simulated inputs instead, e.g.:
//
//	tscinfo -sim -vendor intel -family 6 -model 0x17 -busfreq 133000000 -perfsts 20
package main

import (
	"flag"
	"fmt"

	"github.com/golang/glog"

	"github.com/templexxx/tsccal"
	"github.com/templexxx/tsccal/internal/xbytes"
	"github.com/templexxx/tsccal/platform"
)

var (
	sim      = flag.Bool("sim", false, "use simulated sources but not the host ones")
	vendor   = flag.String("vendor", "intel", "simulated vendor: intel or amd")
	family   = flag.Int("family", 6, "simulated cpu family")
	model    = flag.Int("model", 0x2A, "simulated cpu model")
	busFreq  = flag.Uint64("busfreq", 0, "simulated FSBFrequency property (Hz), 0 means absent")
	cpuFreq  = flag.Uint64("cpufreq", 0, "simulated CPUFrequency property (Hz), 0 means absent")
	perfSts  = flag.Uint64("perfsts", 0, "simulated IA32_PERF_STS bus ratio")
	halfStep = flag.Bool("n2", false, "simulated IA32_PERF_STS N/2 flag")
	bootArgs = flag.String("args", "", "boot arguments, e.g. \"busratio=125 fsb=133\"")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	var info *tsccal.Info
	if *sim {
		i, err := simulate()
		if err != nil {
			glog.Exitf("failed to simulate: %v", err)
		}
		info = i
	} else {
		cfg, err := platform.LoadConfig()
		if err != nil {
			glog.Exitf("failed to load config: %v", err)
		}
		if *bootArgs != "" {
			cfg.BootArgs += " " + *bootArgs
		}
		s, err := platform.Open(cfg)
		if err != nil {
			glog.Exitf("failed to open host sources: %v", err)
		}
		defer s.Close()

		fmt.Printf("cpu: %s\n", platform.Tag())
		info = s.Calibrate()
	}

	printInfo(info)
}

func simulate() (*tsccal.Info, error) {
	args, err := platform.ParseCmdline(*bootArgs)
	if err != nil {
		return nil, err
	}

	fw := simFirmware{}
	if *busFreq != 0 {
		fw[tsccal.PropFSBFreq] = xbytes.PutUint64(*busFreq)
	}
	if *cpuFreq != 0 {
		fw[tsccal.PropCPUFreq] = xbytes.PutUint64(*cpuFreq)
	}

	perf := *perfSts << 40
	if *halfStep {
		perf |= 1 << 46
	}
	regs := simRegisters{tsccal.MSRPerfStatus: perf}

	c := simCPU{family: *family, model: *model}
	switch *vendor {
	case "intel":
	case "amd":
		c.vendor = tsccal.VendorAMD
		c.hz = *cpuFreq
	default:
		return nil, fmt.Errorf("unknown vendor: %s", *vendor)
	}

	return tsccal.Calibrate(fw, args, regs, c), nil
}

func printInfo(i *tsccal.Info) {
	fmt.Println("-------")
	fmt.Printf("source: %s, signature: %s\n", i.Source, i.Signature)
	fmt.Printf("bus frequency: %d Hz, tsc frequency: %d Hz, granularity: %d, N/2: %t\n",
		i.BusFrequency, i.TSCFrequency, i.TSCGranularity, i.HalfStep)
	fmt.Printf("bus cvtt2n: %#x, cvtn2t: %#x\n", i.BusTicksToNanos, i.BusNanosToTicks)
	fmt.Printf("tsc cvtt2n: %#x, cvtn2t: %#x\n", i.TSCTicksToNanos, i.TSCNanosToTicks)
	fmt.Printf("bus2tsc: %d (%#x)\n", i.BusToTSC, i.BusToTSCFixed)
	fmt.Printf("flex ratio: %d, min: %d, max: %d, tsc at boot: %d\n",
		i.FlexRatio, i.FlexRatioMin, i.FlexRatioMax, i.TSCAtBoot)
	fmt.Printf("1s of tsc ticks: %dns\n", i.TSCToNanos(i.TSCFrequency))
}

type simFirmware map[string][]byte

func (f simFirmware) Property(path, name string) ([]byte, bool) {
	if path != tsccal.PlatformPath {
		return nil, false
	}
	v, ok := f[name]
	return v, ok
}

type simRegisters map[uint32]uint64

func (r simRegisters) ReadMSR(addr uint32) uint64 { return r[addr] }

type simCPU struct {
	vendor        tsccal.Vendor
	family, model int
	hz            uint64
}

func (c simCPU) Vendor() tsccal.Vendor                     { return c.vendor }
func (c simCPU) Family() int                               { return c.family }
func (c simCPU) Model() int                                { return c.model }
func (c simCPU) Hypervisor() (tsccal.HypervisorInfo, bool) { return tsccal.HypervisorInfo{}, false }
func (c simCPU) RealFrequency() uint64                     { return c.hz }
