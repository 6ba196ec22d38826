package tsccal

// defaultBusFrequency is assumed whenever nothing better is known.
const defaultBusFrequency uint64 = 200 * Mega

// AMD families (CPUID display family).
const (
	FamilyAMDK8 = 0x0F
)

var (
	amdK8 = amdStrategy("amd-k8", MSRAMDPerfStatus, FamilyAMDK8)
	// K10 and Llano.
	amdK10 = amdStrategy("amd-k10", MSRAMDCOFVIDSts, 0x10, 0x12)
	// Bobcat, Bulldozer, Jaguar APUs.
	amdAPU = func() strategy {
		s := amdStrategy("amd-apu", MSRAMDCOFVIDSts, 0x06, 0x14, 0x15, 0x16)
		s.report = func(p *probe, r Result) {
			p.log.Infof("amd-apu: cpu frequency estimate %d MHz", r.Granularity*p.fsbFrequency()/Mega)
		}
		return s
	}()
)

// amdStrategy builds the strategy shared by the recognized AMD families:
// autodetected bus, ratio synthesized from the CPU frequency.
// The family status register is only logged.
func amdStrategy(name string, statusMSR uint32, fs ...int) strategy {
	return strategy{
		name:  name,
		match: families(VendorAMD, fs...),
		detect: func(p *probe) Result {
			var r Result
			r.BusFrequency = detectFSB(p)
			p.log.Infof("%s: status MSR 0x%x = 0x%x", name, statusMSR, p.regs.ReadMSR(statusMSR))
			r.Granularity, r.HalfStep = perfStatusRatio(FakeMSR(p.cpuFrequency(), r.BusFrequency))
			return r
		},
	}
}

// amdDefault handles unknown AMD families without bus autodetection.
var amdDefault = strategy{
	name:  "amd",
	match: anyModel(VendorAMD),
	detect: func(p *probe) Result {
		var r Result
		r.BusFrequency = p.fsbFrequency()
		r.Granularity, r.HalfStep = perfStatusRatio(FakeMSR(p.cpuFrequency(), r.BusFrequency))
		return r
	},
}

// detectFSB returns the AMD bus frequency in Hz.
//
// The fsb boot argument wins. Otherwise the multiplier against an
// assumed 200 MHz bus divides the CPU frequency.
func detectFSB(p *probe) uint64 {
	if f, ok := p.fsbOverride(); ok {
		return f
	}

	cpuFreq := p.cpuFrequency()
	multi, _ := perfStatusRatio(FakeMSR(cpuFreq, defaultBusFrequency))
	p.log.Infof("FSB detection: calculated multiplier %d, cpu frequency %d", multi, cpuFreq)

	if multi == 0 || cpuFreq == 0 {
		return defaultBusFrequency
	}
	if f := cpuFreq / multi; f != 0 {
		return f
	}
	return defaultBusFrequency
}
