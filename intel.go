package tsccal

// baseNHMClock is the bus frequency assumed when firmware doesn't
// publish one on PLATFORM_INFO parts.
const baseNHMClock uint64 = 133333333

func intelClassIs(c intelClass) func(Vendor, int, int) bool {
	return func(v Vendor, family, model int) bool {
		return v == VendorIntel && classifyIntel(family, model) == c
	}
}

// intelDefault handles parts with PLATFORM_INFO / FLEX_RATIO.
var intelDefault = strategy{
	name:  "intel",
	match: anyModel(VendorIntel),
	detect: func(p *probe) Result {
		flex := p.readMSR(MSRFlexRatio)
		platform := p.readMSR(MSRPlatformInfo)

		r := Result{
			FlexRatioMin: uint32(Bitfield(platform, 47, 40)),
			FlexRatioMax: uint32(Bitfield(platform, 15, 8)),
		}
		// No BIOS-programmed flex ratio: hardware max.
		r.Granularity = uint64(r.FlexRatioMax)
		if flex&bit(16) != 0 {
			r.FlexRatio = uint32(Bitfield(flex, 15, 8))
			if r.FlexRatio < r.FlexRatioMax {
				r.Granularity = uint64(r.FlexRatio)
			}
		}

		r.BusFrequency = p.fsbFrequency()
		if r.BusFrequency == 0 {
			p.log.Warningf("intel: no bus frequency from firmware, using %d Hz", baseNHMClock)
			r.BusFrequency = baseNHMClock
		}
		return r
	},
}

// intelCore2 handles Merom / Penryn. Bus frequency comes from firmware
// only; a missing one is defaulted by the calibrator.
var intelCore2 = strategy{
	name:  "intel-core2",
	match: intelClassIs(classCore2),
	detect: func(p *probe) Result {
		var r Result
		r.Granularity, r.HalfStep = perfStatusRatio(p.readMSR(MSRPerfStatus))
		r.BusFrequency = p.fsbFrequency()
		return r
	},
}

// intelLegacy handles Pentium 4 and Pentium M class parts.
//
// Old models have no usable ratio register, the ratio is derived from
// the CPU frequency the bootloader exported instead.
var intelLegacy = strategy{
	name: "intel-legacy",
	match: func(v Vendor, family, model int) bool {
		if v != VendorIntel {
			return false
		}
		c := classifyIntel(family, model)
		return c == classPentium4 || c == classPentiumM
	},
	detect: func(p *probe) Result {
		var r Result
		r.BusFrequency = p.fsbFrequency()

		family, model := p.cpu.Family(), p.cpu.Model()
		switch {
		case family == FamilyPentium4 && model < 2,
			family != FamilyPentium4 && model < 0xD:
			r.Granularity, r.HalfStep = perfStatusRatio(FakeMSR(p.cpuFrequency(), r.BusFrequency))
		case family == FamilyPentium4 && model == 2:
			r.Granularity = Bitfield(p.readMSR(MSREBCFrequency), 31, 24)
		default:
			r.Granularity, r.HalfStep = perfStatusRatio(p.readMSR(MSRPerfStatus))
		}
		return r
	},
}
