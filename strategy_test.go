package tsccal

import "testing"

func TestSelectStrategy(t *testing.T) {
	cases := []struct {
		vendor        Vendor
		family, model int
		exp           string
	}{
		{VendorIntel, 6, 0x0F, "intel-core2"},
		{VendorIntel, 6, 0x17, "intel-core2"},
		{VendorIntel, 6, 0x1D, "intel-core2"},
		{VendorIntel, 6, 0x09, "intel-legacy"},
		{VendorIntel, 6, 0x0D, "intel-legacy"},
		{VendorIntel, 0xF, 2, "intel-legacy"},
		{VendorIntel, 6, 0x2A, "intel"},
		{VendorIntel, 6, 0x9E, "intel"},
		{VendorAMD, 0x0F, 0, "amd-k8"},
		{VendorAMD, 0x10, 0, "amd-k10"},
		{VendorAMD, 0x12, 0, "amd-k10"},
		{VendorAMD, 0x06, 0, "amd-apu"},
		{VendorAMD, 0x14, 0, "amd-apu"},
		{VendorAMD, 0x15, 0, "amd-apu"},
		{VendorAMD, 0x16, 0, "amd-apu"},
		{VendorAMD, 0x17, 0, "amd"},
		{VendorAMD, 0x19, 0, "amd"},
	}
	for _, c := range cases {
		s := selectStrategy(strategies, c.vendor, c.family, c.model)
		if s.name != c.exp {
			t.Fatalf("%s %s mismatch, exp: %s, got: %s", c.vendor, Signature(c.family, c.model), c.exp, s.name)
		}
	}

	if s := selectStrategy(nil, VendorAMD, 0x10, 0); s.name != "amd" {
		t.Fatalf("empty table should fall back to amd, got: %s", s.name)
	}
	if s := selectStrategy(nil, VendorIntel, 6, 0x17); s.name != "intel" {
		t.Fatalf("empty table should fall back to intel, got: %s", s.name)
	}
}

func TestApplyBusRatio(t *testing.T) {
	cases := []struct {
		ratio    uint64
		exp      uint64
		halfStep bool
	}{
		{0, 1, false},
		{1, 1, false},
		{12, 12, false},
		{30, 30, false},
		{31, 3, true}, // Above 30 the last digit is tenths.
		{40, 40, false},
		{125, 12, true},
		{95, 9, true},
		{100, 100, false},
	}
	for _, c := range cases {
		g, half := applyBusRatio(c.ratio)
		if g != c.exp || half != c.halfStep {
			t.Fatalf("applyBusRatio(%d) mismatch, exp: %d/%t, got: %d/%t", c.ratio, c.exp, c.halfStep, g, half)
		}
	}
}

func TestIntelDefault(t *testing.T) {
	platform := uint64(8)<<40 | uint64(36)<<8
	c := fakeCPU{vendor: VendorIntel, family: 6, model: 0x2A}

	p, _ := newProbe(t, firmware(PropFSBFreq, 100*Mega), fakeArgs{}, c)
	p.regs = fakeRegs{MSRPlatformInfo: platform}
	r := intelDefault.detect(p)
	if r.Granularity != 36 || r.FlexRatioMax != 36 || r.FlexRatioMin != 8 || r.FlexRatio != 0 {
		t.Fatalf("no flex mismatch: %+v", r)
	}
	if r.BusFrequency != 100*Mega {
		t.Fatalf("bus frequency mismatch, got: %d", r.BusFrequency)
	}

	// Flex enabled and below max.
	p.regs = fakeRegs{MSRPlatformInfo: platform, MSRFlexRatio: 1<<16 | 30<<8}
	if r = intelDefault.detect(p); r.Granularity != 30 || r.FlexRatio != 30 {
		t.Fatalf("flex below max mismatch: %+v", r)
	}

	// Flex enabled but not below max.
	p.regs = fakeRegs{MSRPlatformInfo: platform, MSRFlexRatio: 1<<16 | 40<<8}
	if r = intelDefault.detect(p); r.Granularity != 36 || r.FlexRatio != 40 {
		t.Fatalf("flex above max mismatch: %+v", r)
	}

	// Flex programmed but disabled.
	p.regs = fakeRegs{MSRPlatformInfo: platform, MSRFlexRatio: 30 << 8}
	if r = intelDefault.detect(p); r.Granularity != 36 || r.FlexRatio != 0 {
		t.Fatalf("flex disabled mismatch: %+v", r)
	}

	// No firmware bus frequency.
	p, _ = newProbe(t, firmware(), fakeArgs{}, c)
	if r = intelDefault.detect(p); r.BusFrequency != baseNHMClock {
		t.Fatalf("baseline bus mismatch, got: %d", r.BusFrequency)
	}
}

func TestIntelCore2(t *testing.T) {
	c := fakeCPU{vendor: VendorIntel, family: 6, model: 0x17}
	p, _ := newProbe(t, firmware(), fakeArgs{}, c)
	p.regs = fakeRegs{MSRPerfStatus: perfStatus(9, true)}
	r := intelCore2.detect(p)
	if r.Granularity != 9 || !r.HalfStep {
		t.Fatalf("perf status mismatch: %+v", r)
	}
	if r.BusFrequency != 0 {
		t.Fatalf("core2 has no bus baseline, got: %d", r.BusFrequency)
	}
}

func TestIntelLegacy(t *testing.T) {
	fw := firmware(PropFSBFreq, 100*Mega, PropCPUFreq, 1450*Mega)
	regs := fakeRegs{
		MSRPerfStatus:   perfStatus(11, false),
		MSREBCFrequency: 18 << 24,
	}
	cases := []struct {
		family, model int
		exp           uint64
		halfStep      bool
	}{
		{0xF, 0, 14, true},  // Synthesized: 14.5.
		{0xF, 1, 14, true},  // Synthesized.
		{0xF, 2, 18, false}, // EBC frequency id.
		{0xF, 3, 11, false}, // Perf status.
		{6, 0x09, 14, true}, // Pentium M, synthesized.
		{6, 0x0D, 11, false},
		{6, 0x0E, 11, false},
	}
	for _, c := range cases {
		p, _ := newProbe(t, fw, fakeArgs{}, fakeCPU{vendor: VendorIntel, family: c.family, model: c.model})
		p.regs = regs
		r := intelLegacy.detect(p)
		if r.Granularity != c.exp || r.HalfStep != c.halfStep || r.BusFrequency != 100*Mega {
			t.Fatalf("%s mismatch, exp: %d/%t, got: %+v", Signature(c.family, c.model), c.exp, c.halfStep, r)
		}
	}
}

func TestDetectFSB(t *testing.T) {
	amd := fakeCPU{vendor: VendorAMD, family: 0x10, realFreq: 3200 * Mega}

	p, _ := newProbe(t, firmware(), fakeArgs{ArgFSB: 166}, amd)
	if f := detectFSB(p); f != 166*Mega {
		t.Fatalf("fsb argument should win, got: %d", f)
	}

	p, _ = newProbe(t, firmware(), fakeArgs{}, amd)
	if f := detectFSB(p); f != 200*Mega {
		t.Fatalf("3.2GHz at x16 mismatch, got: %d", f)
	}

	// x15 against the assumed 200MHz bus.
	amd.realFreq = 3 * Giga
	p, _ = newProbe(t, firmware(), fakeArgs{}, amd)
	if f := detectFSB(p); f != 200*Mega {
		t.Fatalf("3GHz at x15 mismatch, got: %d", f)
	}

	amd.realFreq = 2990 * Mega // x14.95 rounds to 15.
	p, _ = newProbe(t, firmware(), fakeArgs{}, amd)
	if f := detectFSB(p); f != 2990*Mega/15 {
		t.Fatalf("2.99GHz mismatch, got: %d", f)
	}

	amd.realFreq = 0
	p, _ = newProbe(t, firmware(), fakeArgs{}, amd)
	if f := detectFSB(p); f != defaultBusFrequency {
		t.Fatalf("unknown cpu frequency should default, got: %d", f)
	}

	amd.realFreq = 20 * Mega // Multiplier rounds to 0.
	p, _ = newProbe(t, firmware(), fakeArgs{}, amd)
	if f := detectFSB(p); f != defaultBusFrequency {
		t.Fatalf("zero multiplier should default, got: %d", f)
	}
}

func TestAMDStrategies(t *testing.T) {
	for _, s := range []strategy{amdK8, amdK10, amdAPU} {
		p, _ := newProbe(t, firmware(PropFSBFreq, 100*Mega), fakeArgs{}, fakeCPU{vendor: VendorAMD, realFreq: 2500 * Mega})
		r := s.detect(p)
		// 12.5 against 200MHz rounds down to 12, the bus is then 2.5GHz/12.
		bus := 2500 * Mega / 12
		if r.BusFrequency != bus {
			t.Fatalf("%s bus mismatch, exp: %d, got: %d", s.name, bus, r.BusFrequency)
		}
		g, half := perfStatusRatio(FakeMSR(2500*Mega, bus))
		if r.Granularity != g || r.HalfStep != half {
			t.Fatalf("%s ratio mismatch, exp: %d/%t, got: %+v", s.name, g, half, r)
		}
	}

	p, _ := newProbe(t, firmware(PropFSBFreq, 100*Mega), fakeArgs{}, fakeCPU{vendor: VendorAMD, family: 0x17, realFreq: 2900 * Mega})
	r := amdDefault.detect(p)
	if r.BusFrequency != 100*Mega || r.Granularity != 29 || r.HalfStep {
		t.Fatalf("amd default mismatch: %+v", r)
	}
}
