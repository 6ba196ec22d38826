package tsccal

// Result is what a strategy learned about the bus and the bus ratio.
type Result struct {
	BusFrequency uint64
	Granularity  uint64
	HalfStep     bool
	// TSCFrequency is set only when the TSC is known to tick at a rate
	// independent of the bus ratio. Equal to BusFrequency means 1:1.
	TSCFrequency uint64

	FlexRatio    uint32
	FlexRatioMin uint32
	FlexRatioMax uint32
}

// strategy obtains the bus frequency and ratio for one CPU family.
type strategy struct {
	name   string
	match  func(v Vendor, family, model int) bool
	detect func(p *probe) Result
	// report, if set, runs after the boot overrides were applied.
	report func(p *probe, r Result)
}

// strategies is the dispatch table, first match wins.
// The last entry of each vendor is its catch-all.
var strategies = []strategy{
	intelCore2,
	intelLegacy,
	intelDefault,
	amdK8,
	amdK10,
	amdAPU,
	amdDefault,
}

func selectStrategy(table []strategy, v Vendor, family, model int) strategy {
	for _, s := range table {
		if s.match(v, family, model) {
			return s
		}
	}
	if v == VendorAMD {
		return amdDefault
	}
	return intelDefault
}

func anyModel(v Vendor) func(Vendor, int, int) bool {
	return func(vendor Vendor, _, _ int) bool { return vendor == v }
}

func families(v Vendor, fs ...int) func(Vendor, int, int) bool {
	return func(vendor Vendor, family, _ int) bool {
		if vendor != v {
			return false
		}
		for _, f := range fs {
			if f == family {
				return true
			}
		}
		return false
	}
}

// applyBusRatio applies the busratio boot argument to a detected ratio.
//
// 0 becomes 1. A value above 30 whose last decimal digit isn't 0 carries
// a tenths digit: 125 means 12.5, i.e. granularity 12 plus N/2.
// Any other value is taken verbatim and clears N/2.
func applyBusRatio(ratio uint64) (granularity uint64, halfStep bool) {
	if ratio == 0 {
		ratio = 1
	}
	halfStep = ratio > 30 && ratio%10 != 0
	if halfStep {
		ratio /= 10
	}
	return ratio, halfStep
}
