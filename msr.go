package tsccal

// Model-specific register addresses.
const (
	MSRPlatformInfo  uint32 = 0xCE
	MSRFlexRatio     uint32 = 0x194
	MSRPerfStatus    uint32 = 0x198 // IA32_PERF_STS
	MSREBCFrequency  uint32 = 0x2C  // Pentium 4 model 2.
	MSRAMDPerfStatus uint32 = 0xC0010042
	MSRAMDCOFVIDSts  uint32 = 0xC0010071
)

// Layout of IA32_PERF_STS, shared by FakeMSR.
const (
	ratioHigh   = 44
	ratioLow    = 40
	halfStepBit = 46
)

func bit(n uint) uint64 {
	return 1 << n
}

func bitmask(high, low uint) uint64 {
	return (bit(high) | (bit(high) - 1)) &^ (bit(low) - 1)
}

// Bitfield returns bits [low, high] of v shifted down to bit 0.
// high >= low and both in [0, 63].
func Bitfield(v uint64, high, low uint) uint64 {
	return (v & bitmask(high, low)) >> low
}

// FakeMSR converts a CPU frequency and a bus frequency into a value laid
// out like IA32_PERF_STS: rounded multiplier in bits 44-40, N/2 flag in
// bit 46. It returns 0 if either frequency is 0.
//
// The multiplier is rounded up from x.75 on, not from x.5:
// 12900 thousandths become (12900+250)/1000 = 13, 12480 stay 12.
// The N/2 flag is set for fractions strictly inside (0.25, 0.75).
func FakeMSR(frequency, busFrequency uint64) uint64 {
	if frequency == 0 || busFrequency == 0 {
		return 0
	}
	busKHz := busFrequency / Kilo
	if busKHz == 0 {
		return 0
	}

	multi := frequency / busKHz // multiplier * 1000.

	msr := (((multi + 250) / 1000) << ratioLow) & bitmask(ratioHigh, ratioLow)

	frac := multi % 1000
	if frac > 250 && frac < 750 {
		msr |= bit(halfStepBit)
	}
	return msr
}

// perfStatusRatio decodes the bus ratio and the N/2 flag of an
// IA32_PERF_STS layout value, native or from FakeMSR.
func perfStatusRatio(v uint64) (granularity uint64, halfStep bool) {
	return Bitfield(v, ratioHigh, ratioLow), v&bit(halfStepBit) != 0
}
