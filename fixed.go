package tsccal

import (
	"math"
	"math/bits"
)

// Decimal powers.
const (
	Kilo uint64 = 1000
	Mega        = Kilo * Kilo
	Giga        = Kilo * Mega
)

// nanosScale is one second in nanoseconds as a 32.32 value.
const nanosScale = Giga << 32

// ToNanos returns the 32.32 number of nanoseconds per tick of a clock
// running at freq Hz.
// Returns 0 for freq 0 or for clocks faster than 2^32 GHz.
func ToNanos(freq uint64) uint64 {
	if freq == 0 {
		return 0
	}
	return nanosScale / freq
}

// ToTicks returns the reciprocal of a 32.32 ticks-to-nanos factor:
// ticks per nanosecond, truncated.
// A zero factor saturates to math.MaxUint64.
func ToTicks(toNanos uint64) uint64 {
	if toNanos == 0 {
		return math.MaxUint64
	}
	return math.MaxUint64 / toNanos
}

// Combine multiplies two 32.32 values and returns the integer part of
// the product (the high half of the 128-bit result).
//
// Combine(busTicksToNanos, tscNanosToTicks) is TSC ticks per bus tick.
func Combine(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	return hi
}

// Cvt scales value by a 32.32 conversion factor: (value * conversion) >> 32.
// The 128-bit intermediate never overflows, the result wraps above 2^64.
func Cvt(value, conversion uint64) uint64 {
	hi, lo := bits.Mul64(value, conversion)
	return hi<<32 | lo>>32
}
