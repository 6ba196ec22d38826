// Package tsccal computes, once at boot, the 32.32 fixed-point factors
// converting between bus-clock ticks, TSC ticks and nanoseconds.
//
// No floating point is involved: every factor is an unsigned 64-bit value
// holding (integer part << 32) | fraction, so the result can be used from
// contexts where the FPU is off limits.
//
// e.g.
// ```
//	info := tsccal.Calibrate(fw, args, regs, cpu)
//	ns := info.TSCToNanos(ticks)
// ```
// Calibrate must run exactly once, before any reader calls Get.
package tsccal

import (
	"fmt"
	"sync/atomic"

	"github.com/templexxx/cpu"
)

// Info is the calibration snapshot.
// It's built once and never modified after being published.
type Info struct {
	BusFrequency    uint64 // Hz.
	BusTicksToNanos uint64 // 32.32
	BusNanosToTicks uint64 // 32.32
	TSCFrequency    uint64 // Hz.
	TSCTicksToNanos uint64 // 32.32
	TSCNanosToTicks uint64 // 32.32
	TSCGranularity  uint64 // Bus ratio, >= 1.
	// BusToTSC is TSC ticks per bus tick, truncated to an integer.
	BusToTSC uint64
	// BusToTSCFixed is the same ratio as a 32.32 value.
	BusToTSCFixed uint64

	FlexRatio    uint32
	FlexRatioMin uint32
	FlexRatioMax uint32

	TSCAtBoot uint64

	// HalfStep is true when the true bus ratio is TSCGranularity + 0.5.
	HalfStep bool
	// Source names where the factors came from (strategy or hypervisor).
	Source    string
	Signature string
}

var (
	// padding for reducing cache pollution.
	_    [cpu.X86FalseSharingRange]byte
	info atomic.Pointer[Info]
	_    [cpu.X86FalseSharingRange]byte
)

// Get returns the published snapshot, nil before the first Publish.
func Get() *Info {
	return info.Load()
}

// Publish makes i visible to all readers of Get.
// i must not be modified afterwards.
func Publish(i *Info) {
	info.Store(i)
}

// TSCToNanos converts TSC ticks to nanoseconds.
func (i *Info) TSCToNanos(ticks uint64) uint64 {
	return Cvt(ticks, i.TSCTicksToNanos)
}

// NanosToTSC converts nanoseconds to TSC ticks.
func (i *Info) NanosToTSC(ns uint64) uint64 {
	return Cvt(ns, i.TSCNanosToTicks)
}

// BusToNanos converts bus ticks to nanoseconds.
func (i *Info) BusToNanos(ticks uint64) uint64 {
	return Cvt(ticks, i.BusTicksToNanos)
}

// NanosToBus converts nanoseconds to bus ticks.
func (i *Info) NanosToBus(ns uint64) uint64 {
	return Cvt(ns, i.BusNanosToTicks)
}

// BusTicksToTSC converts bus ticks to TSC ticks.
func (i *Info) BusTicksToTSC(ticks uint64) uint64 {
	return Cvt(ticks, i.BusToTSCFixed)
}

func (i *Info) String() string {
	n2 := ""
	if i.HalfStep {
		n2 = " (N/2)"
	}
	return fmt.Sprintf("BUS: Frequency = %s, cvtt2n = %s, cvtn2t = %s; "+
		"TSC: Frequency = %s, cvtt2n = %s, cvtn2t = %s, gran = %d%s, source: %s",
		fmtMHz(i.BusFrequency), fmtFixed(i.BusTicksToNanos), fmtFixed(i.BusNanosToTicks),
		fmtMHz(i.TSCFrequency), fmtFixed(i.TSCTicksToNanos), fmtFixed(i.TSCNanosToTicks),
		i.TSCGranularity, n2, i.Source)
}

func fmtMHz(hz uint64) string {
	return fmt.Sprintf("%6d.%06dMHz", hz/Mega, hz%Mega)
}

// fmtFixed prints a 32.32 value as integer.fraction in hex.
func fmtFixed(v uint64) string {
	return fmt.Sprintf("%08X.%08X", uint32(v>>32), uint32(v))
}
