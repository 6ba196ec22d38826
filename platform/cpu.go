package platform

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
	"github.com/templexxx/cpu"

	"github.com/templexxx/tsccal"
)

// HostCPU identifies the running CPU from CPUID.
type HostCPU struct {
	// VMMBusKHz is reported as the hypervisor bus frequency.
	VMMBusKHz uint32
}

// Vendor implements tsccal.CPU. Hygon parts are AMD derived.
func (HostCPU) Vendor() tsccal.Vendor {
	switch cpuid.CPU.VendorID {
	case cpuid.AMD, cpuid.Hygon:
		return tsccal.VendorAMD
	}
	return tsccal.VendorIntel
}

// Family implements tsccal.CPU.
func (HostCPU) Family() int {
	return cpuid.CPU.Family
}

// Model implements tsccal.CPU.
func (HostCPU) Model() int {
	return cpuid.CPU.Model
}

// Hypervisor implements tsccal.CPU.
// The TSC frequency is the one CPUID leaves report.
func (h HostCPU) Hypervisor() (tsccal.HypervisorInfo, bool) {
	if !cpuid.CPU.VM() {
		return tsccal.HypervisorInfo{}, false
	}
	return tsccal.HypervisorInfo{
		Family:          uint32(cpuid.CPU.HypervisorVendorID),
		TSCFrequencyKHz: uint32(cpu.X86.TSCFrequency / 1000),
		BusFrequencyKHz: h.VMMBusKHz,
	}, true
}

// RealFrequency implements tsccal.CPU with the CPUID base clock.
func (HostCPU) RealFrequency() uint64 {
	if cpuid.CPU.Hz <= 0 {
		return 0
	}
	return uint64(cpuid.CPU.Hz)
}

// Tag returns <Signature>_<SteppingID> of the running CPU.
func Tag() string {
	return fmt.Sprintf("%s_%d", cpu.X86.Signature, cpu.X86.SteppingID)
}
