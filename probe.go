package tsccal

import "github.com/templexxx/tsccal/internal/xbytes"

// Firmware property path and names.
const (
	PlatformPath    = "/efi/platform"
	PropFSBFreq     = "FSBFrequency"
	PropCPUFreq     = "CPUFrequency"
	PropInitialTSC  = "InitialTSC"
	ArgBusRatio     = "busratio"
	ArgFSB          = "fsb" // MHz.
	ArgCPUFromEFI   = "-cpuEFI"
	minBusFrequency = 90 * Mega
	maxBusFrequency = 20 * Giga
	minCPUFrequency = 10 * Mega
	maxCPUFrequency = 50 * Giga
)

// probe queries the frequency sources. Every query fails soft:
// missing or implausible data comes back as 0.
type probe struct {
	fw   Firmware
	args BootArgs
	regs Registers
	cpu  CPU
	log  Logger

	// tscAtBoot is latched by any property lookup that finds InitialTSC.
	tscAtBoot uint64
}

// fsbFrequency returns the bus frequency in Hz. The fsb boot argument
// wins over firmware, whose value is 0 unless it's inside (90 MHz, 20 GHz).
func (p *probe) fsbFrequency() uint64 {
	if f, ok := p.fsbOverride(); ok {
		p.log.Infof("fsb: bus frequency %d Hz", f)
		p.readTSCAtBoot()
		return f
	}
	return p.frequency(PropFSBFreq, minBusFrequency, maxBusFrequency)
}

// cpuFrequency returns the CPU frequency in Hz, 0 if unknown.
//
// With the -cpuEFI boot flag the firmware property is authoritative.
// Otherwise AMD parts prefer the vendor's real frequency reading.
func (p *probe) cpuFrequency() uint64 {
	if _, ok := p.args.Int(ArgCPUFromEFI); !ok && p.cpu.Vendor() == VendorAMD {
		if f := p.cpu.RealFrequency(); f != 0 {
			p.log.Infof("cpu frequency: real frequency %d Hz", f)
			return f
		}
	}
	return p.efiCPUFrequency()
}

func (p *probe) efiCPUFrequency() uint64 {
	return p.frequency(PropCPUFreq, minCPUFrequency, maxCPUFrequency)
}

// frequency reads a 64-bit property and discards values outside (lo, hi).
func (p *probe) frequency(name string, lo, hi uint64) uint64 {
	defer p.readTSCAtBoot()

	raw, ok := p.fw.Property(PlatformPath, name)
	if !ok {
		p.log.Warningf("%s: property not found in %s", name, PlatformPath)
		return 0
	}
	f, ok := xbytes.Uint64(raw)
	if !ok {
		p.log.Warningf("%s: unexpected size %d", name, len(raw))
		return 0
	}
	p.log.Infof("%s: read value: %d", name, f)
	if !(lo < f && f < hi) {
		p.log.Warningf("%s: value %d out of range (%d, %d)", name, f, lo, hi)
		return 0
	}
	return f
}

// readTSCAtBoot picks up the TSC value firmware latched at boot,
// independent of whether the frequency itself was usable.
func (p *probe) readTSCAtBoot() {
	raw, ok := p.fw.Property(PlatformPath, PropInitialTSC)
	if !ok {
		return
	}
	if v, ok := xbytes.Uint64(raw); ok {
		p.tscAtBoot = v
		p.log.Infof("%s: read value: %d", PropInitialTSC, v)
	}
}

// busRatio returns the busratio boot argument.
func (p *probe) busRatio() (uint64, bool) {
	v, ok := p.args.Int(ArgBusRatio)
	if !ok {
		return 0, false
	}
	if v < 0 {
		v = 0
	}
	return uint64(v), true
}

// fsbOverride returns the fsb boot argument converted to Hz.
func (p *probe) fsbOverride() (uint64, bool) {
	v, ok := p.args.Int(ArgFSB)
	if !ok {
		return 0, false
	}
	if v < 0 {
		v = 0
	}
	return uint64(v) * Mega, true
}

func (p *probe) readMSR(addr uint32) uint64 {
	v := p.regs.ReadMSR(addr)
	p.log.Infof("MSR 0x%x = 0x%016x", addr, v)
	return v
}
