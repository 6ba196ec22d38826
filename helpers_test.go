package tsccal

import (
	"fmt"
	"testing"

	"github.com/templexxx/tsccal/internal/xbytes"
)

type fakeFirmware map[string][]byte

func (f fakeFirmware) Property(path, name string) ([]byte, bool) {
	if path != PlatformPath {
		return nil, false
	}
	v, ok := f[name]
	return v, ok
}

func firmware(kv ...interface{}) fakeFirmware {
	f := make(fakeFirmware)
	for i := 0; i < len(kv); i += 2 {
		switch v := kv[i+1].(type) {
		case uint64:
			f[kv[i].(string)] = xbytes.PutUint64(v)
		case []byte:
			f[kv[i].(string)] = v
		default:
			panic(fmt.Sprintf("unsupported property type %T", v))
		}
	}
	return f
}

type fakeArgs map[string]int64

func (a fakeArgs) Int(name string) (int64, bool) {
	v, ok := a[name]
	return v, ok
}

type fakeRegs map[uint32]uint64

func (r fakeRegs) ReadMSR(addr uint32) uint64 {
	return r[addr]
}

type fakeCPU struct {
	vendor        Vendor
	family, model int
	vmm           *HypervisorInfo
	realFreq      uint64
}

func (c fakeCPU) Vendor() Vendor { return c.vendor }
func (c fakeCPU) Family() int    { return c.family }
func (c fakeCPU) Model() int     { return c.model }

func (c fakeCPU) Hypervisor() (HypervisorInfo, bool) {
	if c.vmm == nil {
		return HypervisorInfo{}, false
	}
	return *c.vmm, true
}

func (c fakeCPU) RealFrequency() uint64 { return c.realFreq }

type testLogger struct {
	t        *testing.T
	warnings int
}

func (l *testLogger) Infof(format string, args ...interface{}) {
	l.t.Logf(format, args...)
}

func (l *testLogger) Warningf(format string, args ...interface{}) {
	l.warnings++
	l.t.Logf("WARN: "+format, args...)
}

// perfStatus builds an IA32_PERF_STS value.
func perfStatus(ratio uint64, halfStep bool) uint64 {
	v := ratio << 40
	if halfStep {
		v |= 1 << 46
	}
	return v
}

func calibrate(t *testing.T, fw Firmware, args BootArgs, regs Registers, c CPU) *Info {
	t.Helper()
	return NewCalibrator(fw, args, regs, c, WithLogger(&testLogger{t: t})).Calibrate()
}
