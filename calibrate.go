package tsccal

// Calibrator derives the conversion factors from the frequency sources.
type Calibrator struct {
	fw   Firmware
	args BootArgs
	regs Registers
	cpu  CPU
	log  Logger

	table []strategy
}

// Option configures a Calibrator.
type Option func(*Calibrator)

// WithLogger replaces the glog sink.
func WithLogger(l Logger) Option {
	return func(c *Calibrator) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCalibrator returns a Calibrator reading the given sources.
// nil firmware, boot args or registers behave as if empty.
// cpu is required, NewCalibrator panics if it's nil.
func NewCalibrator(fw Firmware, args BootArgs, regs Registers, cpu CPU, opts ...Option) *Calibrator {
	if cpu == nil {
		panic("tsccal: nil CPU")
	}
	c := &Calibrator{
		fw:    fw,
		args:  args,
		regs:  regs,
		cpu:   cpu,
		log:   glogLogger{},
		table: strategies,
	}
	if c.fw == nil {
		c.fw = noFirmware{}
	}
	if c.args == nil {
		c.args = noBootArgs{}
	}
	if c.regs == nil {
		c.regs = noRegisters{}
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Calibrate builds a Calibrator, runs it and publishes the result.
// It must be called once, before any reader uses Get.
func Calibrate(fw Firmware, args BootArgs, regs Registers, cpu CPU, opts ...Option) *Info {
	i := NewCalibrator(fw, args, regs, cpu, opts...).Calibrate()
	Publish(i)
	return i
}

// Calibrate runs one calibration pass and returns a fresh snapshot.
// It never fails: undetectable inputs degrade to defaults.
func (c *Calibrator) Calibrate() *Info {
	p := &probe{fw: c.fw, args: c.args, regs: c.regs, cpu: c.cpu, log: c.log}

	family, model := c.cpu.Family(), c.cpu.Model()
	sig := Signature(family, model)

	if i, ok := c.fromHypervisor(); ok {
		i.Signature = sig
		c.log.Infof("%s", i)
		return i
	}

	s := selectStrategy(c.table, c.cpu.Vendor(), family, model)
	r := s.detect(p)
	c.log.Infof("%s %s: strategy %s, bus %d Hz, granularity %d, N/2 %t",
		c.cpu.Vendor(), sig, s.name, r.BusFrequency, r.Granularity, r.HalfStep)

	if ratio, ok := p.busRatio(); ok {
		r.Granularity, r.HalfStep = applyBusRatio(ratio)
		c.log.Infof("busratio %d: granularity %d, N/2 %t", ratio, r.Granularity, r.HalfStep)
	}
	if s.report != nil {
		s.report(p, r)
	}

	i := c.derive(r)
	i.TSCAtBoot = p.tscAtBoot
	i.Source = s.name
	i.Signature = sig
	c.log.Infof("%s", i)
	return i
}

// fromHypervisor trusts the frequencies a hypervisor reports.
// A virtual TSC needn't be a multiple of any bus, so the two factor
// pairs are derived independently.
func (c *Calibrator) fromHypervisor() (*Info, bool) {
	vmm, ok := c.cpu.Hypervisor()
	if !ok {
		return nil, false
	}
	c.log.Infof("VMM vendor %d TSC frequency %d KHz bus frequency %d KHz",
		vmm.Family, vmm.TSCFrequencyKHz, vmm.BusFrequencyKHz)
	if vmm.TSCFrequencyKHz == 0 || vmm.BusFrequencyKHz == 0 {
		return nil, false
	}

	i := &Info{
		BusFrequency: uint64(vmm.BusFrequencyKHz) * Kilo,
		TSCFrequency: uint64(vmm.TSCFrequencyKHz) * Kilo,
		Source:       "hypervisor",
	}
	i.BusTicksToNanos = ToNanos(i.BusFrequency)
	i.BusNanosToTicks = ToTicks(i.BusTicksToNanos)
	i.TSCTicksToNanos = ToNanos(i.TSCFrequency)
	i.TSCNanosToTicks = ToTicks(i.TSCTicksToNanos)
	i.TSCGranularity = i.TSCFrequency / i.BusFrequency
	if i.TSCGranularity == 0 {
		i.TSCGranularity = 1
	}
	i.BusToTSC = Combine(i.BusTicksToNanos, i.TSCNanosToTicks)
	i.BusToTSCFixed = Cvt(i.BusTicksToNanos, i.TSCNanosToTicks)
	if i.BusToTSC == 0 {
		i.BusToTSC = 1
	}
	return i, true
}

// derive computes the factors from a bus frequency and bus ratio.
func (c *Calibrator) derive(r Result) *Info {
	i := &Info{
		BusFrequency: r.BusFrequency,
		TSCFrequency: r.TSCFrequency,
		FlexRatio:    r.FlexRatio,
		FlexRatioMin: r.FlexRatioMin,
		FlexRatioMax: r.FlexRatioMax,
	}

	if i.BusFrequency == 0 {
		i.BusFrequency = defaultBusFrequency
		c.log.Warningf("no bus frequency, setting fsb to %d MHz", i.BusFrequency/Mega)
	}
	i.BusTicksToNanos = ToNanos(i.BusFrequency)
	i.BusNanosToTicks = ToTicks(i.BusTicksToNanos)

	if i.TSCFrequency == i.BusFrequency {
		i.TSCGranularity = 1
		i.TSCTicksToNanos = i.BusTicksToNanos
		i.TSCNanosToTicks = i.BusNanosToTicks
		i.BusToTSC = 1
		i.BusToTSCFixed = 1 << 32
		return i
	}

	// The TSC increments by the bus ratio on every bus tick. With N/2
	// set the true ratio is (2*granularity + 1)/2.
	g := r.Granularity
	if g == 0 {
		c.log.Warningf("no bus ratio, assuming 1")
		g = 1
	}
	i.TSCGranularity = g
	i.HalfStep = r.HalfStep
	if r.HalfStep {
		i.TSCTicksToNanos = i.BusTicksToNanos * 2 / (1 + 2*g)
	} else {
		i.TSCTicksToNanos = i.BusTicksToNanos / g
	}
	if i.TSCTicksToNanos == 0 {
		i.TSCTicksToNanos = 1
	}
	i.TSCFrequency = nanosScale / i.TSCTicksToNanos
	i.TSCNanosToTicks = ToTicks(i.TSCTicksToNanos)

	i.BusToTSC = Combine(i.BusTicksToNanos, i.TSCNanosToTicks)
	i.BusToTSCFixed = Cvt(i.BusTicksToNanos, i.TSCNanosToTicks)
	if i.BusToTSC == 0 {
		i.BusToTSC = 1
	}
	return i
}
