// cvtplot is a tool to chart the error the 32.32 fixed-point factors
// introduce, against exact bus frequency * bus ratio arithmetic.
package main

import (
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/templexxx/tsccal"
)

var (
	minBus  = flag.Uint64("min_bus", 90, "lowest bus frequency, unit: MHz")
	maxBus  = flag.Uint64("max_bus", 400, "highest bus frequency, unit: MHz")
	step    = flag.Uint64("step", 1, "bus frequency step, unit: MHz")
	ratios  = flag.String("ratios", "8,12.5,20,30", "bus ratios to chart, N.5 for N/2 ratios")
	output  = flag.String("o", "", "output file, default cvtplot_<time>.PNG")
	printPt = flag.Bool("print", false, "print every point")
)

type ratio struct {
	g    uint64
	half bool
}

func (r ratio) String() string {
	if r.half {
		return fmt.Sprintf("%d.5", r.g)
	}
	return fmt.Sprintf("%d", r.g)
}

func (r ratio) exact(bus uint64) float64 {
	v := float64(bus * r.g)
	if r.half {
		v += float64(bus) / 2
	}
	return v
}

func main() {
	flag.Parse()

	rs, err := parseRatios(*ratios)
	if err != nil {
		panic(err)
	}

	freqErr := plot.New()
	freqErr.Title.Text = "TSC frequency error"
	freqErr.X.Label.Text = "Bus(MHz)"
	freqErr.Y.Label.Text = "Error(ppb)"

	cvtErr := plot.New()
	cvtErr.Title.Text = "1s of bus ticks converted to TSC ticks"
	cvtErr.X.Label.Text = "Bus(MHz)"
	cvtErr.Y.Label.Text = "Error(ticks)"

	for _, r := range rs {
		fpts, cpts := sweep(r)
		if err := plotutil.AddLinePoints(freqErr, "ratio "+r.String(), fpts); err != nil {
			panic(err)
		}
		if err := plotutil.AddLinePoints(cvtErr, "ratio "+r.String(), cpts); err != nil {
			panic(err)
		}
	}

	name := *output
	if name == "" {
		name = fmt.Sprintf("cvtplot_%s.PNG", time.Now().Format(time.RFC3339))
	}
	if err := freqErr.Save(10*vg.Inch, 10*vg.Inch, "freq_"+name); err != nil {
		panic(err)
	}
	if err := cvtErr.Save(10*vg.Inch, 10*vg.Inch, "bus2tsc_"+name); err != nil {
		panic(err)
	}
}

// sweep derives the factors the way the calibrator does for every bus
// frequency and returns the TSC frequency error and bus2tsc error.
func sweep(r ratio) (freq, cvt plotter.XYs) {
	for mhz := *minBus; mhz <= *maxBus; mhz += *step {
		bus := mhz * tsccal.Mega
		t2n := tsccal.ToNanos(bus)
		var tscT2N uint64
		if r.half {
			tscT2N = t2n * 2 / (1 + 2*r.g)
		} else {
			tscT2N = t2n / r.g
		}
		tscFreq := tsccal.ToNanos(tscT2N) // (10^9 << 32) / x is its own inverse.
		bus2tsc := tsccal.Cvt(t2n, tsccal.ToTicks(tscT2N))

		exact := r.exact(bus)
		ppb := (float64(tscFreq) - exact) / exact * 1e9
		ticks := float64(tsccal.Cvt(bus, bus2tsc)) - exact

		freq = append(freq, plotter.XY{X: float64(mhz), Y: ppb})
		cvt = append(cvt, plotter.XY{X: float64(mhz), Y: ticks})

		if *printPt {
			fmt.Printf("ratio: %s, bus: %dMHz, tsc: %d, error: %.2fppb, bus2tsc error: %.0f ticks\n",
				r, mhz, tscFreq, ppb, ticks)
		}
	}
	return
}

func parseRatios(s string) ([]ratio, error) {
	var rs []ratio
	for _, v := range strings.Split(s, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("bad ratio %q: %w", v, err)
		}
		if f < 1 {
			return nil, fmt.Errorf("bad ratio %g", f)
		}
		g := math.Floor(f)
		rs = append(rs, ratio{g: uint64(g), half: f-g >= 0.5})
	}
	return rs, nil
}
