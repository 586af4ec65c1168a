// Package bench measures execution time and memory cost of two candidate
// methods that have already been proven substitutable.
package bench

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/candidate"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/probe"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

const DefaultTrials = 10

type Runner struct {
	Probe  probe.Probe
	Trials int
	Logger *zap.Logger

	gc    func()
	clock func() time.Time
}

func NewRunner(p probe.Probe, trials int, logger *zap.Logger) *Runner {
	if trials <= 0 {
		trials = DefaultTrials
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Probe:  p,
		Trials: trials,
		Logger: logger,
		gc:     runtime.GC,
		clock:  time.Now,
	}
}

// Run benchmarks both methods at every scale. Memory is a single before/after
// delta per method; time is the mean of Trials calls, each on a freshly
// generated sample. Any method or probe error aborts the whole run.
func Run[In any](r *Runner, a, b candidate.Method[In], gen candidate.Generator[In], scales types.ScaleSet) (map[int]types.ScaleMetrics, error) {
	if err := scales.Validate(); err != nil {
		return nil, err
	}
	out := make(map[int]types.ScaleMetrics, len(scales))
	for _, n := range scales {
		m, err := runScale(r, a, b, gen, n)
		if err != nil {
			return nil, fmt.Errorf("benchmark scale %d: %w", n, err)
		}
		r.Logger.Info("benchmarked scale",
			zap.Int("scale", n),
			zap.Float64("time_v1", m.AvgTime1),
			zap.Float64("time_v2", m.AvgTime2),
			zap.Float64("mem_v1", m.Mem1),
			zap.Float64("mem_v2", m.Mem2),
		)
		out[n] = m
	}
	return out, nil
}

func runScale[In any](r *Runner, a, b candidate.Method[In], gen candidate.Generator[In], n int) (types.ScaleMetrics, error) {
	m := types.ScaleMetrics{Scale: n, Trials: r.Trials}

	sample := gen.Generate(n)
	var err error
	if m.Mem1, err = memoryDelta(r, a, sample); err != nil {
		return m, fmt.Errorf("method 1 memory: %w", err)
	}
	if m.Mem2, err = memoryDelta(r, b, sample); err != nil {
		return m, fmt.Errorf("method 2 memory: %w", err)
	}

	times1 := make([]float64, 0, r.Trials)
	times2 := make([]float64, 0, r.Trials)
	for trial := 0; trial < r.Trials; trial++ {
		sample := gen.Generate(n)
		// Odd trials run method 2 first.
		first, second := a, b
		if trial%2 == 1 {
			first, second = b, a
		}
		d1, err := timeCall(r, first, sample)
		if err != nil {
			return m, fmt.Errorf("trial %d: %w", trial, err)
		}
		d2, err := timeCall(r, second, sample)
		if err != nil {
			return m, fmt.Errorf("trial %d: %w", trial, err)
		}
		if trial%2 == 1 {
			d1, d2 = d2, d1
		}
		times1 = append(times1, d1)
		times2 = append(times2, d2)
	}
	m.AvgTime1, m.StdTime1 = summarize(times1)
	m.AvgTime2, m.StdTime2 = summarize(times2)
	return m, nil
}

// memoryDelta measures one call between two probe samples. A fresh GC runs
// first so both methods start from the same heap state. RSS can shrink while
// the call runs if the runtime returns pages; such deltas are reported as 0.
func memoryDelta[In any](r *Runner, method candidate.Method[In], sample In) (float64, error) {
	r.gc()
	before, err := r.Probe.SampleMemory()
	if err != nil {
		return 0, err
	}
	if _, err := method.Call(sample); err != nil {
		return 0, err
	}
	after, err := r.Probe.SampleMemory()
	if err != nil {
		return 0, err
	}
	if d := after - before; d > 0 {
		return d, nil
	}
	return 0, nil
}

func timeCall[In any](r *Runner, method candidate.Method[In], sample In) (float64, error) {
	start := r.clock()
	_, err := method.Call(sample)
	elapsed := r.clock().Sub(start)
	if err != nil {
		return 0, err
	}
	return elapsed.Seconds(), nil
}

func summarize(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		std = stat.StdDev(xs, nil)
	}
	return mean, std
}
