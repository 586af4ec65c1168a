// Package harness wires the oracle, the benchmark runner and the result
// store into one run per candidate pair.
package harness

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/bench"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/candidate"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/oracle"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

// Process exit codes. A not-substitutable verdict is an outcome, not a
// failure, and exits with ExitPass.
const (
	ExitPass            = 0
	ExitMeasurementFail = 20
	ExitPersistFail     = 21
	ExitConfig          = 22
)

type Options struct {
	Scales    types.ScaleSet
	Tolerance oracle.Tolerance
	Runner    *bench.Runner
	Logger    *zap.Logger
}

// Report describes one pair's run. It is also the JSON run report.
type Report struct {
	RunID       string               `json:"run_id"`
	GeneratedAt string               `json:"generated_at"`
	Pair        types.CandidatePair  `json:"pair"`
	Scales      types.ScaleSet       `json:"scales"`
	Tolerance   oracle.Tolerance     `json:"tolerance"`
	Verdict     oracle.Verdict       `json:"verdict"`
	Metrics     []types.ScaleMetrics `json:"metrics"`
	Error       string               `json:"error,omitempty"`
	Destination string               `json:"destination"`
}

// Row flattens the report into the persisted result row.
func (r Report) Row() types.ResultRow {
	return types.ResultRow{
		Pair:          r.Pair,
		Substitutable: r.Verdict.Substitutable,
		Scales:        r.Scales,
		Metrics:       r.Metrics,
		Error:         r.Error,
	}
}

// Evaluate checks equivalence and, only when every scale passes, benchmarks
// the pair. A not-substitutable verdict is a normal outcome and returns a nil
// error. A method or probe failure returns the error together with a report
// whose Error field is set and whose Metrics are empty, so the caller can
// persist the failed record.
func Evaluate[In any](subject candidate.Subject[In], opts Options) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rep := Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Pair:        subject.Pair,
		Scales:      opts.Scales,
		Tolerance:   opts.Tolerance,
		Verdict:     oracle.Verdict{Checked: []int{}},
	}
	if rep.Scales == nil {
		rep.Scales = types.ScaleSet{}
	}
	logger = logger.With(zap.String("run_id", rep.RunID), zap.String("pair", subject.Pair.String()))

	if err := rep.Scales.Validate(); err != nil {
		rep.Error = err.Error()
		return rep, fmt.Errorf("scales: %w", err)
	}

	verdict, err := oracle.Check(subject.A, subject.B, subject.Gen, opts.Scales, opts.Tolerance)
	if err != nil {
		rep.Error = err.Error()
		logger.Error("equivalence check failed", zap.Error(err))
		return rep, fmt.Errorf("equivalence check: %w", err)
	}
	rep.Verdict = verdict
	if !verdict.Substitutable {
		logger.Info("output mismatch, skipping benchmark",
			zap.Int("scale", verdict.FailedScale),
			zap.String("reason", verdict.Reason),
		)
		return rep, nil
	}
	logger.Info("outputs match at all scales", zap.Ints("scales", verdict.Checked))

	if opts.Runner == nil {
		return rep, fmt.Errorf("benchmark runner is required")
	}
	byScale, err := bench.Run(opts.Runner, subject.A, subject.B, subject.Gen, opts.Scales)
	if err != nil {
		rep.Error = err.Error()
		logger.Error("benchmark failed", zap.Error(err))
		return rep, fmt.Errorf("benchmark: %w", err)
	}
	rep.Metrics = make([]types.ScaleMetrics, 0, len(opts.Scales))
	for _, n := range opts.Scales {
		rep.Metrics = append(rep.Metrics, byScale[n])
	}
	return rep, nil
}
