// Package oracle decides whether two candidate methods are substitutable
// across a set of input scales.
package oracle

import (
	"fmt"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/candidate"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/tensor"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

const (
	ModeDefault = "default"
	ModeStrict  = "strict"
)

// Tolerance bounds elementwise disagreement: |a-b| <= Abs + Rel*|b|.
// Rel is zero unless configured, which makes the check purely absolute.
type Tolerance struct {
	Abs float64 `json:"abs" yaml:"abs"`
	Rel float64 `json:"rel" yaml:"rel"`
}

func ToleranceForMode(mode string) (Tolerance, error) {
	switch mode {
	case "", ModeDefault:
		return Tolerance{Abs: 1e-5}, nil
	case ModeStrict:
		return Tolerance{Abs: 1e-8}, nil
	default:
		return Tolerance{}, fmt.Errorf("unsupported tolerance mode %s", mode)
	}
}

type Verdict struct {
	Substitutable bool   `json:"substitutable"`
	FailedScale   int    `json:"failed_scale,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Checked       []int  `json:"checked"`
}

// Check runs both methods on one shared sample per scale, smallest scale
// first, and stops at the first scale whose outputs differ. An empty scale
// set is vacuously substitutable. A method error or an invalid scale set
// aborts the check.
func Check[In any](a, b candidate.Method[In], gen candidate.Generator[In], scales types.ScaleSet, tol Tolerance) (Verdict, error) {
	if err := scales.Validate(); err != nil {
		return Verdict{}, err
	}
	v := Verdict{Substitutable: true, Checked: []int{}}
	for _, n := range scales.Ascending() {
		sample := gen.Generate(n)
		outA, err := a.Call(sample)
		if err != nil {
			return Verdict{}, fmt.Errorf("method 1 at scale %d: %w", n, err)
		}
		outB, err := b.Call(sample)
		if err != nil {
			return Verdict{}, fmt.Errorf("method 2 at scale %d: %w", n, err)
		}
		v.Checked = append(v.Checked, n)

		if reason := compare(outA, outB, tol); reason != "" {
			v.Substitutable = false
			v.FailedScale = n
			v.Reason = reason
			return v, nil
		}
	}
	return v, nil
}

func compare(a, b tensor.Tensor, tol Tolerance) string {
	if a == nil || b == nil {
		return "nil output"
	}
	if !tensor.SameShape(a, b) {
		return fmt.Sprintf("shape mismatch: %v vs %v", a.Shape(), b.Shape())
	}
	if ok, idx := tensor.AllClose(a, b, tol.Abs, tol.Rel); !ok {
		return fmt.Sprintf("value mismatch at index %d: %v vs %v", idx, a.Values()[idx], b.Values()[idx])
	}
	return ""
}
