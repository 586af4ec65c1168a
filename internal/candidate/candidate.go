// Package candidate models the two callables of a SaFE pair as a capability:
// anything that accepts one input and returns one comparable tensor.
package candidate

import (
	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/tensor"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

type Method[In any] interface {
	Call(in In) (tensor.Tensor, error)
}

type MethodFunc[In any] func(in In) (tensor.Tensor, error)

func (f MethodFunc[In]) Call(in In) (tensor.Tensor, error) { return f(in) }

// Generator produces a fresh input sample for a scale.
type Generator[In any] interface {
	Generate(scale int) In
}

type GeneratorFunc[In any] func(scale int) In

func (f GeneratorFunc[In]) Generate(scale int) In { return f(scale) }

// Subject bundles a pair's identity with its two methods and the input
// distribution both are measured on.
type Subject[In any] struct {
	Pair types.CandidatePair
	A    Method[In]
	B    Method[In]
	Gen  Generator[In]
}
