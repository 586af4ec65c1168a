// Package tensor holds the minimal output contract candidate methods must
// satisfy: a shape and a flat, row-major view of the values.
package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type Tensor interface {
	Shape() []int
	Values() []float64
}

type Dense struct {
	shape []int
	data  []float64
}

func New(shape []int, data []float64) (*Dense, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension %d in shape %v", d, shape)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("shape %v needs %d values, got %d", shape, n, len(data))
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return &Dense{shape: s, data: data}, nil
}

func Vector(data []float64) *Dense {
	return &Dense{shape: []int{len(data)}, data: data}
}

// FromMatrix copies m into a two-dimensional tensor.
func FromMatrix(m mat.Matrix) *Dense {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return &Dense{shape: []int{r, c}, data: data}
}

func (d *Dense) Shape() []int      { return d.shape }
func (d *Dense) Values() []float64 { return d.data }

func SameShape(a, b Tensor) bool {
	sa, sb := a.Shape(), b.Shape()
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// Close reports whether |x-y| <= atol + rtol*|y|. NaN is never close to
// anything, itself included. Infinities are close only to the same infinity.
func Close(x, y, atol, rtol float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	if math.IsInf(x, 0) || math.IsInf(y, 0) {
		return x == y
	}
	return math.Abs(x-y) <= atol+rtol*math.Abs(y)
}

// AllClose compares two tensors of equal shape elementwise. It returns the
// flat index of the first offending element, or -1 when all are close.
// Callers must check SameShape first; differing lengths report index 0.
func AllClose(a, b Tensor, atol, rtol float64) (bool, int) {
	va, vb := a.Values(), b.Values()
	if len(va) != len(vb) {
		return false, 0
	}
	for i := range va {
		if !Close(va[i], vb[i], atol, rtol) {
			return false, i
		}
	}
	return true, -1
}
