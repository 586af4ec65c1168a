package candidate

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/SaFE-APIOpt/SaFE-APIOpt/internal/tensor"
	"github.com/SaFE-APIOpt/SaFE-APIOpt/pkg/types"
)

// Builtin constructs a ready-to-run subject; seed fixes its input stream.
type Builtin func(seed uint64) Subject[*mat.Dense]

var builtins = map[string]Builtin{
	"rowprod": RowProd,
	"rowsum":  RowSum,
}

func Lookup(name string) (Builtin, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown pair %q (available: %v)", name, Names())
	}
	return b, nil
}

func Names() []string {
	out := make([]string, 0, len(builtins))
	for k := range builtins {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RowProd compares a row-wise product computed by gonum's floats.Prod with an
// explicit multiplicative fold.
func RowProd(seed uint64) Subject[*mat.Dense] {
	return Subject[*mat.Dense]{
		Pair: types.CandidatePair{
			API1:        "gonum.floats.Prod",
			API2:        "multiply.fold",
			Package:     "gonum",
			Description: "Computes the row-wise product of matrix elements using two different methods.",
		},
		A:   MethodFunc[*mat.Dense](rowProdFloats),
		B:   MethodFunc[*mat.Dense](rowProdFold),
		Gen: NewMatrixGenerator(2, seed),
	}
}

// RowSum compares floats.Sum with an explicit additive fold.
func RowSum(seed uint64) Subject[*mat.Dense] {
	return Subject[*mat.Dense]{
		Pair: types.CandidatePair{
			API1:        "gonum.floats.Sum",
			API2:        "add.fold",
			Package:     "gonum",
			Description: "Computes the row-wise sum of matrix elements using two different methods.",
		},
		A:   MethodFunc[*mat.Dense](rowSumFloats),
		B:   MethodFunc[*mat.Dense](rowSumFold),
		Gen: NewMatrixGenerator(2, seed),
	}
}

func rowProdFloats(m *mat.Dense) (tensor.Tensor, error) {
	r, c := m.Dims()
	out := make([]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		out[i] = floats.Prod(row)
	}
	return tensor.Vector(out), nil
}

func rowProdFold(m *mat.Dense) (tensor.Tensor, error) {
	r, c := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		p := 1.0
		for j := 0; j < c; j++ {
			p *= m.At(i, j)
		}
		out[i] = p
	}
	return tensor.Vector(out), nil
}

func rowSumFloats(m *mat.Dense) (tensor.Tensor, error) {
	r, c := m.Dims()
	out := make([]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		out[i] = floats.Sum(row)
	}
	return tensor.Vector(out), nil
}

func rowSumFold(m *mat.Dense) (tensor.Tensor, error) {
	r, c := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		var s float64
		for j := 0; j < c; j++ {
			s += m.At(i, j)
		}
		out[i] = s
	}
	return tensor.Vector(out), nil
}
