package candidate

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// MatrixGenerator draws scale×Cols matrices of uniform [0,1) values rounded
// to float32 precision.
type MatrixGenerator struct {
	Cols int
	rng  *rand.Rand
}

func NewMatrixGenerator(cols int, seed uint64) *MatrixGenerator {
	if cols <= 0 {
		cols = 2
	}
	return &MatrixGenerator{
		Cols: cols,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (g *MatrixGenerator) Generate(scale int) *mat.Dense {
	data := make([]float64, scale*g.Cols)
	for i := range data {
		data[i] = float64(g.rng.Float32())
	}
	return mat.NewDense(scale, g.Cols, data)
}
