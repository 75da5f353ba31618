package reduction

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PCAReducer projects rows onto their first two principal components.
// It runs in process and ignores the neighborhood size beyond validating it.
type PCAReducer struct{}

// NewPCAReducer creates a local principal component reducer.
func NewPCAReducer() *PCAReducer {
	return &PCAReducer{}
}

// Reduce centers the columns and projects onto the leading right singular vectors.
func (p *PCAReducer) Reduce(ctx context.Context, data *mat.Dense, neighbors int) (*mat.Dense, error) {
	if err := Validate(data, neighbors); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, cols := data.Dims()
	var centered mat.Dense
	centered.CloneFrom(data)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, &centered)
		mean := floats.Sum(col) / float64(rows)
		floats.AddConst(-mean, col)
		centered.SetCol(j, col)
	}

	var svd mat.SVD
	if ok := svd.Factorize(&centered, mat.SVDThin); !ok {
		return nil, errors.New("pca: singular value decomposition failed")
	}
	var v mat.Dense
	svd.VTo(&v)

	_, k := v.Dims()
	comps := Dimensions
	if k < comps {
		comps = k
	}

	out := mat.NewDense(rows, Dimensions, nil)
	if comps == 0 {
		return out, nil
	}

	var proj mat.Dense
	proj.Mul(&centered, v.Slice(0, cols, 0, comps))

	// flip signs so the largest loading of each component is positive
	for j := 0; j < comps; j++ {
		loading := mat.Col(nil, j, &v)
		sign := 1.0
		if idx := floats.MaxIdx(absAll(loading)); loading[idx] < 0 {
			sign = -1.0
		}
		for i := 0; i < rows; i++ {
			out.Set(i, j, sign*proj.At(i, j))
		}
	}
	return out, nil
}

func absAll(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = math.Abs(v)
	}
	return out
}
