package clustering

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA projects points (rows) onto their leading principal components.
// Returns an n x k embedding where k = min(components, rank bound).
func PCA(rows [][]float64, components int) ([][]float64, error) {
	n := len(rows)
	if n < 2 {
		return nil, fmt.Errorf("pca: need at least 2 points, got %d", n)
	}
	d := len(rows[0])
	if components < 1 {
		return nil, fmt.Errorf("pca: components must be >= 1, got %d", components)
	}

	x := mat.NewDense(n, d, nil)
	for i, row := range rows {
		if len(row) != d {
			return nil, fmt.Errorf("pca: ragged input at row %d", i)
		}
		x.SetRow(i, row)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("pca: decomposition failed")
	}

	var vec mat.Dense
	pc.VectorsTo(&vec)
	_, available := vec.Dims()
	k := components
	if k > available {
		k = available
	}

	// Project the column-centered data onto the leading components.
	centered := mat.NewDense(n, d, nil)
	means := make([]float64, d)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, x)
		means[j] = stat.Mean(col, nil)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			centered.Set(i, j, x.At(i, j)-means[j])
		}
	}

	var proj mat.Dense
	proj.Mul(centered, vec.Slice(0, d, 0, k))

	out := make([][]float64, n)
	for i := range out {
		out[i] = append([]float64(nil), proj.RawRowView(i)...)
	}
	return out, nil
}
