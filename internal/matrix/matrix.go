// Package matrix provides the in-memory count matrix and its
// MatrixMarket/10x triplet loader. Rows are genes, columns are cells.
package matrix

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrNegativeCount is returned when a matrix would contain a negative entry.
var ErrNegativeCount = errors.New("matrix: negative count")

// CountMatrix is a dense non-negative integer count matrix with named rows
// (genes) and columns (cells). Counts are stored as float64 so the matrix
// can back gonum operations directly; entries remain integer-valued.
// Name sets are fixed at construction.
type CountMatrix struct {
	genes []string
	cells []string
	data  *mat.Dense // genes x cells
}

// New builds a CountMatrix from row-major data of shape len(genes) x len(cells).
// It rejects negative entries and duplicate gene or cell names.
func New(genes, cells []string, data []float64) (*CountMatrix, error) {
	if len(data) != len(genes)*len(cells) {
		return nil, fmt.Errorf("matrix: data length %d does not match %d genes x %d cells",
			len(data), len(genes), len(cells))
	}
	if err := checkUnique("gene", genes); err != nil {
		return nil, err
	}
	if err := checkUnique("cell", cells); err != nil {
		return nil, err
	}
	for _, v := range data {
		if v < 0 {
			return nil, fmt.Errorf("%w: %v", ErrNegativeCount, v)
		}
	}
	return &CountMatrix{
		genes: append([]string(nil), genes...),
		cells: append([]string(nil), cells...),
		data:  mat.NewDense(len(genes), len(cells), append([]float64(nil), data...)),
	}, nil
}

func checkUnique(kind string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("matrix: duplicate %s name %q", kind, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// Genes returns a copy of the gene (row) names.
func (m *CountMatrix) Genes() []string {
	return append([]string(nil), m.genes...)
}

// Cells returns a copy of the cell (column) names.
func (m *CountMatrix) Cells() []string {
	return append([]string(nil), m.cells...)
}

// Dims returns (genes, cells).
func (m *CountMatrix) Dims() (int, int) {
	return m.data.Dims()
}

// At returns the count for gene row i, cell column j.
func (m *CountMatrix) At(i, j int) float64 {
	return m.data.At(i, j)
}

// Dense returns the underlying gonum matrix. Callers must treat it as
// read-only; pipelines needing a mutable copy should Clone first.
func (m *CountMatrix) Dense() *mat.Dense {
	return m.data
}

// Clone returns an independent deep copy.
func (m *CountMatrix) Clone() *CountMatrix {
	var d mat.Dense
	d.CloneFrom(m.data)
	return &CountMatrix{
		genes: append([]string(nil), m.genes...),
		cells: append([]string(nil), m.cells...),
		data:  &d,
	}
}

// GeneTotals returns the total count per gene (row sums).
func (m *CountMatrix) GeneTotals() []float64 {
	r, c := m.data.Dims()
	totals := make([]float64, r)
	for i := 0; i < r; i++ {
		row := m.data.RawRowView(i)
		sum := 0.0
		for j := 0; j < c; j++ {
			sum += row[j]
		}
		totals[i] = sum
	}
	return totals
}

// CellTotals returns the total count per cell (column sums), also known as
// library sizes.
func (m *CountMatrix) CellTotals() []float64 {
	r, c := m.data.Dims()
	totals := make([]float64, c)
	for i := 0; i < r; i++ {
		row := m.data.RawRowView(i)
		for j := 0; j < c; j++ {
			totals[j] += row[j]
		}
	}
	return totals
}

// SubsetGenes returns a new matrix containing only the gene rows whose
// indices appear in keep, in their original order. Cell identifiers and
// their ordering are preserved.
func (m *CountMatrix) SubsetGenes(keep []int) (*CountMatrix, error) {
	r, c := m.data.Dims()
	genes := make([]string, 0, len(keep))
	data := make([]float64, 0, len(keep)*c)
	for _, idx := range keep {
		if idx < 0 || idx >= r {
			return nil, fmt.Errorf("matrix: gene index %d out of range [0,%d)", idx, r)
		}
		genes = append(genes, m.genes[idx])
		data = append(data, m.data.RawRowView(idx)...)
	}
	return New(genes, m.cells, data)
}

// Counts returns a row-major copy of all counts. The copy is safe to
// mutate; the sample package builds variant matrices from it.
func (m *CountMatrix) Counts() []float64 {
	r, c := m.data.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, m.data.RawRowView(i)...)
	}
	return out
}
