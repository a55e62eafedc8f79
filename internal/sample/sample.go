// Package sample derives preprocessing variants of a count matrix:
// gene/cell downsampling by random sampling without replacement, and gene
// subsetting by total-count percentile.
package sample

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/jpintar/countland/internal/logger"
	"github.com/jpintar/countland/internal/matrix"
)

// ErrInvalidTarget is returned when a downsample target is not a usable
// count total (negative or not finite).
var ErrInvalidTarget = errors.New("sample: invalid downsample target")

// Generator derives variant matrices from a source count matrix. All
// stochastic redistribution draws from the single seeded source, so a
// fixed seed reproduces every variant exactly.
type Generator struct {
	rng *rand.Rand
	log *slog.Logger
}

// NewGenerator creates a variant generator seeded for reproducibility.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		log: logger.Get(),
	}
}

// GeneDownsample redistributes each gene row whose total exceeds target
// down to target counts, via uniform sampling without replacement from
// that row's count pool. Rows at or below target are left unchanged.
func (g *Generator) GeneDownsample(m *matrix.CountMatrix, target float64) (*matrix.CountMatrix, error) {
	if err := checkTarget(target); err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	data := m.Counts()
	changed := 0
	for i := 0; i < rows; i++ {
		row := data[i*cols : (i+1)*cols]
		if vectorTotal(row) <= target {
			continue
		}
		g.downsampleVector(row, int(target))
		changed++
	}
	g.log.Debug("gene downsample", "target", target, "genes_changed", changed)
	return matrix.New(m.Genes(), m.Cells(), data)
}

// CellDownsample redistributes each cell column whose total exceeds target
// down to target counts. With TargetMin, every column ends at the minimum
// library size of the input matrix.
func (g *Generator) CellDownsample(m *matrix.CountMatrix, target float64) (*matrix.CountMatrix, error) {
	if err := checkTarget(target); err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	data := m.Counts()
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			col[i] = data[i*cols+j]
		}
		if vectorTotal(col) > target {
			g.downsampleVector(col, int(target))
			for i := 0; i < rows; i++ {
				data[i*cols+j] = col[i]
			}
		}
	}
	return matrix.New(m.Genes(), m.Cells(), data)
}

// CellDownsampleMin downsamples every cell to the minimum library size.
func (g *Generator) CellDownsampleMin(m *matrix.CountMatrix) (*matrix.CountMatrix, error) {
	totals := m.CellTotals()
	if len(totals) == 0 {
		return nil, fmt.Errorf("%w: matrix has no cells", ErrInvalidTarget)
	}
	min := totals[0]
	for _, t := range totals[1:] {
		if t < min {
			min = t
		}
	}
	g.log.Debug("cell downsample", "target", min)
	return g.CellDownsample(m, min)
}

// GeneSubset retains only the genes whose (index, total count) satisfy
// keep, preserving row order and all cell identifiers.
func (g *Generator) GeneSubset(m *matrix.CountMatrix, keep func(i int, total float64) bool) (*matrix.CountMatrix, error) {
	totals := m.GeneTotals()
	var idx []int
	for i, t := range totals {
		if keep(i, t) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("sample: gene subset retains no genes")
	}
	g.log.Debug("gene subset", "kept", len(idx), "of", len(totals))
	return m.SubsetGenes(idx)
}

// BelowPercentile returns a subset predicate keeping genes with total
// count strictly below the pth percentile of totals (R-7 quantile).
func BelowPercentile(totals []float64, p float64) func(i int, total float64) bool {
	cut := Quantile(totals, p)
	return func(_ int, total float64) bool {
		return total < cut
	}
}

// Quantile returns the p-quantile of v according to the R-7 method.
func Quantile(v []float64, p float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	h := float64(len(s)-1) * p
	i := int(h)
	if i >= len(s)-1 {
		return s[len(s)-1]
	}
	return s[i] + (h-math.Floor(h))*(s[i+1]-s[i])
}

// MedianGeneTotal returns the median gene total, the default gene
// downsampling target.
func MedianGeneTotal(m *matrix.CountMatrix) float64 {
	return Quantile(m.GeneTotals(), 0.5)
}

func checkTarget(target float64) error {
	if target < 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, target)
	}
	return nil
}

func vectorTotal(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum
}

// downsampleVector redistributes v in place to exactly target total
// counts, choosing the surviving counts uniformly without replacement
// from the pool of individual observations. Callers guarantee
// total(v) > target >= 0.
func (g *Generator) downsampleVector(v []float64, target int) {
	remaining := int(vectorTotal(v))
	keep := target
	for i, c := range v {
		ci := int(c)
		kept := 0
		for u := 0; u < ci; u++ {
			// Each remaining observation survives with probability
			// keep/remaining, which yields an exact uniform sample
			// without replacement across the whole vector.
			if keep > 0 && g.rng.Float64()*float64(remaining) < float64(keep) {
				kept++
				keep--
			}
			remaining--
		}
		v[i] = float64(kept)
	}
}
