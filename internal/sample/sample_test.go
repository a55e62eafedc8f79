package sample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpintar/countland/internal/matrix"
)

func newMatrix(t *testing.T, genes, cells int, data []float64) *matrix.CountMatrix {
	t.Helper()
	gn := make([]string, genes)
	cn := make([]string, cells)
	for i := range gn {
		gn[i] = "g" + string(rune('A'+i))
	}
	for j := range cn {
		cn[j] = "type_" + string(rune('A'+j))
	}
	m, err := matrix.New(gn, cn, data)
	require.NoError(t, err)
	return m
}

func TestGeneDownsample(t *testing.T) {
	m := newMatrix(t, 3, 4, []float64{
		10, 20, 30, 40, // total 100
		1, 1, 1, 1, // total 4
		0, 5, 0, 5, // total 10
	})

	g := NewGenerator(1)
	down, err := g.GeneDownsample(m, 10)
	require.NoError(t, err)

	totals := down.GeneTotals()
	assert.Equal(t, 10.0, totals[0], "row above target downsampled to target")
	assert.Equal(t, 4.0, totals[1], "row below target untouched")
	assert.Equal(t, 10.0, totals[2], "row at target untouched")

	// Row at or below target keeps its exact counts.
	for j := 0; j < 4; j++ {
		assert.Equal(t, 1.0, down.At(1, j))
	}

	// Downsampling never inflates a count and never goes negative.
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			v := down.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, m.At(i, j))
			assert.Equal(t, math.Trunc(v), v, "counts stay integer-valued")
		}
	}
}

func TestGeneDownsampleNoOpAboveTotal(t *testing.T) {
	m := newMatrix(t, 2, 2, []float64{3, 4, 1, 2})

	down, err := NewGenerator(1).GeneDownsample(m, 1000)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, m.At(i, j), down.At(i, j))
		}
	}
}

func TestGeneDownsampleDeterministic(t *testing.T) {
	data := []float64{10, 20, 30, 40, 8, 2, 12, 6}
	m := newMatrix(t, 2, 4, data)

	a, err := NewGenerator(42).GeneDownsample(m, 15)
	require.NoError(t, err)
	b, err := NewGenerator(42).GeneDownsample(m, 15)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		for j := 0; j < 4; j++ {
			assert.Equal(t, a.At(i, j), b.At(i, j), "same seed must reproduce the variant")
		}
	}
}

func TestGeneDownsampleInvalidTarget(t *testing.T) {
	m := newMatrix(t, 1, 1, []float64{5})
	g := NewGenerator(1)

	for _, target := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := g.GeneDownsample(m, target)
		assert.ErrorIs(t, err, ErrInvalidTarget)
	}
}

func TestCellDownsampleMin(t *testing.T) {
	m := newMatrix(t, 3, 3, []float64{
		10, 2, 7,
		10, 1, 7,
		10, 1, 6,
	}) // library sizes 30, 4, 20

	down, err := NewGenerator(7).CellDownsampleMin(m)
	require.NoError(t, err)

	for _, total := range down.CellTotals() {
		assert.Equal(t, 4.0, total, "every cell ends at the minimum library size")
	}
	assert.Equal(t, m.Cells(), down.Cells())
	assert.Equal(t, m.Genes(), down.Genes())
}

func TestGeneSubsetPreservesCells(t *testing.T) {
	m := newMatrix(t, 4, 2, []float64{
		100, 100, // dominant gene
		1, 2,
		3, 1,
		0, 1,
	})

	sub, err := NewGenerator(1).GeneSubset(m, BelowPercentile(m.GeneTotals(), 0.95))
	require.NoError(t, err)

	genes, cells := sub.Dims()
	assert.Equal(t, 3, genes, "dominant gene removed")
	assert.Equal(t, 2, cells)
	assert.Equal(t, m.Cells(), sub.Cells())

	// Retained rows carry their original counts.
	assert.Equal(t, 1.0, sub.At(0, 0))
	assert.Equal(t, 2.0, sub.At(0, 1))
}

func TestGeneSubsetEmpty(t *testing.T) {
	m := newMatrix(t, 2, 2, []float64{1, 2, 3, 4})
	_, err := NewGenerator(1).GeneSubset(m, func(int, float64) bool { return false })
	assert.Error(t, err)
}

func TestQuantile(t *testing.T) {
	v := []float64{4, 1, 3, 2}

	assert.Equal(t, 2.5, Quantile(v, 0.5))
	assert.Equal(t, 1.75, Quantile(v, 0.25))
	assert.Equal(t, 1.0, Quantile(v, 0))
	assert.Equal(t, 4.0, Quantile(v, 1))
	assert.InDelta(t, 3.85, Quantile(v, 0.95), 1e-9)
}

func TestQuantileSingleElement(t *testing.T) {
	for _, p := range []float64{0, 0.25, 0.5, 0.95, 1} {
		assert.Equal(t, 7.0, Quantile([]float64{7}, p))
	}
}

func TestMedianGeneTotalSingleGene(t *testing.T) {
	m := newMatrix(t, 1, 2, []float64{3, 4})
	assert.Equal(t, 7.0, MedianGeneTotal(m))
}

func TestMedianGeneTotal(t *testing.T) {
	m := newMatrix(t, 3, 2, []float64{
		1, 1, // 2
		5, 5, // 10
		2, 2, // 4
	})
	assert.Equal(t, 4.0, MedianGeneTotal(m))
}
