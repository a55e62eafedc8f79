package clustering

import (
	"math"
	"testing"

	"github.com/jpintar/countland/internal/matrix"
)

func blockMatrix(t *testing.T) *matrix.CountMatrix {
	t.Helper()
	// Two populations of four cells: group a expresses genes 0-2, group b
	// genes 3-5. Gene 6 is a weak shared housekeeping signal connecting
	// the groups. Counts carry per-cell jitter so no two cells coincide.
	genes := []string{"g0", "g1", "g2", "g3", "g4", "g5", "g6"}
	cells := []string{
		"a_1", "a_2", "a_3", "a_4",
		"b_1", "b_2", "b_3", "b_4",
	}
	data := make([]float64, len(genes)*len(cells))
	set := func(gene, cell int, v float64) { data[gene*len(cells)+cell] = v }
	for c := 0; c < 4; c++ {
		for g := 0; g < 3; g++ {
			set(g, c, float64(10+2*c+g))
		}
	}
	for c := 4; c < 8; c++ {
		for g := 3; g < 6; g++ {
			set(g, c, float64(11+2*(c-4)+g))
		}
	}
	for c := 0; c < 8; c++ {
		set(6, c, 1)
	}
	m, err := matrix.New(genes, cells, data)
	if err != nil {
		t.Fatalf("building block matrix: %v", err)
	}
	return m
}

func blockParams() Params {
	return Params{Clusters: 2, Components: 2, Neighbors: 4, Resolution: 1.0}
}

// assertSplitsGroups checks that the first four and last four cells land
// in two distinct pure clusters.
func assertSplitsGroups(t *testing.T, assignments []int) {
	t.Helper()
	if len(assignments) != 8 {
		t.Fatalf("got %d assignments, want 8", len(assignments))
	}
	for i := 1; i < 4; i++ {
		if assignments[i] != assignments[0] {
			t.Errorf("group a split: %v", assignments)
			return
		}
		if assignments[4+i] != assignments[4] {
			t.Errorf("group b split: %v", assignments)
			return
		}
	}
	if assignments[0] == assignments[4] {
		t.Errorf("groups merged: %v", assignments)
	}
}

func TestCellRows(t *testing.T) {
	m, err := matrix.New(
		[]string{"g1", "g2"}, []string{"c1", "c2", "c3"},
		[]float64{1, 2, 3, 4, 5, 6},
	)
	if err != nil {
		t.Fatal(err)
	}
	rows := cellRows(m)
	if len(rows) != 3 || len(rows[0]) != 2 {
		t.Fatalf("cellRows shape = %dx%d, want 3x2", len(rows), len(rows[0]))
	}
	if rows[0][0] != 1 || rows[0][1] != 4 || rows[2][1] != 6 {
		t.Errorf("transpose wrong: %v", rows)
	}
}

func TestLogNormalize(t *testing.T) {
	rows := [][]float64{
		{1, 3}, // total 4
		{0, 0}, // all-zero cell stays zero
	}
	logNormalize(rows, 1e4)

	if want := math.Log1p(1.0 / 4 * 1e4); math.Abs(rows[0][0]-want) > 1e-12 {
		t.Errorf("rows[0][0] = %v, want %v", rows[0][0], want)
	}
	if rows[1][0] != 0 || rows[1][1] != 0 {
		t.Errorf("zero cell modified: %v", rows[1])
	}
}

func TestScaleGenes(t *testing.T) {
	rows := [][]float64{
		{1, 5},
		{3, 5},
		{5, 5},
	}
	scaleGenes(rows)

	var mean, variance float64
	for _, r := range rows {
		mean += r[0]
	}
	mean /= 3
	for _, r := range rows {
		variance += (r[0] - mean) * (r[0] - mean)
	}
	variance /= 2
	if math.Abs(mean) > 1e-12 {
		t.Errorf("scaled gene mean = %v, want 0", mean)
	}
	if math.Abs(variance-1) > 1e-12 {
		t.Errorf("scaled gene variance = %v, want 1", variance)
	}
	for _, r := range rows {
		if r[1] != 0 {
			t.Errorf("constant gene not zeroed: %v", rows)
			break
		}
	}
}

func TestPearsonResiduals(t *testing.T) {
	rows := [][]float64{
		{4, 0, 2},
		{0, 6, 1},
		{2, 2, 2},
	}
	PearsonResiduals(rows)

	clip := math.Sqrt(3)
	for i, row := range rows {
		for j, v := range row {
			if math.Abs(v) > clip+1e-12 {
				t.Errorf("residual [%d][%d] = %v exceeds clip %v", i, j, v, clip)
			}
		}
	}
}

func TestPearsonResidualsZeroGene(t *testing.T) {
	rows := [][]float64{
		{4, 0},
		{2, 0},
	}
	PearsonResiduals(rows)
	if rows[0][1] != 0 || rows[1][1] != 0 {
		t.Errorf("unobserved gene residuals = %v, %v, want 0", rows[0][1], rows[1][1])
	}
}

func TestDistances(t *testing.T) {
	a := []float64{0, 3}
	b := []float64{4, 0}

	if d := EuclideanDistance(a, b); d != 5 {
		t.Errorf("EuclideanDistance = %v, want 5", d)
	}
	if d := DotProduct(a, b); d != 0 {
		t.Errorf("DotProduct = %v, want 0", d)
	}
	if d := CosineDistance(a, a); math.Abs(d) > 1e-12 {
		t.Errorf("CosineDistance(a,a) = %v, want 0", d)
	}
	if d := CosineDistance(a, []float64{0, 0}); d != 1 {
		t.Errorf("CosineDistance with zero vector = %v, want 1", d)
	}

	dm := DistanceMatrix([][]float64{a, b}, EuclideanDistance)
	if dm[0][1] != 5 || dm[1][0] != 5 || dm[0][0] != 0 {
		t.Errorf("DistanceMatrix wrong: %v", dm)
	}
}

func TestPCA(t *testing.T) {
	// Points spread along one direction; the first component captures it.
	rows := [][]float64{
		{0, 0, 1},
		{1, 1, 1},
		{2, 2, 1},
		{3, 3, 1},
	}
	emb, err := PCA(rows, 2)
	if err != nil {
		t.Fatalf("PCA: %v", err)
	}
	if len(emb) != 4 {
		t.Fatalf("embedding has %d rows, want 4", len(emb))
	}

	// Projections along the dominant axis are evenly spaced and ordered.
	step := emb[1][0] - emb[0][0]
	for i := 1; i < 3; i++ {
		if math.Abs((emb[i+1][0]-emb[i][0])-step) > 1e-9 {
			t.Errorf("projections not evenly spaced: %v", emb)
			break
		}
	}
	if step == 0 {
		t.Error("first component carries no variance")
	}
}

func TestPCAErrors(t *testing.T) {
	if _, err := PCA([][]float64{{1, 2}}, 1); err == nil {
		t.Error("expected error for a single point")
	}
	if _, err := PCA([][]float64{{1}, {2}}, 0); err == nil {
		t.Error("expected error for zero components")
	}
	if _, err := PCA([][]float64{{1, 2}, {3}}, 1); err == nil {
		t.Error("expected error for ragged input")
	}
}
