// Package clustering implements the four benchmark pipelines: the
// counts-based spectral pipeline, the normalize+PCA+Louvain graph
// pipeline (with and without a variance-stabilizing transform), and the
// naive PCA+kmeans baseline.
package clustering

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/jpintar/countland/internal/core"
	"github.com/jpintar/countland/internal/matrix"
)

// Params holds the shared pipeline parameters.
type Params struct {
	Clusters   int     // Target number of clusters
	Components int     // Dimensionality of the intermediate embedding
	Neighbors  int     // k for kNN graph/affinity construction
	Resolution float64 // Louvain resolution (graph pipelines only)
}

// DefaultParams returns the benchmark defaults: 11 clusters matching the
// ground-truth cardinality of the reference dataset.
func DefaultParams() Params {
	return Params{
		Clusters:   11,
		Components: 10,
		Neighbors:  20,
		Resolution: 1.0,
	}
}

// Pipeline is a pure function from a count matrix to a cluster
// assignment. Implementations are deterministic given the injected
// random source.
type Pipeline interface {
	Name() string
	Run(m *matrix.CountMatrix, rng *rand.Rand) (*core.PipelineResult, error)
}

// cellRows returns the matrix transposed into cell-major rows
// (cells x genes), the representation every pipeline embeds.
func cellRows(m *matrix.CountMatrix) [][]float64 {
	genes, cells := m.Dims()
	rows := make([][]float64, cells)
	for j := 0; j < cells; j++ {
		rows[j] = make([]float64, genes)
		for i := 0; i < genes; i++ {
			rows[j][i] = m.At(i, j)
		}
	}
	return rows
}

// logNormalize scales each cell to countsPerCell total and applies
// log1p, in place.
func logNormalize(rows [][]float64, countsPerCell float64) {
	for _, row := range rows {
		total := 0.0
		for _, v := range row {
			total += v
		}
		if total == 0 {
			continue
		}
		for j, v := range row {
			row[j] = math.Log1p(v / total * countsPerCell)
		}
	}
}

// scaleGenes standardizes each gene column to zero mean and unit
// variance across cells, in place. Constant genes are zeroed.
func scaleGenes(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	n := float64(len(rows))
	d := len(rows[0])
	for j := 0; j < d; j++ {
		mean := 0.0
		for _, row := range rows {
			mean += row[j]
		}
		mean /= n
		variance := 0.0
		for _, row := range rows {
			diff := row[j] - mean
			variance += diff * diff
		}
		variance /= n - 1
		if variance == 0 {
			for _, row := range rows {
				row[j] = 0
			}
			continue
		}
		sd := math.Sqrt(variance)
		for _, row := range rows {
			row[j] = (row[j] - mean) / sd
		}
	}
}

// buildResult assembles a PipelineResult from an assignment aligned with
// the matrix's cell order, attaching the first two embedding components
// for visualization.
func buildResult(name string, m *matrix.CountMatrix, assignment []int, embedding [][]float64) (*core.PipelineResult, error) {
	cells := m.Cells()
	if len(assignment) != len(cells) {
		return nil, fmt.Errorf("clustering: %s produced %d assignments for %d cells",
			name, len(assignment), len(cells))
	}
	byCell := make(map[string]int, len(cells))
	distinct := make(map[int]struct{})
	for i, id := range cells {
		byCell[id] = assignment[i]
		distinct[assignment[i]] = struct{}{}
	}
	var coords [][]float64
	if embedding != nil {
		coords = make([][]float64, len(embedding))
		for i, row := range embedding {
			k := 2
			if len(row) < k {
				k = len(row)
			}
			coords[i] = append([]float64(nil), row[:k]...)
		}
	}
	return &core.PipelineResult{
		Pipeline:   name,
		Assignment: byCell,
		Order:      cells,
		Embedding:  coords,
		Clusters:   len(distinct),
	}, nil
}
