package clustering

import (
	"fmt"
	"math/rand"

	"github.com/jpintar/countland/internal/core"
	"github.com/jpintar/countland/internal/matrix"
)

// Naive is the baseline pipeline: PCA directly on raw counts followed by
// kmeans. No normalization, no graph structure.
type Naive struct {
	params Params
}

// NewNaive creates the PCA+kmeans baseline.
func NewNaive(params Params) *Naive {
	return &Naive{params: params}
}

// Name implements Pipeline.
func (p *Naive) Name() string { return "pca-kmeans" }

// Run implements Pipeline.
func (p *Naive) Run(m *matrix.CountMatrix, rng *rand.Rand) (*core.PipelineResult, error) {
	rows := cellRows(m)
	if len(rows) < p.params.Clusters {
		return nil, fmt.Errorf("pca-kmeans: %d cells cannot form %d clusters", len(rows), p.params.Clusters)
	}

	embedding, err := PCA(rows, p.params.Components)
	if err != nil {
		return nil, fmt.Errorf("pca-kmeans: %w", err)
	}

	assignments, _, err := NewKMeans().Partition(embedding, p.params.Clusters, rng)
	if err != nil {
		return nil, fmt.Errorf("pca-kmeans: %w", err)
	}
	return buildResult(p.Name(), m, assignments, embedding)
}
