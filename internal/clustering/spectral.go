package clustering

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jpintar/countland/internal/core"
	"github.com/jpintar/countland/internal/logger"
	"github.com/jpintar/countland/internal/matrix"
)

// Countland is the counts-based pipeline: cells are compared by the dot
// product of their raw count vectors, the similarity graph is sparsified
// to k nearest neighbors, and cells are embedded on the leading
// eigenvectors of the normalized graph Laplacian before kmeans
// partitioning. No normalization or transformation of counts happens at
// any stage.
type Countland struct {
	params Params
	log    *slog.Logger
}

// NewCountland creates the counts-based spectral pipeline.
func NewCountland(params Params) *Countland {
	return &Countland{params: params, log: logger.Get()}
}

// Name implements Pipeline.
func (c *Countland) Name() string { return "countland" }

// Run implements Pipeline.
func (c *Countland) Run(m *matrix.CountMatrix, rng *rand.Rand) (*core.PipelineResult, error) {
	rows := cellRows(m)
	n := len(rows)
	if n < c.params.Clusters {
		return nil, fmt.Errorf("countland: %d cells cannot form %d clusters", n, c.params.Clusters)
	}

	affinity := knnAffinity(rows, c.params.Neighbors)
	laplacian := normalizedLaplacian(affinity)

	var eig mat.EigenSym
	if ok := eig.Factorize(laplacian, true); !ok {
		return nil, fmt.Errorf("countland: eigendecomposition of Laplacian failed")
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Eigenvalues come back ascending; the first eigenvector is the
	// trivial constant one, so the embedding starts at column 1.
	comps := c.params.Components
	if comps > n-1 {
		comps = n - 1
	}
	embedding := make([][]float64, n)
	for i := 0; i < n; i++ {
		embedding[i] = make([]float64, comps)
		for j := 0; j < comps; j++ {
			embedding[i][j] = vectors.At(i, j+1)
		}
	}

	assignments, _, err := NewKMeans().Partition(embedding, c.params.Clusters, rng)
	if err != nil {
		return nil, fmt.Errorf("countland: %w", err)
	}

	c.log.Debug("countland pipeline done", "cells", n, "components", comps)
	return buildResult(c.Name(), m, assignments, embedding)
}

// knnAffinity builds a symmetric affinity matrix keeping, per cell, the
// dot-product similarities to its k most similar other cells.
func knnAffinity(rows [][]float64, k int) *mat.SymDense {
	n := len(rows)
	if k > n-1 {
		k = n - 1
	}
	sim := DistanceMatrix(rows, func(a, b []float64) float64 {
		return DotProduct(a, b)
	})

	affinity := mat.NewSymDense(n, nil)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		for j := range order {
			order[j] = j
		}
		row := sim[i]
		sort.Slice(order, func(a, b int) bool { return row[order[a]] > row[order[b]] })
		kept := 0
		for _, j := range order {
			if j == i {
				continue
			}
			if kept == k {
				break
			}
			if row[j] > 0 {
				affinity.SetSym(i, j, row[j])
			}
			kept++
		}
	}
	return affinity
}

// normalizedLaplacian computes D^{-1/2} (D - A) D^{-1/2} for a symmetric
// affinity matrix. Isolated cells contribute identity rows.
func normalizedLaplacian(affinity *mat.SymDense) *mat.SymDense {
	n, _ := affinity.Dims()
	degree := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			degree[i] += affinity.At(i, j)
		}
	}
	invSqrt := make([]float64, n)
	for i, d := range degree {
		if d > 0 {
			invSqrt[i] = 1 / math.Sqrt(d)
		}
	}

	laplacian := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var v float64
			if i == j {
				if degree[i] > 0 {
					v = 1
				}
			} else {
				v = -affinity.At(i, j) * invSqrt[i] * invSqrt[j]
			}
			laplacian.SetSym(i, j, v)
		}
	}
	return laplacian
}
