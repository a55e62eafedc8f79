package clustering

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/jpintar/countland/internal/core"
	"github.com/jpintar/countland/internal/logger"
	"github.com/jpintar/countland/internal/matrix"
)

// GraphPipeline is the normalization + PCA + graph-clustering pipeline:
// counts are transformed, cells embedded by PCA, connected into a
// weighted kNN graph and partitioned by Louvain community detection.
// Louvain optimizes modularity, so the cluster count is data-driven
// rather than fixed at Params.Clusters.
type GraphPipeline struct {
	params    Params
	name      string
	transform func(rows [][]float64)
	log       *slog.Logger
}

// NewLogNormGraph builds the pipeline with CP10K log1p normalization and
// per-gene scaling.
func NewLogNormGraph(params Params) *GraphPipeline {
	return &GraphPipeline{
		params: params,
		name:   "lognorm-louvain",
		transform: func(rows [][]float64) {
			logNormalize(rows, 1e4)
			scaleGenes(rows)
		},
		log: logger.Get(),
	}
}

// NewVSTGraph builds the pipeline with the Pearson-residual
// variance-stabilizing transform in place of log normalization.
func NewVSTGraph(params Params) *GraphPipeline {
	return &GraphPipeline{
		params:    params,
		name:      "vst-louvain",
		transform: PearsonResiduals,
		log:       logger.Get(),
	}
}

// Name implements Pipeline.
func (g *GraphPipeline) Name() string { return g.name }

// Run implements Pipeline.
func (g *GraphPipeline) Run(m *matrix.CountMatrix, rng *rand.Rand) (*core.PipelineResult, error) {
	rows := cellRows(m)
	n := len(rows)
	if n < 2 {
		return nil, fmt.Errorf("%s: need at least 2 cells, got %d", g.name, n)
	}

	g.transform(rows)

	embedding, err := PCA(rows, g.params.Components)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}

	wg := buildKNNGraph(embedding, g.params.Neighbors)
	if wg.Edges().Len() == 0 {
		return nil, fmt.Errorf("%s: similarity graph has no edges", g.name)
	}

	reduced := community.Modularize(wg, g.params.Resolution, exprand.NewSource(uint64(rng.Int63())))
	communities := reduced.Communities()
	q := community.Q(wg, communities, g.params.Resolution)

	assignments := make([]int, n)
	for clusterID, comm := range communities {
		for _, node := range comm {
			assignments[int(node.ID())] = clusterID
		}
	}

	g.log.Debug("graph pipeline done",
		"pipeline", g.name, "cells", n, "communities", len(communities), "modularity", q)

	result, err := buildResult(g.name, m, assignments, embedding)
	if err != nil {
		return nil, err
	}
	result.Modularity = q
	return result, nil
}

// buildKNNGraph connects each cell to its k nearest neighbors in the
// embedding, weighting edges by inverse distance.
func buildKNNGraph(embedding [][]float64, k int) *simple.WeightedUndirectedGraph {
	n := len(embedding)
	if k > n-1 {
		k = n - 1
	}
	wg := simple.NewWeightedUndirectedGraph(0, 0)
	for i := 0; i < n; i++ {
		wg.AddNode(simple.Node(int64(i)))
	}

	distances := DistanceMatrix(embedding, EuclideanDistance)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		for j := range order {
			order[j] = j
		}
		row := distances[i]
		sort.Slice(order, func(a, b int) bool { return row[order[a]] < row[order[b]] })

		kept := 0
		for _, j := range order {
			if j == i {
				continue
			}
			if kept == k {
				break
			}
			if e := wg.WeightedEdge(int64(i), int64(j)); e == nil {
				wg.SetWeightedEdge(simple.WeightedEdge{
					F: simple.Node(int64(i)),
					T: simple.Node(int64(j)),
					W: 1 / (1 + row[j]),
				})
			}
			kept++
		}
	}
	return wg
}
