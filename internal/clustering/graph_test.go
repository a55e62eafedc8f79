package clustering

import (
	"math/rand"
	"testing"

	"github.com/jpintar/countland/internal/matrix"
)

func TestLogNormGraphRecoversBlocks(t *testing.T) {
	m := blockMatrix(t)

	result, err := NewLogNormGraph(blockParams()).Run(m, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Pipeline != "lognorm-louvain" {
		t.Errorf("pipeline name = %q", result.Pipeline)
	}
	if len(result.Order) != 8 {
		t.Fatalf("got %d cells, want 8", len(result.Order))
	}
	if result.Clusters < 1 || result.Clusters > 8 {
		t.Errorf("implausible cluster count %d", result.Clusters)
	}
	if result.Modularity <= 0 {
		t.Errorf("modularity = %v, want > 0 on a structured graph", result.Modularity)
	}

	// Louvain may subdivide a group, but it must never mix the two
	// populations into one community.
	assignments := result.AssignmentInOrder()
	seen := map[int]bool{}
	for i := 0; i < 4; i++ {
		seen[assignments[i]] = true
	}
	for i := 4; i < 8; i++ {
		if seen[assignments[i]] {
			t.Errorf("community spans both populations: %v", assignments)
			break
		}
	}
}

func TestVSTGraphRuns(t *testing.T) {
	m := blockMatrix(t)

	result, err := NewVSTGraph(blockParams()).Run(m, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Pipeline != "vst-louvain" {
		t.Errorf("pipeline name = %q", result.Pipeline)
	}
	if len(result.Assignment) != 8 {
		t.Errorf("got %d assignments, want 8", len(result.Assignment))
	}
}

func TestGraphPipelineDeterministic(t *testing.T) {
	m := blockMatrix(t)
	p := NewLogNormGraph(blockParams())

	a, err := p.Run(m, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Run(m, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range a.Order {
		if a.Assignment[id] != b.Assignment[id] {
			t.Fatalf("same seed diverged at cell %s", id)
		}
	}
}

func TestGraphPipelineTooFewCells(t *testing.T) {
	m, err := matrix.New([]string{"g1", "g2"}, []string{"only_cell"}, []float64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewLogNormGraph(blockParams()).Run(m, rand.New(rand.NewSource(1))); err == nil {
		t.Error("expected error for a single cell")
	}
}

func TestBuildKNNGraph(t *testing.T) {
	embedding := [][]float64{
		{0, 0}, {0, 1}, {10, 10},
	}
	wg := buildKNNGraph(embedding, 1)

	if wg.Nodes().Len() != 3 {
		t.Fatalf("graph has %d nodes, want 3", wg.Nodes().Len())
	}
	// Nearest-neighbor edges: 0-1 mutual, 2 attaches to its closest point.
	if wg.WeightedEdge(0, 1) == nil {
		t.Error("expected edge between the two close points")
	}
	e := wg.WeightedEdge(0, 1)
	if w := e.Weight(); w != 0.5 {
		t.Errorf("edge weight = %v, want 1/(1+1)", w)
	}
}

func TestNaiveRecoversBlocks(t *testing.T) {
	m := blockMatrix(t)

	result, err := NewNaive(blockParams()).Run(m, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Pipeline != "pca-kmeans" {
		t.Errorf("pipeline name = %q", result.Pipeline)
	}
	if result.Clusters != 2 {
		t.Errorf("got %d clusters, want 2", result.Clusters)
	}
	assertSplitsGroups(t, result.AssignmentInOrder())
}
