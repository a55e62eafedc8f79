package visual

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jpintar/countland/internal/core"
)

func testRun(title string) EmbeddingRun {
	return EmbeddingRun{
		Title: title,
		Coords: [][]float64{
			{0.1, 0.2}, {0.2, 0.1}, {5.0, 5.1}, {5.1, 5.0},
		},
		Clusters: []int{0, 0, 1, 1},
		Labels:   []string{"alpha", "alpha", "beta", "beta"},
	}
}

func readSVG(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	s := string(content)
	if !strings.Contains(s, "<svg") {
		t.Fatalf("%s does not look like SVG", path)
	}
	return s
}

func TestEmbeddingPanel(t *testing.T) {
	dir := t.TempDir()
	pl := New(600, 300)

	path, err := pl.EmbeddingPanel([]EmbeddingRun{testRun("countland"), testRun("pca-kmeans")}, dir)
	if err != nil {
		t.Fatalf("EmbeddingPanel: %v", err)
	}
	if filepath.Base(path) != "embeddings.svg" {
		t.Errorf("path = %q", path)
	}

	svg := readSVG(t, path)
	for _, title := range []string{"countland clusters", "countland truth", "pca-kmeans clusters"} {
		if !strings.Contains(svg, title) {
			t.Errorf("panel missing title %q", title)
		}
	}
}

func TestEmbeddingPanelEmpty(t *testing.T) {
	pl := New(600, 300)
	if _, err := pl.EmbeddingPanel(nil, t.TempDir()); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestScorePanel(t *testing.T) {
	dir := t.TempDir()
	pl := New(600, 300)

	table := &core.ResultsTable{}
	table.Add("countland", core.ScoreRow{ARI: 0.767, NMI: 0.812, Homogeneity: 0.834})
	table.Add("lognorm-louvain", core.ScoreRow{ARI: 0.551, NMI: 0.702, Homogeneity: 0.71})

	path, err := pl.ScorePanel(table, dir)
	if err != nil {
		t.Fatalf("ScorePanel: %v", err)
	}
	if filepath.Base(path) != "scores.svg" {
		t.Errorf("path = %q", path)
	}

	svg := readSVG(t, path)
	for _, want := range []string{"ARI", "NMI", "homogeneity", "countland"} {
		if !strings.Contains(svg, want) {
			t.Errorf("panel missing %q", want)
		}
	}
}

func TestScorePanelEmpty(t *testing.T) {
	pl := New(600, 300)
	if _, err := pl.ScorePanel(&core.ResultsTable{}, t.TempDir()); err == nil {
		t.Error("expected error for empty table")
	}
}
