// Package visual renders the benchmark figure panels as SVG files using
// gonum/plot: embedding scatters colored by cluster and by ground truth,
// and a grouped bar panel of agreement scores.
package visual

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/jpintar/countland/internal/core"
)

// EmbeddingRun is one pipeline's 2-D embedding with its predicted
// clusters and the ground-truth labels, aligned by index.
type EmbeddingRun struct {
	Title    string
	Coords   [][]float64
	Clusters []int
	Labels   []string
}

// Plotter draws benchmark panels at a fixed size.
type Plotter struct {
	Width  vg.Length
	Height vg.Length
}

// New creates a Plotter with panel dimensions in points.
func New(widthPts, heightPts int) *Plotter {
	return &Plotter{
		Width:  vg.Points(float64(widthPts)),
		Height: vg.Points(float64(heightPts)),
	}
}

// EmbeddingPanel writes embeddings.svg: one row per pipeline, predicted
// clusters on the left, ground-truth labels on the right.
func (pl *Plotter) EmbeddingPanel(runs []EmbeddingRun, outputDir string) (string, error) {
	if len(runs) == 0 {
		return "", fmt.Errorf("visual: no embeddings to plot")
	}

	plots := make([][]*plot.Plot, len(runs))
	for i, run := range runs {
		left, err := scatterByGroup(run.Title+" clusters", run.Coords, clusterGroups(run.Clusters))
		if err != nil {
			return "", err
		}
		right, err := scatterByGroup(run.Title+" truth", run.Coords, labelGroups(run.Labels))
		if err != nil {
			return "", err
		}
		plots[i] = []*plot.Plot{left, right}
	}

	height := pl.Height * vg.Length(len(runs))
	return pl.save(plots, len(runs), 2, pl.Width, height, outputDir, "embeddings.svg")
}

// ScorePanel writes scores.svg: grouped bars of ARI, NMI and homogeneity
// per pipeline, in run order.
func (pl *Plotter) ScorePanel(table *core.ResultsTable, outputDir string) (string, error) {
	if len(table.Entries) == 0 {
		return "", fmt.Errorf("visual: no scores to plot")
	}

	p := plot.New()
	p.Title.Text = "Clustering agreement with ground truth"
	p.Y.Label.Text = "score"
	p.Y.Min = 0
	p.Y.Max = 1

	ari := make(plotter.Values, len(table.Entries))
	nmi := make(plotter.Values, len(table.Entries))
	hom := make(plotter.Values, len(table.Entries))
	names := make([]string, len(table.Entries))
	for i, e := range table.Entries {
		ari[i] = e.Score.ARI
		nmi[i] = e.Score.NMI
		hom[i] = e.Score.Homogeneity
		names[i] = e.Name
	}

	barWidth := vg.Points(8)
	series := []struct {
		name   string
		values plotter.Values
		offset vg.Length
	}{
		{"ARI", ari, -barWidth},
		{"NMI", nmi, 0},
		{"homogeneity", hom, barWidth},
	}
	for i, s := range series {
		bars, err := plotter.NewBarChart(s.values, barWidth)
		if err != nil {
			return "", fmt.Errorf("visual: score bars: %w", err)
		}
		bars.Offset = s.offset
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.Legend.Add(s.name, bars)
	}
	p.Legend.Top = true
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = -0.6
	p.X.Tick.Label.XAlign = draw.XLeft

	return pl.save([][]*plot.Plot{{p}}, 1, 1, pl.Width, pl.Height, outputDir, "scores.svg")
}

// scatterByGroup plots embedding coordinates with one scatter per group.
func scatterByGroup(title string, coords [][]float64, groups map[string][]int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "component 1"
	p.Y.Label.Text = "component 2"

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for gi, name := range names {
		pts := make(plotter.XYs, 0, len(groups[name]))
		for _, idx := range groups[name] {
			if len(coords[idx]) < 2 {
				continue
			}
			pts = append(pts, plotter.XY{X: coords[idx][0], Y: coords[idx][1]})
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("visual: scatter %s: %w", name, err)
		}
		s.GlyphStyle.Color = plotutil.Color(gi)
		s.GlyphStyle.Radius = vg.Points(1.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
	}
	return p, nil
}

func clusterGroups(clusters []int) map[string][]int {
	groups := make(map[string][]int)
	for i, c := range clusters {
		key := fmt.Sprintf("cluster %02d", c)
		groups[key] = append(groups[key], i)
	}
	return groups
}

func labelGroups(labels []string) map[string][]int {
	groups := make(map[string][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}
	return groups
}

// save aligns the plot grid on one SVG canvas and writes it out.
func (pl *Plotter) save(plots [][]*plot.Plot, rows, cols int, w, h vg.Length, outputDir, name string) (string, error) {
	if outputDir == "" {
		outputDir = "results"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("visual: creating output directory: %w", err)
	}

	img := vgsvg.New(w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Points(6), PadY: vg.Points(6),
		PadTop: vg.Points(4), PadBottom: vg.Points(4),
		PadLeft: vg.Points(4), PadRight: vg.Points(4),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}

	path := filepath.Join(outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("visual: creating %s: %w", path, err)
	}
	defer f.Close()
	if _, err := img.WriteTo(f); err != nil {
		return "", fmt.Errorf("visual: writing %s: %w", path, err)
	}
	return path, nil
}
