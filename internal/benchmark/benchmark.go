// Package benchmark orchestrates the full comparison: it derives the
// preprocessing variants, runs each clustering pipeline sequentially with
// wall-clock timing, and scores every assignment against ground truth.
package benchmark

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jpintar/countland/internal/clustering"
	"github.com/jpintar/countland/internal/core"
	"github.com/jpintar/countland/internal/logger"
	"github.com/jpintar/countland/internal/matrix"
	"github.com/jpintar/countland/internal/quality"
	"github.com/jpintar/countland/internal/sample"
)

// VariantNames lists the preprocessing variants in run order.
var VariantNames = []string{
	"full",
	"downsampled",
	"downsampled-half",
	"subset",
	"cell-downsampled",
	"downsampled-cells",
}

// Options configures a benchmark run.
type Options struct {
	Params   clustering.Params
	Seed     int64
	Variants []string      // Subset of VariantNames; empty means all
	Label    core.LabelFunc
}

// Run is one scored pipeline execution on one variant.
type Run struct {
	Variant  string               `json:"variant"`
	Pipeline string               `json:"pipeline"`
	Cells    int                  `json:"cells"`
	Score    core.ScoreRow        `json:"score"`
	Seconds  float64              `json:"seconds"`
	Result   *core.PipelineResult `json:"-"`
}

// Report is the complete outcome of a benchmark run.
type Report struct {
	ID        string           `json:"id"`
	StartedAt time.Time        `json:"started_at"`
	Source    string           `json:"source"`
	Genes     int              `json:"genes"`
	Cells     int              `json:"cells"`
	Seed      int64            `json:"seed"`
	Params    clustering.Params `json:"params"`
	Runs      []Run            `json:"runs"`
	Labels    []string         `json:"-"`
}

// ScoresTable assembles the ordered results table for rendering.
func (r *Report) ScoresTable() *core.ResultsTable {
	table := &core.ResultsTable{}
	for _, run := range r.Runs {
		table.Add(runName(run.Variant, run.Pipeline), quality.Rounded(run.Score))
	}
	return table
}

// Timings returns one timing row per run, in run order.
func (r *Report) Timings() []core.TimingRow {
	rows := make([]core.TimingRow, len(r.Runs))
	for i, run := range r.Runs {
		rows[i] = core.TimingRow{
			Name:     runName(run.Variant, run.Pipeline),
			Cells:    run.Cells,
			Duration: time.Duration(run.Seconds * float64(time.Second)),
		}
	}
	return rows
}

func runName(variant, pipeline string) string {
	if variant == "full" {
		return pipeline
	}
	return pipeline + " (" + variant + ")"
}

// Runner executes benchmarks.
type Runner struct {
	opts Options
	log  *slog.Logger
}

// NewRunner creates a Runner. A nil Label falls back to core.PrefixLabel.
func NewRunner(opts Options) *Runner {
	if opts.Label == nil {
		opts.Label = core.PrefixLabel
	}
	return &Runner{opts: opts, log: logger.Get()}
}

// Execute runs the whole benchmark on a loaded matrix. Pipelines run
// strictly sequentially; each draws from a sub-source of the master seed
// in run order, so a fixed seed reproduces every table. The first error
// anywhere aborts the run.
func (r *Runner) Execute(m *matrix.CountMatrix, source string) (*Report, error) {
	genes, cells := m.Dims()
	report := &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Source:    source,
		Genes:     genes,
		Cells:     cells,
		Seed:      r.opts.Seed,
		Params:    r.opts.Params,
	}

	for _, id := range m.Cells() {
		report.Labels = append(report.Labels, r.opts.Label(id))
	}

	variants, err := r.buildVariants(m)
	if err != nil {
		return nil, err
	}

	master := rand.New(rand.NewSource(r.opts.Seed))
	params := r.opts.Params

	countland := clustering.NewCountland(params)
	lognorm := clustering.NewLogNormGraph(params)
	vst := clustering.NewVSTGraph(params)
	naive := clustering.NewNaive(params)

	for _, name := range r.variantOrder() {
		vm, ok := variants[name]
		if !ok {
			continue
		}
		// The counts-based pipeline and the log-normalized graph pipeline
		// run on every variant so their timings can be compared across
		// preprocessing levels; the remaining pipelines only score the
		// full matrix.
		pipelines := []clustering.Pipeline{countland, lognorm}
		if name == "full" {
			pipelines = append(pipelines, vst, naive)
		}
		for _, p := range pipelines {
			run, err := r.runOne(p, vm, name, report.Labels, master)
			if err != nil {
				return nil, err
			}
			report.Runs = append(report.Runs, *run)
		}
	}

	return report, nil
}

func (r *Runner) runOne(p clustering.Pipeline, m *matrix.CountMatrix, variant string, labels []string, master *rand.Rand) (*Run, error) {
	rng := rand.New(rand.NewSource(master.Int63()))
	_, cells := m.Dims()

	r.log.Info("running pipeline", "pipeline", p.Name(), "variant", variant, "cells", cells)
	start := time.Now()
	result, err := p.Run(m, rng)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("benchmark: %s on %s: %w", p.Name(), variant, err)
	}

	score, err := quality.Score(labels, result.AssignmentInOrder())
	if err != nil {
		return nil, fmt.Errorf("benchmark: scoring %s on %s: %w", p.Name(), variant, err)
	}

	r.log.Info("pipeline scored",
		"pipeline", p.Name(), "variant", variant,
		"ari", quality.Round3(score.ARI), "nmi", quality.Round3(score.NMI),
		"homogeneity", quality.Round3(score.Homogeneity),
		"clusters", result.Clusters, "seconds", elapsed.Seconds())

	return &Run{
		Variant:  variant,
		Pipeline: p.Name(),
		Cells:    cells,
		Score:    score,
		Seconds:  elapsed.Seconds(),
		Result:   result,
	}, nil
}

// variantOrder returns the requested variants in canonical order.
func (r *Runner) variantOrder() []string {
	if len(r.opts.Variants) == 0 {
		return VariantNames
	}
	requested := make(map[string]struct{}, len(r.opts.Variants))
	for _, v := range r.opts.Variants {
		requested[v] = struct{}{}
	}
	var out []string
	for _, v := range VariantNames {
		if _, ok := requested[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// buildVariants derives the requested preprocessing variants. Derivation
// order is fixed so the seeded generator produces identical matrices for
// identical requests.
func (r *Runner) buildVariants(m *matrix.CountMatrix) (map[string]*matrix.CountMatrix, error) {
	wanted := make(map[string]struct{})
	for _, v := range r.variantOrder() {
		wanted[v] = struct{}{}
	}
	for v := range wanted {
		valid := false
		for _, known := range VariantNames {
			if v == known {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("benchmark: unknown variant %q", v)
		}
	}

	gen := sample.NewGenerator(r.opts.Seed)
	variants := map[string]*matrix.CountMatrix{}
	median := sample.MedianGeneTotal(m)

	if _, ok := wanted["full"]; ok {
		variants["full"] = m
	}

	// The combined variant reuses the gene-downsampled matrix, so derive
	// it whenever either is requested.
	_, needDown := wanted["downsampled"]
	_, needCombined := wanted["downsampled-cells"]
	var downsampled *matrix.CountMatrix
	var err error
	if needDown || needCombined {
		downsampled, err = gen.GeneDownsample(m, median)
		if err != nil {
			return nil, fmt.Errorf("benchmark: variant downsampled: %w", err)
		}
	}
	if needDown {
		variants["downsampled"] = downsampled
	}
	if _, ok := wanted["downsampled-half"]; ok {
		half, err := gen.GeneDownsample(m, median/2)
		if err != nil {
			return nil, fmt.Errorf("benchmark: variant downsampled-half: %w", err)
		}
		variants["downsampled-half"] = half
	}
	if _, ok := wanted["subset"]; ok {
		sub, err := gen.GeneSubset(m, sample.BelowPercentile(m.GeneTotals(), 0.95))
		if err != nil {
			return nil, fmt.Errorf("benchmark: variant subset: %w", err)
		}
		variants["subset"] = sub
	}
	if _, ok := wanted["cell-downsampled"]; ok {
		cd, err := gen.CellDownsampleMin(m)
		if err != nil {
			return nil, fmt.Errorf("benchmark: variant cell-downsampled: %w", err)
		}
		variants["cell-downsampled"] = cd
	}
	if needCombined {
		dc, err := gen.CellDownsampleMin(downsampled)
		if err != nil {
			return nil, fmt.Errorf("benchmark: variant downsampled-cells: %w", err)
		}
		variants["downsampled-cells"] = dc
	}

	r.log.Info("variants derived", "count", len(variants), "median_gene_total", median)
	return variants, nil
}
