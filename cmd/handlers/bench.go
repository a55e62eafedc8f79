package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpintar/countland/internal/benchmark"
	"github.com/jpintar/countland/internal/clustering"
	"github.com/jpintar/countland/internal/config"
	"github.com/jpintar/countland/internal/core"
	"github.com/jpintar/countland/internal/matrix"
	"github.com/jpintar/countland/internal/render"
	"github.com/jpintar/countland/internal/store"
	"github.com/jpintar/countland/internal/visual"
)

// NewBenchCmd creates the bench command, the main benchmark entrypoint.
func NewBenchCmd() *cobra.Command {
	var (
		seed       int64
		clusters   int
		components int
		neighbors  int
		resolution float64
		variants   []string
		outputDir  string
		save       bool
		plots      bool
	)

	benchCmd := &cobra.Command{
		Use:   "bench [matrix-dir]",
		Short: "Run the clustering benchmark on a count matrix directory",
		Long: `Run the full clustering benchmark.

Loads the matrix triplet (matrix.mtx, barcodes.tsv, features.tsv; .gz
accepted), derives the preprocessing variants, runs every pipeline
sequentially under a fixed seed, scores results against the barcode-
derived ground truth, and writes score/timing tables, a JSON results
object and SVG figure panels to the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			if !cmd.Flags().Changed("seed") {
				seed = cfg.Benchmark.Seed
			}
			if !cmd.Flags().Changed("clusters") {
				clusters = cfg.Benchmark.Clusters
			}
			if !cmd.Flags().Changed("components") {
				components = cfg.Benchmark.Components
			}
			if !cmd.Flags().Changed("neighbors") {
				neighbors = cfg.Benchmark.Neighbors
			}
			if !cmd.Flags().Changed("resolution") {
				resolution = cfg.Benchmark.Resolution
			}
			if !cmd.Flags().Changed("variants") {
				variants = cfg.Benchmark.Variants
			}
			if !cmd.Flags().Changed("output") {
				outputDir = cfg.Output.Directory
			}
			if !cmd.Flags().Changed("plots") {
				plots = cfg.Output.Plots
			}

			return runBench(cfg, args[0], benchmark.Options{
				Params: clustering.Params{
					Clusters:   clusters,
					Components: components,
					Neighbors:  neighbors,
					Resolution: resolution,
				},
				Seed:     seed,
				Variants: variants,
				Label:    core.PrefixLabel,
			}, outputDir, save, plots)
		},
	}

	benchCmd.Flags().Int64Var(&seed, "seed", 84095, "random seed for all stochastic steps")
	benchCmd.Flags().IntVar(&clusters, "clusters", 11, "target number of clusters")
	benchCmd.Flags().IntVar(&components, "components", 10, "embedding dimensionality")
	benchCmd.Flags().IntVar(&neighbors, "neighbors", 20, "k for kNN graph construction")
	benchCmd.Flags().Float64Var(&resolution, "resolution", 1.0, "Louvain resolution")
	benchCmd.Flags().StringSliceVar(&variants, "variants", nil, "preprocessing variants to run (default all)")
	benchCmd.Flags().StringVar(&outputDir, "output", "results", "output directory")
	benchCmd.Flags().BoolVar(&save, "save", true, "persist the run to the history store")
	benchCmd.Flags().BoolVar(&plots, "plots", true, "write SVG figure panels")

	return benchCmd
}

func runBench(cfg *config.Config, dir string, opts benchmark.Options, outputDir string, save, plots bool) error {
	console.Info().Str("dir", dir).Msg("Loading count matrix")
	m, err := matrix.Load(dir)
	if err != nil {
		return err
	}
	genes, cells := m.Dims()
	console.Info().Int("genes", genes).Int("cells", cells).Msg("Matrix loaded")

	runner := benchmark.NewRunner(opts)
	report, err := runner.Execute(m, dir)
	if err != nil {
		return err
	}

	scores := report.ScoresTable()
	fmt.Println(render.ScoreTable(scores))
	fmt.Println(render.TimingTable(report.Timings()))

	if _, err := render.WriteScoresTSV(scores, outputDir); err != nil {
		return err
	}
	if _, err := render.WriteTimingTSV(timingPairs(report), outputDir); err != nil {
		return err
	}
	if _, err := render.WriteResultsJSON(report, outputDir); err != nil {
		return err
	}
	console.Info().Str("dir", outputDir).Msg("Tables written")

	if plots {
		if err := writePanels(cfg, report, outputDir); err != nil {
			return err
		}
		console.Info().Str("dir", outputDir).Msg("Figure panels written")
	}

	if save && cfg.Store.Enabled {
		st, err := store.NewStore(cfg.Store.Directory)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveRun(report); err != nil {
			return err
		}
		console.Info().Str("run", report.ID).Msg("Run saved to history")
	}

	return nil
}

// timingPairs builds the countland-vs-graph timing comparison, one row
// per variant on which both reference pipelines ran.
func timingPairs(report *benchmark.Report) []render.TimingPair {
	type pair struct {
		render.TimingPair
		haveC, haveG bool
	}
	byVariant := map[string]*pair{}
	var order []string
	for _, run := range report.Runs {
		p, ok := byVariant[run.Variant]
		if !ok {
			p = &pair{TimingPair: render.TimingPair{Variant: run.Variant, Cells: run.Cells}}
			byVariant[run.Variant] = p
			order = append(order, run.Variant)
		}
		switch run.Pipeline {
		case "countland":
			p.Countland = run.Seconds
			p.haveC = true
		case "lognorm-louvain":
			p.Graph = run.Seconds
			p.haveG = true
		}
	}
	var out []render.TimingPair
	for _, v := range order {
		if p := byVariant[v]; p.haveC && p.haveG {
			out = append(out, p.TimingPair)
		}
	}
	return out
}

// writePanels draws the embedding grid for the full-matrix runs and the
// score bars for every run.
func writePanels(cfg *config.Config, report *benchmark.Report, outputDir string) error {
	pl := visual.New(cfg.Output.PlotW, cfg.Output.PlotH)

	var runs []visual.EmbeddingRun
	for _, run := range report.Runs {
		if run.Variant != "full" || run.Result == nil || run.Result.Embedding == nil {
			continue
		}
		runs = append(runs, visual.EmbeddingRun{
			Title:    run.Pipeline,
			Coords:   run.Result.Embedding,
			Clusters: run.Result.AssignmentInOrder(),
			Labels:   report.Labels,
		})
	}
	if len(runs) > 0 {
		if _, err := pl.EmbeddingPanel(runs, outputDir); err != nil {
			return err
		}
	}

	_, err := pl.ScorePanel(report.ScoresTable(), outputDir)
	return err
}
