package handlers

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jpintar/countland/internal/core"
	"github.com/jpintar/countland/internal/matrix"
	"github.com/jpintar/countland/internal/sample"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [matrix-dir]",
		Short: "Summarize a count matrix without running the benchmark",
		Long: `Load a matrix triplet and print its shape, the library-size
distribution across cells, and the census of ground-truth labels derived
from the cell barcodes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

func runInspect(dir string) error {
	console.Info().Str("dir", dir).Msg("Loading count matrix")
	m, err := matrix.Load(dir)
	if err != nil {
		return err
	}

	genes, cells := m.Dims()
	fmt.Printf("Matrix: %s\n", dir)
	fmt.Printf("  genes: %d\n", genes)
	fmt.Printf("  cells: %d\n", cells)

	totals := m.CellTotals()
	var grand float64
	for _, t := range totals {
		grand += t
	}
	fmt.Printf("  total counts: %.0f\n\n", grand)

	fmt.Println("Library size (counts per cell):")
	for _, q := range []struct {
		name string
		p    float64
	}{
		{"min", 0}, {"25%", 0.25}, {"median", 0.5}, {"75%", 0.75}, {"max", 1},
	} {
		fmt.Printf("  %-6s %10.0f\n", q.name, sample.Quantile(totals, q.p))
	}
	fmt.Printf("  %-6s %10.1f\n\n", "mean", grand/float64(cells))

	fmt.Println("Label census:")
	census := map[string]int{}
	for _, barcode := range m.Cells() {
		census[core.PrefixLabel(barcode)]++
	}
	labels := make([]string, 0, len(census))
	for l := range census {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Printf("  %-24s %6d\n", l, census[l])
	}
	fmt.Printf("  %d labels across %d cells\n", len(labels), cells)

	return nil
}
