// Package render formats benchmark results as text tables and persists
// them as TSV and JSON files. Any write failure is fatal and surfaced to
// the caller.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jpintar/countland/internal/core"
)

// ScoreTable renders the results table: rows are pipelines in run order,
// columns the three agreement metrics rounded to 3 decimals.
func ScoreTable(table *core.ResultsTable) string {
	var b strings.Builder
	width := len("pipeline")
	for _, e := range table.Entries {
		if len(e.Name) > width {
			width = len(e.Name)
		}
	}
	fmt.Fprintf(&b, "%-*s  %8s  %8s  %12s\n", width, "pipeline", "ARI", "NMI", "homogeneity")
	for _, e := range table.Entries {
		fmt.Fprintf(&b, "%-*s  %8.3f  %8.3f  %12.3f\n",
			width, e.Name, e.Score.ARI, e.Score.NMI, e.Score.Homogeneity)
	}
	return b.String()
}

// TimingTable renders wall-clock durations per run.
func TimingTable(rows []core.TimingRow) string {
	var b strings.Builder
	width := len("pipeline")
	for _, r := range rows {
		if len(r.Name) > width {
			width = len(r.Name)
		}
	}
	fmt.Fprintf(&b, "%-*s  %9s  %10s\n", width, "pipeline", "num.cells", "seconds")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-*s  %9d  %10.3f\n", width, r.Name, r.Cells, r.Seconds())
	}
	return b.String()
}

// WriteScoresTSV writes the results table as scores.tsv in outputDir.
func WriteScoresTSV(table *core.ResultsTable, outputDir string) (string, error) {
	var b strings.Builder
	b.WriteString("pipeline\tari\tnmi\thomogeneity\n")
	for _, e := range table.Entries {
		fmt.Fprintf(&b, "%s\t%.3f\t%.3f\t%.3f\n",
			e.Name, e.Score.ARI, e.Score.NMI, e.Score.Homogeneity)
	}
	return writeFile(outputDir, "scores.tsv", b.String())
}

// TimingPair is one timing comparison row: both reference pipelines run
// on the same variant.
type TimingPair struct {
	Variant   string
	Cells     int
	Countland float64 // seconds
	Graph     float64 // seconds
}

// WriteTimingTSV writes timing.tsv. Column names match the published
// vignette's timing file, where the graph pipeline column is labelled
// after the method it reproduces.
func WriteTimingTSV(pairs []TimingPair, outputDir string) (string, error) {
	var b strings.Builder
	b.WriteString("num.cells\tcountland\tSeurat\n")
	for _, p := range pairs {
		fmt.Fprintf(&b, "%d\t%.3f\t%.3f\n", p.Cells, p.Countland, p.Graph)
	}
	return writeFile(outputDir, "timing.tsv", b.String())
}

// WriteResultsJSON serializes the full report object as results.json.
func WriteResultsJSON(report any, outputDir string) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render: marshaling results: %w", err)
	}
	return writeFile(outputDir, "results.json", string(data)+"\n")
}

func writeFile(outputDir, name, content string) (string, error) {
	if outputDir == "" {
		outputDir = "results"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("render: creating output directory %s: %w", outputDir, err)
	}
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("render: writing %s: %w", path, err)
	}
	return path, nil
}
