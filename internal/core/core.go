// Package core defines the shared domain types passed between the
// benchmark stages: cluster assignments, agreement scores and timing rows.
package core

import (
	"strings"
	"time"
)

// LabelFunc derives a ground-truth label from a cell identifier.
// Label derivation is injected rather than assumed, since barcode
// conventions differ between datasets.
type LabelFunc func(cellID string) string

// PrefixLabel is the default LabelFunc for benchmark datasets that encode
// the cell type as a prefix before the first underscore
// (e.g. "naive.cytotoxic_ACGT" -> "naive.cytotoxic"). Identifiers without
// an underscore map to themselves.
func PrefixLabel(cellID string) string {
	if i := strings.IndexByte(cellID, '_'); i >= 0 {
		return cellID[:i]
	}
	return cellID
}

// PipelineResult holds the output of one clustering pipeline run.
// It is produced once and read-only thereafter.
type PipelineResult struct {
	Pipeline   string         `json:"pipeline"`             // Pipeline name (e.g. "countland", "graph")
	Assignment map[string]int `json:"assignment"`           // Cell identifier -> cluster id
	Order      []string       `json:"order"`                // Cell identifiers in matrix column order
	Embedding  [][]float64    `json:"embedding,omitempty"`  // Per-cell embedding coordinates, aligned with Order
	Modularity float64        `json:"modularity,omitempty"` // Louvain modularity Q, graph pipelines only
	Clusters   int            `json:"clusters"`             // Number of distinct clusters produced
}

// AssignmentInOrder returns cluster ids aligned with Order.
func (r *PipelineResult) AssignmentInOrder() []int {
	out := make([]int, len(r.Order))
	for i, id := range r.Order {
		out[i] = r.Assignment[id]
	}
	return out
}

// ScoreRow is one set of clustering-agreement metrics against ground truth.
type ScoreRow struct {
	ARI         float64 `json:"ari"`         // Adjusted Rand index, ~[-1, 1]
	NMI         float64 `json:"nmi"`         // Normalized mutual information, [0, 1]
	Homogeneity float64 `json:"homogeneity"` // Homogeneity, [0, 1]
}

// ResultEntry pairs a pipeline/variant name with its score.
type ResultEntry struct {
	Name  string   `json:"name"`
	Score ScoreRow `json:"score"`
}

// ResultsTable is an ordered sequence of scored runs. Insertion order is
// run order and is preserved through rendering.
type ResultsTable struct {
	Entries []ResultEntry `json:"entries"`
}

// Add appends a scored run to the table.
func (t *ResultsTable) Add(name string, score ScoreRow) {
	t.Entries = append(t.Entries, ResultEntry{Name: name, Score: score})
}

// TimingRow records the wall-clock duration of one pipeline run.
// Advisory only; never used in correctness checks.
type TimingRow struct {
	Name     string        `json:"name"`
	Cells    int           `json:"cells"`
	Duration time.Duration `json:"duration"`
}

// Seconds returns the duration in seconds for reporting.
func (r TimingRow) Seconds() float64 {
	return r.Duration.Seconds()
}
