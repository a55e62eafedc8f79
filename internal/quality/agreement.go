// Package quality scores cluster assignments against ground-truth labels
// using chance-corrected and information-theoretic agreement metrics.
package quality

import (
	"errors"
	"fmt"
	"math"

	"github.com/jpintar/countland/internal/core"
)

// ErrLengthMismatch is returned when the ground-truth and predicted
// sequences are not aligned.
var ErrLengthMismatch = errors.New("quality: label and prediction lengths differ")

// Contingency is the class-by-cluster co-occurrence table underlying all
// three agreement metrics.
type Contingency struct {
	Counts   [][]float64 // classes x clusters
	RowSums  []float64   // per ground-truth class
	ColSums  []float64   // per predicted cluster
	N        float64
	Classes  int
	Clusters int
}

// NewContingency tabulates ground-truth labels against predicted cluster
// ids. Both sequences must be aligned by cell identity.
func NewContingency(truth []string, predicted []int) (*Contingency, error) {
	if len(truth) != len(predicted) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(truth), len(predicted))
	}
	classIdx := make(map[string]int)
	clusterIdx := make(map[int]int)
	for _, l := range truth {
		if _, ok := classIdx[l]; !ok {
			classIdx[l] = len(classIdx)
		}
	}
	for _, c := range predicted {
		if _, ok := clusterIdx[c]; !ok {
			clusterIdx[c] = len(clusterIdx)
		}
	}

	t := &Contingency{
		Classes:  len(classIdx),
		Clusters: len(clusterIdx),
		N:        float64(len(truth)),
	}
	t.Counts = make([][]float64, t.Classes)
	for i := range t.Counts {
		t.Counts[i] = make([]float64, t.Clusters)
	}
	t.RowSums = make([]float64, t.Classes)
	t.ColSums = make([]float64, t.Clusters)

	for i := range truth {
		r := classIdx[truth[i]]
		c := clusterIdx[predicted[i]]
		t.Counts[r][c]++
		t.RowSums[r]++
		t.ColSums[c]++
	}
	return t, nil
}

// Score computes the adjusted Rand index, normalized mutual information
// and homogeneity of a predicted clustering against ground truth.
// Deterministic; no retries.
func Score(truth []string, predicted []int) (core.ScoreRow, error) {
	t, err := NewContingency(truth, predicted)
	if err != nil {
		return core.ScoreRow{}, err
	}
	return core.ScoreRow{
		ARI:         t.AdjustedRandIndex(),
		NMI:         t.NormalizedMutualInfo(),
		Homogeneity: t.Homogeneity(),
	}, nil
}

// Rounded returns the row with each metric rounded to 3 decimals for
// reporting.
func Rounded(s core.ScoreRow) core.ScoreRow {
	return core.ScoreRow{
		ARI:         Round3(s.ARI),
		NMI:         Round3(s.NMI),
		Homogeneity: Round3(s.Homogeneity),
	}
}

// Round3 rounds to 3 decimal places.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// AdjustedRandIndex is the pairwise agreement between the two partitions,
// corrected for chance. 1.0 for identical partitions (up to relabeling),
// ~0 for random assignment, negative for anti-correlated partitions.
func (t *Contingency) AdjustedRandIndex() float64 {
	var sumCells, sumRows, sumCols float64
	for i := range t.Counts {
		for j := range t.Counts[i] {
			sumCells += comb2(t.Counts[i][j])
		}
	}
	for _, a := range t.RowSums {
		sumRows += comb2(a)
	}
	for _, b := range t.ColSums {
		sumCols += comb2(b)
	}

	expected := sumRows * sumCols / comb2(t.N)
	max := (sumRows + sumCols) / 2
	if max == expected {
		// Both partitions are trivial (all-one-cluster or all-singletons).
		return 1.0
	}
	return (sumCells - expected) / (max - expected)
}

// NormalizedMutualInfo is the mutual information between the partitions
// normalized by the arithmetic mean of their entropies, in [0, 1].
func (t *Contingency) NormalizedMutualInfo() float64 {
	if t.Classes == 1 && t.Clusters == 1 {
		return 1.0
	}
	hTruth := entropy(t.RowSums, t.N)
	hPred := entropy(t.ColSums, t.N)
	norm := (hTruth + hPred) / 2
	if norm == 0 {
		return 0.0
	}

	mi := 0.0
	for i := range t.Counts {
		for j := range t.Counts[i] {
			nij := t.Counts[i][j]
			if nij == 0 {
				continue
			}
			mi += (nij / t.N) * math.Log(nij*t.N/(t.RowSums[i]*t.ColSums[j]))
		}
	}
	nmi := mi / norm
	// Guard against floating-point drift outside [0, 1].
	return math.Min(1, math.Max(0, nmi))
}

// Homogeneity measures whether each predicted cluster contains only
// members of a single ground-truth class: 1 - H(class|cluster)/H(class),
// in [0, 1].
func (t *Contingency) Homogeneity() float64 {
	hTruth := entropy(t.RowSums, t.N)
	if hTruth == 0 {
		return 1.0
	}
	hCond := 0.0
	for j := 0; j < t.Clusters; j++ {
		for i := 0; i < t.Classes; i++ {
			nij := t.Counts[i][j]
			if nij == 0 {
				continue
			}
			hCond -= (nij / t.N) * math.Log(nij/t.ColSums[j])
		}
	}
	return math.Min(1, math.Max(0, 1-hCond/hTruth))
}

func comb2(n float64) float64 {
	return n * (n - 1) / 2
}

func entropy(sums []float64, n float64) float64 {
	h := 0.0
	for _, s := range sums {
		if s == 0 {
			continue
		}
		p := s / n
		h -= p * math.Log(p)
	}
	return h
}
