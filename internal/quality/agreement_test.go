package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpintar/countland/internal/core"
)

func TestScorePerfectAgreement(t *testing.T) {
	truth := []string{"a", "a", "b", "b", "c", "c"}
	predicted := []int{5, 5, 0, 0, 2, 2}

	s, err := Score(truth, predicted)
	require.NoError(t, err)

	assert.Equal(t, 1.0, s.ARI, "relabeled identical partition scores 1")
	assert.Equal(t, 1.0, s.NMI)
	assert.Equal(t, 1.0, s.Homogeneity)
}

func TestScoreAntiCorrelated(t *testing.T) {
	// Every predicted cluster splits both classes evenly: worse than chance.
	truth := []string{"a", "a", "b", "b"}
	predicted := []int{1, 2, 1, 2}

	s, err := Score(truth, predicted)
	require.NoError(t, err)

	assert.InDelta(t, -0.5, s.ARI, 1e-12)
	assert.InDelta(t, 0.0, s.NMI, 1e-12)
	assert.InDelta(t, 0.0, s.Homogeneity, 1e-12)
}

func TestScoreLabelPermutationInvariance(t *testing.T) {
	truth := []string{"a", "a", "a", "b", "b", "c"}
	predicted := []int{0, 0, 1, 1, 2, 2}
	relabeled := []int{7, 7, 3, 3, 9, 9}

	s1, err := Score(truth, predicted)
	require.NoError(t, err)
	s2, err := Score(truth, relabeled)
	require.NoError(t, err)

	assert.Equal(t, s1, s2, "metrics depend only on the partition, not cluster ids")
}

func TestScoreSingleCluster(t *testing.T) {
	truth := []string{"a", "a", "b", "b"}
	predicted := []int{0, 0, 0, 0}

	s, err := Score(truth, predicted)
	require.NoError(t, err)

	// One cluster containing everything carries no information.
	assert.InDelta(t, 0.0, s.ARI, 1e-12)
	assert.Equal(t, 0.0, s.NMI)
	assert.Equal(t, 0.0, s.Homogeneity)
}

func TestScoreSingleClass(t *testing.T) {
	truth := []string{"a", "a", "a", "a"}

	t.Run("one cluster", func(t *testing.T) {
		s, err := Score(truth, []int{0, 0, 0, 0})
		require.NoError(t, err)
		assert.Equal(t, 1.0, s.ARI)
		assert.Equal(t, 1.0, s.NMI)
		assert.Equal(t, 1.0, s.Homogeneity)
	})
	t.Run("split cluster", func(t *testing.T) {
		s, err := Score(truth, []int{0, 0, 1, 1})
		require.NoError(t, err)
		// Splitting a single class is still perfectly homogeneous.
		assert.Equal(t, 1.0, s.Homogeneity)
	})
}

func TestScoreLengthMismatch(t *testing.T) {
	_, err := Score([]string{"a", "b"}, []int{0})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestScoreBounds(t *testing.T) {
	truth := []string{"a", "b", "a", "c", "b", "a", "c", "b"}
	predicted := []int{0, 0, 1, 1, 2, 2, 0, 1}

	s, err := Score(truth, predicted)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, s.NMI, 0.0)
	assert.LessOrEqual(t, s.NMI, 1.0)
	assert.GreaterOrEqual(t, s.Homogeneity, 0.0)
	assert.LessOrEqual(t, s.Homogeneity, 1.0)
	assert.LessOrEqual(t, s.ARI, 1.0)
}

func TestContingencyShape(t *testing.T) {
	truth := []string{"a", "b", "a", "c"}
	predicted := []int{0, 1, 0, 1}

	c, err := NewContingency(truth, predicted)
	require.NoError(t, err)

	assert.Equal(t, 3, c.Classes)
	assert.Equal(t, 2, c.Clusters)
	assert.Equal(t, 4.0, c.N)
	assert.Equal(t, 2.0, c.Counts[0][0], "both a cells land in cluster 0")

	var rowSum, colSum float64
	for _, v := range c.RowSums {
		rowSum += v
	}
	for _, v := range c.ColSums {
		colSum += v
	}
	assert.Equal(t, c.N, rowSum)
	assert.Equal(t, c.N, colSum)
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 0.123, Round3(0.12349))
	assert.Equal(t, 0.124, Round3(0.1235))
	assert.Equal(t, -0.5, Round3(-0.5001))

	r := Rounded(core.ScoreRow{ARI: 0.45678, NMI: 0.6789, Homogeneity: 0.91251})
	assert.Equal(t, 0.457, r.ARI)
	assert.Equal(t, 0.679, r.NMI)
	assert.Equal(t, 0.913, r.Homogeneity)
}
