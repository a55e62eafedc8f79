package clustering

import "math"

// DistanceFunc measures dissimilarity between two equal-length vectors.
type DistanceFunc func(a, b []float64) float64

// EuclideanDistance returns the L2 distance between two vectors.
func EuclideanDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// CosineDistance returns 1 - cosine similarity. Zero vectors are treated
// as maximally distant.
func CosineDistance(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1.0
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// DotProduct returns the inner product of two vectors, the counts-based
// similarity used by the spectral pipeline.
func DotProduct(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// DistanceMatrix computes the full pairwise distance matrix for a set of
// points.
func DistanceMatrix(points [][]float64, dist DistanceFunc) [][]float64 {
	n := len(points)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := dist(points[i], points[j])
			d[i][j] = v
			d[j][i] = v
		}
	}
	return d
}
