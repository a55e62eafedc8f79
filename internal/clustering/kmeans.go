package clustering

import (
	"fmt"
	"math"
	"math/rand"
)

// KMeans runs Lloyd's algorithm with kmeans++ initialization on embedded
// points. The random source is injected so a fixed benchmark seed
// reproduces the partition exactly.
type KMeans struct {
	MaxIterations int
	Tolerance     float64
}

// NewKMeans returns a KMeans with the benchmark defaults.
func NewKMeans() *KMeans {
	return &KMeans{
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

// Partition clusters points into k groups. Returns the assignment (one
// cluster id per point) and the final centroids.
func (km *KMeans) Partition(points [][]float64, k int, rng *rand.Rand) ([]int, [][]float64, error) {
	if len(points) == 0 {
		return nil, nil, fmt.Errorf("kmeans: no points provided")
	}
	if k <= 0 || k > len(points) {
		return nil, nil, fmt.Errorf("kmeans: invalid k: %d (must be 1-%d)", k, len(points))
	}

	dim := len(points[0])
	centroids := km.initializeCentroids(points, k, dim, rng)

	var assignments []int
	converged := false

	for iteration := 0; iteration < km.MaxIterations && !converged; iteration++ {
		// Assignment step: assign each point to nearest centroid.
		newAssignments := make([]int, len(points))
		for i, p := range points {
			newAssignments[i] = nearestCentroid(p, centroids)
		}

		if iteration > 0 {
			converged = true
			for i := range assignments {
				if assignments[i] != newAssignments[i] {
					converged = false
					break
				}
			}
		}

		assignments = newAssignments

		if !converged {
			centroids = km.updateCentroids(points, assignments, k, dim, rng)
		}
	}

	return assignments, centroids, nil
}

// initializeCentroids uses kmeans++ seeding for better cluster quality.
func (km *KMeans) initializeCentroids(points [][]float64, k, dim int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, k)

	first := rng.Intn(len(points))
	centroids[0] = append([]float64(nil), points[first]...)

	for i := 1; i < k; i++ {
		distances := make([]float64, len(points))
		totalDistance := 0.0

		// Squared distance from each point to its nearest chosen centroid.
		for j, p := range points {
			minDist := math.Inf(1)
			for c := 0; c < i; c++ {
				d := EuclideanDistance(p, centroids[c])
				if d < minDist {
					minDist = d
				}
			}
			distances[j] = minDist * minDist
			totalDistance += distances[j]
		}

		if totalDistance == 0 {
			idx := rng.Intn(len(points))
			centroids[i] = append([]float64(nil), points[idx]...)
			continue
		}

		target := rng.Float64() * totalDistance
		cumulative := 0.0
		selected := 0
		for j, d := range distances {
			cumulative += d
			if cumulative >= target {
				selected = j
				break
			}
		}
		centroids[i] = append([]float64(nil), points[selected]...)
	}

	return centroids
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	minDistance := math.Inf(1)
	nearest := 0
	for i, c := range centroids {
		if d := EuclideanDistance(p, c); d < minDistance {
			minDistance = d
			nearest = i
		}
	}
	return nearest
}

// updateCentroids recalculates centroids from the current assignment.
// Empty clusters are reseeded from a random point so k is preserved.
func (km *KMeans) updateCentroids(points [][]float64, assignments []int, k, dim int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, k)
	counts := make([]int, k)
	for i := range centroids {
		centroids[i] = make([]float64, dim)
	}

	for i, p := range points {
		c := assignments[i]
		counts[c]++
		for j := range p {
			centroids[c][j] += p[j]
		}
	}

	for i := range centroids {
		if counts[i] == 0 {
			centroids[i] = append([]float64(nil), points[rng.Intn(len(points))]...)
			continue
		}
		for j := range centroids[i] {
			centroids[i][j] /= float64(counts[i])
		}
	}

	return centroids
}
