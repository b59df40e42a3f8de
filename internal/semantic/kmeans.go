package semantic

import (
	"fmt"
	"math"
)

// KMeans is a fitted k-means clusterer.
type KMeans struct {
	Centroids [][]float64 `json:"centroids"`
}

// K returns the number of clusters.
func (k *KMeans) K() int {
	return len(k.Centroids)
}

// Dim returns the centroid dimension, or 0 for an empty model.
func (k *KMeans) Dim() int {
	if len(k.Centroids) == 0 {
		return 0
	}
	return len(k.Centroids[0])
}

// Validate checks that the model has centroids of a single dimension.
func (k *KMeans) Validate() error {
	if k.K() == 0 || k.Dim() == 0 {
		return fmt.Errorf("clusterer: %w", ErrEmptyModel)
	}
	for i, c := range k.Centroids {
		if len(c) != k.Dim() {
			return fmt.Errorf("centroid %d has %d dimensions, want %d: %w", i, len(c), k.Dim(), ErrDimensionMismatch)
		}
	}
	return nil
}

// PredictCluster returns the index of the centroid nearest to vec by
// squared Euclidean distance. Ties go to the lower index.
func (k *KMeans) PredictCluster(vec []float64) (int, error) {
	if k.K() == 0 {
		return 0, fmt.Errorf("clusterer: %w", ErrEmptyModel)
	}
	if len(vec) != k.Dim() {
		return 0, fmt.Errorf("vector has %d dimensions, clusterer expects %d: %w", len(vec), k.Dim(), ErrDimensionMismatch)
	}
	best, bestDist := 0, math.Inf(1)
	for i, c := range k.Centroids {
		if d := squaredDistance(vec, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
