package semantic

import (
	"math"
	"sort"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
// Mismatched, empty, or zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}

	return dot / denominator
}

// CosineDistance is 1 - CosineSimilarity.
func CosineDistance(a, b []float64) float64 {
	return 1 - CosineSimilarity(a, b)
}

// Nearest ranks candidates by ascending cosine distance to query and keeps
// the first k. Equal distances keep candidate order.
func Nearest(query []float64, candidates [][]float64, k int) []Neighbor {
	results := make([]Neighbor, len(candidates))
	for i, c := range candidates {
		results[i] = Neighbor{Index: i, Distance: CosineDistance(query, c)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}
