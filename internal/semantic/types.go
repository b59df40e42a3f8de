// Package semantic holds the text models behind journal recommendation: a
// TF-IDF vectorizer, a k-means clusterer, and cosine similarity over their
// vectors.
package semantic

import "errors"

// Errors returned by model operations.
var (
	ErrArtifactNotFound  = errors.New("model artifact not found")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrEmptyModel        = errors.New("model has no parameters")
)

const (
	// VectorizerFileName is the TF-IDF artifact inside a model directory.
	VectorizerFileName = "vectorizer.json"

	// ClustererFileName is the k-means artifact inside a model directory.
	ClustererFileName = "kmeans.json"

	// NormL2 scales vectors to unit Euclidean length.
	NormL2 = "l2"
)

// Neighbor is one ranked candidate from a nearest-neighbor query.
type Neighbor struct {
	Index    int     `json:"index"`    // Position in the candidate list
	Distance float64 `json:"distance"` // Cosine distance to the query
}
