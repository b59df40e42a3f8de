package semantic

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and splits it into terms of at least two word
// characters.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// TFIDF is a fitted term-frequency / inverse-document-frequency vectorizer.
type TFIDF struct {
	Vocabulary  map[string]int `json:"vocabulary"` // Term to column index
	IDF         []float64      `json:"idf"`        // Weight per column
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"` // "l2" or empty
}

// Dim returns the vector dimension.
func (t *TFIDF) Dim() int {
	return len(t.IDF)
}

// Validate checks that every vocabulary index has an IDF weight.
func (t *TFIDF) Validate() error {
	if len(t.Vocabulary) == 0 || len(t.IDF) == 0 {
		return fmt.Errorf("vectorizer: %w", ErrEmptyModel)
	}
	for term, idx := range t.Vocabulary {
		if idx < 0 || idx >= len(t.IDF) {
			return fmt.Errorf("vectorizer term %q index %d outside %d weights: %w",
				term, idx, len(t.IDF), ErrDimensionMismatch)
		}
	}
	if t.Norm != "" && t.Norm != NormL2 {
		return fmt.Errorf("vectorizer: unsupported norm %q", t.Norm)
	}
	return nil
}

// Vectorize maps text to a dense TF-IDF vector. Terms outside the
// vocabulary are ignored, so text with no known terms yields a zero vector.
func (t *TFIDF) Vectorize(text string) []float64 {
	vec := make([]float64, t.Dim())
	counts := make(map[int]float64)
	for _, tok := range Tokenize(text) {
		if idx, ok := t.Vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	for idx, tf := range counts {
		if t.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec[idx] = tf * t.IDF[idx]
	}
	if t.Norm == NormL2 {
		normalize(vec)
	}
	return vec
}

// normalize scales v to unit length in place. Zero vectors are unchanged.
func normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}
