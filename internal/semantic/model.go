package semantic

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Model pairs a vectorizer with the clusterer fitted on its vectors.
type Model struct {
	Vectorizer *TFIDF
	Clusterer  *KMeans
}

// Validate checks both artifacts and that they agree on dimension.
func (m *Model) Validate() error {
	if err := m.Vectorizer.Validate(); err != nil {
		return err
	}
	if err := m.Clusterer.Validate(); err != nil {
		return err
	}
	if m.Vectorizer.Dim() != m.Clusterer.Dim() {
		return fmt.Errorf("vectorizer has %d dimensions, clusterer %d: %w",
			m.Vectorizer.Dim(), m.Clusterer.Dim(), ErrDimensionMismatch)
	}
	return nil
}

// Predict vectorizes text and returns its vector and cluster.
func (m *Model) Predict(text string) ([]float64, int, error) {
	vec := m.Vectorizer.Vectorize(text)
	cluster, err := m.Clusterer.PredictCluster(vec)
	if err != nil {
		return nil, 0, err
	}
	return vec, cluster, nil
}

// LoadModel reads both artifacts from dir. A missing artifact yields
// ErrArtifactNotFound.
func LoadModel(dir string) (*Model, error) {
	var m Model
	if err := loadJSON(filepath.Join(dir, VectorizerFileName), &m.Vectorizer); err != nil {
		return nil, err
	}
	if err := loadJSON(filepath.Join(dir, ClustererFileName), &m.Clusterer); err != nil {
		return nil, err
	}
	if m.Vectorizer == nil || m.Clusterer == nil {
		return nil, fmt.Errorf("loading model from %s: %w", dir, ErrEmptyModel)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("loading model from %s: %w", dir, err)
	}
	return &m, nil
}

// Save writes both artifacts into dir.
func (m *Model) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating model directory: %w", err)
	}
	if err := saveJSON(filepath.Join(dir, VectorizerFileName), m.Vectorizer); err != nil {
		return err
	}
	return saveJSON(filepath.Join(dir, ClustererFileName), m.Clusterer)
}

// Exists reports whether both artifacts are present in dir.
func Exists(dir string) bool {
	for _, name := range []string{VectorizerFileName, ClustererFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// saveJSON writes to a temp file first, then renames for atomicity.
func saveJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
