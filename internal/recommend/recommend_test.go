package recommend

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/jrec/internal/semantic"
)

// termVectorizer counts occurrences of a fixed list of terms.
type termVectorizer []string

func (v termVectorizer) Vectorize(text string) []float64 {
	vec := make([]float64, len(v))
	for _, w := range strings.Fields(text) {
		for i, term := range v {
			if w == term {
				vec[i]++
			}
		}
	}
	return vec
}

// fixedClusterer assigns every vector to the same cluster.
type fixedClusterer struct {
	cluster int
	err     error
}

func (c fixedClusterer) PredictCluster([]float64) (int, error) {
	return c.cluster, c.err
}

var testQuery = Query{
	Title:    "Forest carbon",
	Abstract: "Carbon storage in boreal forests",
	Keywords: "forest, carbon",
}

func TestQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{"complete", testQuery, false},
		{"missing title", Query{Abstract: "a", Keywords: "k"}, true},
		{"blank abstract", Query{Title: "t", Abstract: "   ", Keywords: "k"}, true},
		{"missing keywords", Query{Title: "t", Abstract: "a"}, true},
		{"empty", Query{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr && !errors.Is(err, ErrIncompleteQuery) {
				t.Errorf("Validate() error = %v, want ErrIncompleteQuery", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}

func TestQuery_Text(t *testing.T) {
	q := Query{Title: " A ", Abstract: "B", Keywords: "C"}
	if got := q.Text(); got != "A B C" {
		t.Errorf("Text() = %q, want %q", got, "A B C")
	}
}

func TestRecommend_BySJR(t *testing.T) {
	rows := []Row{
		{JournalName: "X", SJR: 1.2, Cluster: 3},
		{JournalName: "Y", SJR: 3.4, Cluster: 3},
		{JournalName: "Z", SJR: 2.1, Cluster: 3},
		{JournalName: "Y", SJR: 0.9, Cluster: 3},
		{JournalName: "W", SJR: 9.9, Cluster: 1},
	}
	r := New(termVectorizer{"forest"}, fixedClusterer{cluster: 3}, rows)

	result, err := r.Recommend(testQuery)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if result.Cluster != 3 || result.Candidates != 4 {
		t.Errorf("Cluster = %d, Candidates = %d, want 3 and 4", result.Cluster, result.Candidates)
	}

	want := []string{"Y", "Z", "X"}
	if len(result.BySJR) != len(want) {
		t.Fatalf("BySJR = %+v, want %v", result.BySJR, want)
	}
	for i, name := range want {
		got := result.BySJR[i]
		if got.Journal != name || got.Rank != i+1 {
			t.Errorf("BySJR[%d] = %+v, want %s at rank %d", i, got, name, i+1)
		}
	}
	if result.BySJR[0].SJR != 3.4 {
		t.Errorf("Y kept SJR %v, want its best score 3.4", result.BySJR[0].SJR)
	}
}

func TestRecommend_TopK(t *testing.T) {
	var rows []Row
	for i := 0; i < 15; i++ {
		rows = append(rows, Row{JournalName: string(rune('A' + i)), SJR: float64(i), Cluster: 0, Title: "forest"})
	}
	r := New(termVectorizer{"forest"}, fixedClusterer{}, rows)

	result, err := r.Recommend(testQuery)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(result.BySJR) != DefaultTopK || len(result.BySimilarity) != DefaultTopK {
		t.Errorf("got %d / %d entries, want %d each", len(result.BySJR), len(result.BySimilarity), DefaultTopK)
	}
	if result.BySJR[0].Journal != "O" {
		t.Errorf("BySJR[0] = %q, want O", result.BySJR[0].Journal)
	}

	small := New(termVectorizer{"forest"}, fixedClusterer{}, rows, WithTopK(3))
	result, err = small.Recommend(testQuery)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(result.BySJR) != 3 || len(result.BySimilarity) != 3 {
		t.Errorf("WithTopK(3) gave %d / %d entries", len(result.BySJR), len(result.BySimilarity))
	}
}

func TestRecommend_BySimilarity(t *testing.T) {
	rows := []Row{
		{JournalName: "Neural Computation", SJR: 2.0, Cluster: 0, Title: "Neural networks", Abstract: "neural training"},
		{JournalName: "Ecology Letters", SJR: 4.2, Cluster: 0, Title: "Forest carbon", Abstract: "carbon in forests"},
		{JournalName: "Mixed Journal", SJR: 1.0, Cluster: 0, Title: "Forest neural", Abstract: "neural forests"},
		{JournalName: "Other Cluster", SJR: 5.0, Cluster: 1, Title: "Forest carbon"},
	}
	v := termVectorizer{"forest", "carbon", "neural"}
	r := New(v, fixedClusterer{cluster: 0}, rows)

	result, err := r.Recommend(testQuery)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	want := []string{"Ecology Letters", "Mixed Journal", "Neural Computation"}
	if len(result.BySimilarity) != len(want) {
		t.Fatalf("BySimilarity = %+v, want %v", result.BySimilarity, want)
	}
	for i, name := range want {
		if got := result.BySimilarity[i].Journal; got != name {
			t.Errorf("BySimilarity[%d] = %q, want %q", i, got, name)
		}
	}

	top := result.BySimilarity[0]
	if math.Abs(top.Similarity-100) > 1e-9 {
		t.Errorf("identical direction similarity = %v, want 100", top.Similarity)
	}
	if last := result.BySimilarity[2]; math.Abs(last.Similarity) > 1e-9 {
		t.Errorf("orthogonal similarity = %v, want 0", last.Similarity)
	}
	if top.Title != "Forest carbon" || top.SJR != 4.2 {
		t.Errorf("top entry = %+v", top)
	}
}

func TestRecommend_Errors(t *testing.T) {
	rows := []Row{{JournalName: "X", SJR: 1, Cluster: 0}}

	t.Run("incomplete query", func(t *testing.T) {
		r := New(termVectorizer{"forest"}, fixedClusterer{}, rows)
		_, err := r.Recommend(Query{Title: "only a title"})
		if !errors.Is(err, ErrIncompleteQuery) {
			t.Errorf("Recommend() error = %v, want ErrIncompleteQuery", err)
		}
	})

	t.Run("empty cluster", func(t *testing.T) {
		r := New(termVectorizer{"forest"}, fixedClusterer{cluster: 7}, rows)
		_, err := r.Recommend(testQuery)
		if !errors.Is(err, ErrEmptyCluster) {
			t.Errorf("Recommend() error = %v, want ErrEmptyCluster", err)
		}
	})

	t.Run("clusterer failure", func(t *testing.T) {
		r := New(termVectorizer{"forest"}, fixedClusterer{err: semantic.ErrDimensionMismatch}, rows)
		_, err := r.Recommend(testQuery)
		if !errors.Is(err, semantic.ErrDimensionMismatch) {
			t.Errorf("Recommend() error = %v, want ErrDimensionMismatch", err)
		}
	})
}

func TestLoadDataset(t *testing.T) {
	rows, stats, err := LoadDataset(filepath.Join("testdata", "dataset.csv"))
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}

	if stats.Rows != 4 || stats.DroppedSJR != 2 || stats.BadCluster != 1 {
		t.Errorf("stats = %+v, want 4 rows, 2 dropped SJR, 1 bad cluster", stats)
	}
	if len(rows) != 4 {
		t.Fatalf("LoadDataset() = %d rows, want 4", len(rows))
	}

	first := rows[0]
	if first.JournalName != "Ecology Letters" || first.SJR != 4.2 || first.Cluster != 0 {
		t.Errorf("first row = %+v", first)
	}
	if first.Text() != "Forest carbon Carbon storage in forests forest; carbon" {
		t.Errorf("Text() = %q", first.Text())
	}
	if rows[3].JournalName != "Forest Ecology" || rows[3].Cluster != 0 {
		t.Errorf("float cluster row = %+v", rows[3])
	}
}

func TestLoadDataset_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadDataset(filepath.Join(t.TempDir(), "nope.csv"))
		if !errors.Is(err, ErrDatasetNotFound) {
			t.Errorf("LoadDataset() error = %v, want ErrDatasetNotFound", err)
		}
	})

	t.Run("missing column", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "d.csv")
		os.WriteFile(path, []byte("journal_name,sjr_score,cluster,title,abstract\nX,1,0,t,a\n"), 0644)
		_, _, err := LoadDataset(path)
		if err == nil || !strings.Contains(err.Error(), "author_keywords") {
			t.Errorf("LoadDataset() error = %v, want missing author_keywords", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "d.csv")
		os.WriteFile(path, nil, 0644)
		if _, _, err := LoadDataset(path); err == nil {
			t.Error("LoadDataset() on empty file should fail")
		}
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	modelDir := filepath.Join(dir, "models")
	model := &semantic.Model{
		Vectorizer: &semantic.TFIDF{
			Vocabulary: map[string]int{"forest": 0, "carbon": 1, "neural": 2},
			IDF:        []float64{1, 1, 1},
			Norm:       semantic.NormL2,
		},
		Clusterer: &semantic.KMeans{Centroids: [][]float64{{0.7, 0.7, 0}, {0, 0, 1}}},
	}
	if err := model.Save(modelDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Run("missing model", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "none"), filepath.Join("testdata", "dataset.csv"))
		if !errors.Is(err, ErrModelNotFound) {
			t.Errorf("Load() error = %v, want ErrModelNotFound", err)
		}
	})

	t.Run("missing dataset", func(t *testing.T) {
		_, err := Load(modelDir, filepath.Join(dir, "none.csv"))
		if !errors.Is(err, ErrDatasetNotFound) {
			t.Errorf("Load() error = %v, want ErrDatasetNotFound", err)
		}
	})

	t.Run("end to end", func(t *testing.T) {
		r, err := Load(modelDir, filepath.Join("testdata", "dataset.csv"), WithTopK(2))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		result, err := r.Recommend(testQuery)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if result.Cluster != 0 {
			t.Errorf("Cluster = %d, want 0", result.Cluster)
		}
		if len(result.BySJR) != 2 || result.BySJR[0].Journal != "Ecology Letters" || result.BySJR[1].Journal != "Soil Biology" {
			t.Errorf("BySJR = %+v", result.BySJR)
		}
		if len(result.BySimilarity) != 2 || result.BySimilarity[0].Journal != "Ecology Letters" {
			t.Errorf("BySimilarity = %+v", result.BySimilarity)
		}
	})
}
