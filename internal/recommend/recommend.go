// Package recommend ranks journals for a manuscript. The manuscript text is
// assigned to a cluster of the reference dataset, and the journals of that
// cluster are ranked twice: by SJR score and by textual similarity.
package recommend

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/jrec/internal/logger"
	"github.com/matsen/jrec/internal/semantic"
	"github.com/matsen/jrec/internal/textnorm"
)

// Errors returned by the recommender.
var (
	ErrIncompleteQuery = errors.New("title, abstract and keywords are all required")
	ErrModelNotFound   = errors.New("model artifacts not found")
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrEmptyCluster    = errors.New("no journals in the predicted cluster")
)

// DefaultTopK is the length of each ranking.
const DefaultTopK = 10

// Vectorizer maps normalized text to a fixed-dimension vector.
type Vectorizer interface {
	Vectorize(text string) []float64
}

// Clusterer maps a vector to a cluster label.
type Clusterer interface {
	PredictCluster(vec []float64) (int, error)
}

// Query is the manuscript being placed.
type Query struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Keywords string `json:"keywords"`
}

// Validate reports ErrIncompleteQuery when any part is blank.
func (q Query) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", q.Title},
		{"abstract", q.Abstract},
		{"keywords", q.Keywords},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (missing %s)", ErrIncompleteQuery, strings.Join(missing, ", "))
	}
	return nil
}

// Text joins title, abstract and keywords with single spaces.
func (q Query) Text() string {
	return joinText(q.Title, q.Abstract, q.Keywords)
}

// RankedJournal is one entry of the SJR ranking.
type RankedJournal struct {
	Rank    int     `json:"rank"`
	Journal string  `json:"journal"`
	SJR     float64 `json:"sjr"`
}

// SimilarJournal is one entry of the similarity ranking. The same journal
// may appear more than once when several of its articles are close.
type SimilarJournal struct {
	Rank       int     `json:"rank"`
	Journal    string  `json:"journal"`
	SJR        float64 `json:"sjr"`
	Similarity float64 `json:"similarity"` // (1 - cosine distance) * 100
	Title      string  `json:"title,omitempty"`
}

// Result holds both rankings for one query.
type Result struct {
	Cluster      int              `json:"cluster"`
	Candidates   int              `json:"candidates"` // Dataset rows in the cluster
	BySJR        []RankedJournal  `json:"by_sjr"`
	BySimilarity []SimilarJournal `json:"by_similarity"`
}

// Recommender ranks journals of a clustered dataset.
type Recommender struct {
	vectorizer Vectorizer
	clusterer  Clusterer
	rows       []Row
	topK       int
	normalize  func(string) string
	log        logger.Logger
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithTopK sets the length of each ranking.
func WithTopK(k int) Option {
	return func(r *Recommender) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithNormalizer replaces the text normalization applied to the query and
// to every candidate row.
func WithNormalizer(fn func(string) string) Option {
	return func(r *Recommender) {
		r.normalize = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Recommender) {
		r.log = l
	}
}

// New creates a recommender over rows.
func New(v Vectorizer, c Clusterer, rows []Row, opts ...Option) *Recommender {
	r := &Recommender{
		vectorizer: v,
		clusterer:  c,
		rows:       rows,
		topK:       DefaultTopK,
		normalize:  textnorm.Normalize,
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load reads the model artifacts from modelDir and the dataset from
// datasetPath.
func Load(modelDir, datasetPath string, opts ...Option) (*Recommender, error) {
	model, err := semantic.LoadModel(modelDir)
	if err != nil {
		if errors.Is(err, semantic.ErrArtifactNotFound) {
			return nil, fmt.Errorf("%w in %s: %v", ErrModelNotFound, modelDir, err)
		}
		return nil, fmt.Errorf("loading model: %w", err)
	}

	rows, stats, err := LoadDataset(datasetPath)
	if err != nil {
		return nil, err
	}

	r := New(model.Vectorizer, model.Clusterer, rows, opts...)
	r.log.Debug("recommender loaded",
		logger.String("model_dir", modelDir),
		logger.Int("vocabulary", model.Vectorizer.Dim()),
		logger.Int("clusters", model.Clusterer.K()),
		logger.Int("rows", stats.Rows),
		logger.Int("dropped_sjr", stats.DroppedSJR),
		logger.Int("bad_cluster", stats.BadCluster),
	)
	return r, nil
}

// Recommend places q in a cluster and ranks that cluster's journals.
func (r *Recommender) Recommend(q Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	vec := r.vectorizer.Vectorize(r.normalize(q.Text()))
	cluster, err := r.clusterer.PredictCluster(vec)
	if err != nil {
		return nil, fmt.Errorf("predicting cluster: %w", err)
	}

	var members []Row
	for _, row := range r.rows {
		if row.Cluster == cluster {
			members = append(members, row)
		}
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w (cluster %d)", ErrEmptyCluster, cluster)
	}

	result := &Result{
		Cluster:      cluster,
		Candidates:   len(members),
		BySJR:        rankBySJR(members, r.topK),
		BySimilarity: r.rankBySimilarity(vec, members),
	}
	r.log.Info("recommendation computed",
		logger.Int("cluster", cluster),
		logger.Int("candidates", len(members)),
	)
	return result, nil
}

// rankBySJR keeps the best-scored row of each journal name and returns the
// top k by descending SJR. Equal scores keep dataset order.
func rankBySJR(rows []Row, k int) []RankedJournal {
	sorted := append([]Row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SJR > sorted[j].SJR
	})

	seen := make(map[string]bool)
	var out []RankedJournal
	for _, row := range sorted {
		if seen[row.JournalName] {
			continue
		}
		seen[row.JournalName] = true
		out = append(out, RankedJournal{Rank: len(out) + 1, Journal: row.JournalName, SJR: row.SJR})
		if len(out) == k {
			break
		}
	}
	return out
}

// rankBySimilarity re-vectorizes every member row and returns the k rows
// closest to the query vector.
func (r *Recommender) rankBySimilarity(query []float64, rows []Row) []SimilarJournal {
	vectors := make([][]float64, len(rows))
	for i, row := range rows {
		vectors[i] = r.vectorizer.Vectorize(r.normalize(row.Text()))
	}

	neighbors := semantic.Nearest(query, vectors, r.topK)
	out := make([]SimilarJournal, len(neighbors))
	for i, n := range neighbors {
		row := rows[n.Index]
		out[i] = SimilarJournal{
			Rank:       i + 1,
			Journal:    row.JournalName,
			SJR:        row.SJR,
			Similarity: (1 - n.Distance) * 100,
			Title:      row.Title,
		}
	}
	return out
}
