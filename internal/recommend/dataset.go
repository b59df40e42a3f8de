package recommend

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
)

// Dataset column names.
const (
	ColJournalName = "journal_name"
	ColSJR         = "sjr_score"
	ColCluster     = "cluster"
	ColTitle       = "title"
	ColAbstract    = "abstract"
	ColKeywords    = "author_keywords"
)

var requiredColumns = []string{ColJournalName, ColSJR, ColCluster, ColTitle, ColAbstract, ColKeywords}

// Row is one clustered article of the reference dataset.
type Row struct {
	JournalName string
	SJR         float64
	Cluster     int
	Title       string
	Abstract    string
	Keywords    string
}

// Text joins the row's title, abstract and keywords the same way a query is
// joined, skipping empty parts.
func (r Row) Text() string {
	return joinText(r.Title, r.Abstract, r.Keywords)
}

// DatasetStats counts what LoadDataset kept and dropped.
type DatasetStats struct {
	Rows       int `json:"rows"`
	DroppedSJR int `json:"dropped_sjr"` // SJR missing or not a number
	BadCluster int `json:"bad_cluster"` // Cluster label not an integer
}

// LoadDataset reads the clustered dataset CSV. Columns are matched by header
// name, so their order is free and extra columns are ignored. Rows whose SJR
// does not parse as a number, or whose cluster is not an integer, are
// dropped and counted.
func LoadDataset(path string) ([]Row, DatasetStats, error) {
	var stats DatasetStats

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, stats, fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, stats, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, stats, fmt.Errorf("dataset %s is empty", path)
		}
		return nil, stats, fmt.Errorf("reading dataset header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, stats, fmt.Errorf("dataset %s: missing column %q", path, name)
		}
	}

	get := func(rec []string, name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("reading dataset: %w", err)
		}

		sjr, ok := parseSJR(get(rec, ColSJR))
		if !ok {
			stats.DroppedSJR++
			continue
		}
		cluster, ok := parseCluster(get(rec, ColCluster))
		if !ok {
			stats.BadCluster++
			continue
		}
		rows = append(rows, Row{
			JournalName: get(rec, ColJournalName),
			SJR:         sjr,
			Cluster:     cluster,
			Title:       get(rec, ColTitle),
			Abstract:    get(rec, ColAbstract),
			Keywords:    get(rec, ColKeywords),
		})
	}
	stats.Rows = len(rows)
	return rows, stats, nil
}

func parseSJR(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseCluster accepts integer labels, including ones written as "3.0".
func parseCluster(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func joinText(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
