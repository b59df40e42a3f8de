package checkpoint

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/matsen/jrec/internal/author"
	"github.com/matsen/jrec/internal/record"
)

// Column layouts. Files are read by header name, so column order in
// existing files does not matter.
var (
	authorColumns  = []string{"author_id", "name", "affiliation", "citations", "h_index", "coauthors"}
	articleColumns = []string{"title", "authors", "year", "source", "citations", "summary", "link", "url", "doc_type", "author_id", "issn"}
	journalColumns = []string{"name", "publisher", "issn", "coverage", "h_index", "quartile", "sjr", "impact_factor", "scope"}
)

type row struct {
	index  map[string]int
	fields []string
}

func (r row) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

func (r row) int(col string) *int {
	return record.ParseCount(r.get(col))
}

func (r row) float(col string) *float64 {
	return record.ParseDecimal(r.get(col))
}

// readRows parses a headed CSV. required names a column that must be in the
// header.
func readRows(r io.Reader, required string) ([]row, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := index[required]; !ok {
		return nil, fmt.Errorf("missing column %q", required)
	}

	rows := make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, row{index: index, fields: rec})
	}
	return rows, nil
}

func writeRows(w io.Writer, header []string, n int, fields func(i int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(fields(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readAuthors(r io.Reader) ([]record.Author, error) {
	rows, err := readRows(r, "author_id")
	if err != nil {
		return nil, err
	}
	out := make([]record.Author, 0, len(rows))
	for _, row := range rows {
		out = append(out, record.Author{
			ID:          row.get("author_id"),
			Name:        row.get("name"),
			Affiliation: row.get("affiliation"),
			Citations:   row.int("citations"),
			HIndex:      row.int("h_index"),
			CoAuthors:   author.SplitCoAuthors(row.get("coauthors")),
		})
	}
	return out, nil
}

func writeAuthors(w io.Writer, authors []record.Author) error {
	return writeRows(w, authorColumns, len(authors), func(i int) []string {
		a := authors[i]
		return []string{
			a.ID,
			a.Name,
			a.Affiliation,
			record.FormatInt(a.Citations),
			record.FormatInt(a.HIndex),
			author.JoinCoAuthors(a.CoAuthors),
		}
	})
}

func readArticles(r io.Reader) ([]record.Article, error) {
	rows, err := readRows(r, "author_id")
	if err != nil {
		return nil, err
	}
	out := make([]record.Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, record.Article{
			Title:     row.get("title"),
			Authors:   row.get("authors"),
			Year:      row.int("year"),
			Source:    row.get("source"),
			Citations: row.int("citations"),
			Summary:   row.get("summary"),
			Link:      row.get("link"),
			URL:       row.get("url"),
			DocType:   record.ParseDocType(row.get("doc_type")),
			AuthorID:  row.get("author_id"),
			ISSN:      row.get("issn"),
		})
	}
	return out, nil
}

func writeArticles(w io.Writer, articles []record.Article) error {
	return writeRows(w, articleColumns, len(articles), func(i int) []string {
		a := articles[i]
		return []string{
			a.Title,
			a.Authors,
			record.FormatInt(a.Year),
			a.Source,
			record.FormatInt(a.Citations),
			a.Summary,
			a.Link,
			a.URL,
			string(a.DocType),
			a.AuthorID,
			a.ISSN,
		}
	})
}

func readJournals(r io.Reader) ([]record.Journal, error) {
	rows, err := readRows(r, "issn")
	if err != nil {
		return nil, err
	}
	out := make([]record.Journal, 0, len(rows))
	for _, row := range rows {
		out = append(out, record.Journal{
			Name:         row.get("name"),
			Publisher:    row.get("publisher"),
			ISSN:         row.get("issn"),
			Coverage:     row.get("coverage"),
			HIndex:       row.int("h_index"),
			Quartile:     row.get("quartile"),
			SJR:          row.float("sjr"),
			ImpactFactor: row.float("impact_factor"),
			Scope:        row.get("scope"),
		})
	}
	return out, nil
}

func writeJournals(w io.Writer, journals []record.Journal) error {
	return writeRows(w, journalColumns, len(journals), func(i int) []string {
		j := journals[i]
		return []string{
			j.Name,
			j.Publisher,
			j.ISSN,
			j.Coverage,
			record.FormatInt(j.HIndex),
			j.Quartile,
			record.FormatFloat(j.SJR),
			record.FormatFloat(j.ImpactFactor),
			j.Scope,
		}
	})
}
