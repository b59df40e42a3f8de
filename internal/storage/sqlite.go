// Package storage keeps a SQLite query database derived from the crawl
// checkpoint. The checkpoint stays the source of truth; the database can be
// deleted and rebuilt at any time.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/matsen/jrec/internal/author"
	"github.com/matsen/jrec/internal/checkpoint"
	"github.com/matsen/jrec/internal/record"
	_ "modernc.org/sqlite"
)

// DefaultDBName is the database file name inside the data directory.
const DefaultDBName = "jrec.db"

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectArticleFields contains the field list for article SELECT queries.
const selectArticleFields = `title, authors, year, source, citations,
	summary, link, url, doc_type, author_id, issn`

const selectJournalFields = `name, publisher, issn, coverage, h_index,
	quartile, sjr, impact_factor, scope`

const selectAuthorFields = `id, name, affiliation, citations, h_index, coauthors`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Profiles; the same profile may appear twice in the checkpoint
		CREATE TABLE IF NOT EXISTS authors (
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			affiliation TEXT,
			citations INTEGER,
			h_index INTEGER,
			coauthors TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_authors_id ON authors(id);

		-- One row per (author, article) pairing
		CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY,
			title TEXT,
			authors TEXT,
			year INTEGER,
			source TEXT,
			citations INTEGER,
			summary TEXT,
			link TEXT,
			url TEXT,
			doc_type TEXT,
			author_id TEXT NOT NULL,
			issn TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author_id);
		CREATE INDEX IF NOT EXISTS idx_articles_issn ON articles(issn) WHERE issn IS NOT NULL AND issn != '';

		CREATE TABLE IF NOT EXISTS journals (
			issn TEXT PRIMARY KEY,
			name TEXT,
			publisher TEXT,
			coverage TEXT,
			h_index INTEGER,
			quartile TEXT,
			sjr REAL,
			impact_factor REAL,
			scope TEXT
		);

		-- Full-text search over articles, keyed by articles.rowid
		CREATE VIRTUAL TABLE IF NOT EXISTS articles_fts USING fts5(
			title,
			summary,
			source,
			authors
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildStats counts the rows written by a rebuild.
type RebuildStats struct {
	Authors  int `json:"authors"`
	Articles int `json:"articles"`
	Journals int `json:"journals"`
}

// RebuildFromCheckpoint clears the database and reloads it from cp in one
// transaction.
func (d *DB) RebuildFromCheckpoint(cp *checkpoint.Checkpoint) (RebuildStats, error) {
	var stats RebuildStats

	tx, err := d.db.Begin()
	if err != nil {
		return stats, fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"authors", "articles", "journals", "articles_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return stats, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	authorStmt, err := tx.Prepare(`INSERT INTO authors (` + selectAuthorFields + `) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return stats, fmt.Errorf("preparing authors insert: %w", err)
	}
	defer authorStmt.Close()

	for _, a := range cp.Authors {
		_, err := authorStmt.Exec(a.ID, a.Name, nullableStringValue(a.Affiliation),
			nullableInt(a.Citations), nullableInt(a.HIndex),
			nullableStringValue(author.JoinCoAuthors(a.CoAuthors)))
		if err != nil {
			return stats, fmt.Errorf("inserting author %s: %w", a.ID, err)
		}
		stats.Authors++
	}

	articleStmt, err := tx.Prepare(`
		INSERT INTO articles (rowid, ` + selectArticleFields + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return stats, fmt.Errorf("preparing articles insert: %w", err)
	}
	defer articleStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO articles_fts (rowid, title, summary, source, authors)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return stats, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, a := range cp.Articles {
		rowid := i + 1
		_, err := articleStmt.Exec(rowid,
			a.Title, a.Authors, nullableInt(a.Year), a.Source, nullableInt(a.Citations),
			a.Summary, a.Link, a.URL, string(a.DocType), a.AuthorID, nullableStringValue(a.ISSN),
		)
		if err != nil {
			return stats, fmt.Errorf("inserting article %d: %w", rowid, err)
		}
		if _, err := ftsStmt.Exec(rowid, a.Title, a.Summary, a.Source, a.Authors); err != nil {
			return stats, fmt.Errorf("inserting fts for article %d: %w", rowid, err)
		}
		stats.Articles++
	}

	journalStmt, err := tx.Prepare(`INSERT OR IGNORE INTO journals (` + selectJournalFields + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return stats, fmt.Errorf("preparing journals insert: %w", err)
	}
	defer journalStmt.Close()

	for _, j := range cp.Journals {
		if j.ISSN == "" {
			continue
		}
		res, err := journalStmt.Exec(j.Name, j.Publisher, j.ISSN, j.Coverage, nullableInt(j.HIndex),
			j.Quartile, nullableFloat(j.SJR), nullableFloat(j.ImpactFactor), j.Scope)
		if err != nil {
			return stats, fmt.Errorf("inserting journal %s: %w", j.ISSN, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.Journals++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("committing rebuild: %w", err)
	}
	return stats, nil
}

// Stats counts the rows in each table.
func (d *DB) Stats() (RebuildStats, error) {
	var s RebuildStats
	for _, c := range []struct {
		table string
		dest  *int
	}{
		{"authors", &s.Authors},
		{"articles", &s.Articles},
		{"journals", &s.Journals},
	} {
		if err := d.db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dest); err != nil {
			return s, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}
	return s, nil
}

// AuthorByID returns the first profile stored under id, or nil.
func (d *DB) AuthorByID(id string) (*record.Author, error) {
	row := d.db.QueryRow(`SELECT `+selectAuthorFields+` FROM authors WHERE id = ? LIMIT 1`, id)
	var a record.Author
	var affiliation, coauthors sql.NullString
	var citations, hIndex sql.NullInt64
	err := row.Scan(&a.ID, &a.Name, &affiliation, &citations, &hIndex, &coauthors)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.Affiliation = affiliation.String
	a.Citations = intFromNull(citations)
	a.HIndex = intFromNull(hIndex)
	a.CoAuthors = author.SplitCoAuthors(coauthors.String)
	return &a, nil
}

// ArticlesByAuthor returns the articles attributed to an author, in crawl
// order.
func (d *DB) ArticlesByAuthor(authorID string) ([]record.Article, error) {
	rows, err := d.db.Query(`SELECT `+selectArticleFields+` FROM articles WHERE author_id = ? ORDER BY rowid`, authorID)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// JournalByISSN returns the journal with the given ISSN, or nil.
func (d *DB) JournalByISSN(issn string) (*record.Journal, error) {
	row := d.db.QueryRow(`SELECT `+selectJournalFields+` FROM journals WHERE issn = ?`, issn)
	return scanJournal(row)
}

// TopJournals returns journals ordered by descending SJR; journals without
// an SJR come last.
func (d *DB) TopJournals(limit int) ([]record.Journal, error) {
	rows, err := d.db.Query(`SELECT `+selectJournalFields+` FROM journals
		ORDER BY sjr IS NULL, sjr DESC, name LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}
	defer rows.Close()

	var out []record.Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// SearchArticles performs a full-text search over article titles, summaries,
// sources and author lines, best matches first.
func (d *DB) SearchArticles(query string, limit int) ([]record.Article, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT `+qualified("a", selectArticleFields)+`
		FROM articles_fts
		JOIN articles a ON a.rowid = articles_fts.rowid
		WHERE articles_fts MATCH ?
		ORDER BY articles_fts.rank
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// qualified prefixes every field in a field list with a table alias.
func qualified(alias, fields string) string {
	parts := strings.Split(fields, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(s scanner) (*record.Article, error) {
	var a record.Article
	var title, authors, source, summary, link, url, docType, issn sql.NullString
	var year, citations sql.NullInt64

	err := s.Scan(&title, &authors, &year, &source, &citations,
		&summary, &link, &url, &docType, &a.AuthorID, &issn)
	if err != nil {
		return nil, err
	}

	a.Title = title.String
	a.Authors = authors.String
	a.Year = intFromNull(year)
	a.Source = source.String
	a.Citations = intFromNull(citations)
	a.Summary = summary.String
	a.Link = link.String
	a.URL = url.String
	a.DocType = record.ParseDocType(docType.String)
	a.ISSN = issn.String
	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]record.Article, error) {
	var out []record.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanJournal(s scanner) (*record.Journal, error) {
	var j record.Journal
	var name, publisher, coverage, quartile, scope sql.NullString
	var hIndex sql.NullInt64
	var sjr, impact sql.NullFloat64

	err := s.Scan(&name, &publisher, &j.ISSN, &coverage, &hIndex,
		&quartile, &sjr, &impact, &scope)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	j.Name = name.String
	j.Publisher = publisher.String
	j.Coverage = coverage.String
	j.HIndex = intFromNull(hIndex)
	j.Quartile = quartile.String
	j.SJR = floatFromNull(sjr)
	j.ImpactFactor = floatFromNull(impact)
	j.Scope = scope.String
	return &j, nil
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func intFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return record.IntPtr(int(n.Int64))
}

func floatFromNull(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return record.FloatPtr(f.Float64)
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	// FTS5 uses double quotes for phrase matching
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
