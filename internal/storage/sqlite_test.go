package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/jrec/internal/checkpoint"
	"github.com/matsen/jrec/internal/record"
)

// testCheckpoint builds a small crawl state with two authors sharing an
// article and one resolved journal.
func testCheckpoint() *checkpoint.Checkpoint {
	cp := checkpoint.New()
	cp.AddAuthor(record.Author{
		ID:          "AAA111",
		Name:        "Jane Doe",
		Affiliation: "Université de Montréal",
		Citations:   record.IntPtr(1200),
		HIndex:      record.IntPtr(18),
		CoAuthors:   []string{"John Smith", "Carol King"},
	})
	cp.AddAuthor(record.Author{ID: "BBB222", Name: "John Smith"})
	cp.AddArticles([]record.Article{
		{
			Title:     "Machine Learning in Ecology",
			Authors:   "J Doe, J Smith",
			Year:      record.IntPtr(2021),
			Source:    "Ecology Letters",
			Citations: record.IntPtr(40),
			Summary:   "We apply random forests to species distribution data.",
			DocType:   record.DocArticle,
			AuthorID:  "AAA111",
			ISSN:      "1461023X",
		},
		{
			Title:    "Forest Soil Carbon Dynamics",
			Authors:  "J Doe",
			Source:   "Global Change Biology",
			DocType:  record.DocArticle,
			AuthorID: "AAA111",
		},
	})
	cp.AddArticles([]record.Article{
		{
			Title:    "Machine Learning in Ecology",
			Authors:  "J Doe, J Smith",
			Source:   "Ecology Letters",
			AuthorID: "BBB222",
			ISSN:     "1461023X",
		},
	})
	cp.AddJournal(record.Journal{
		Name:      "Ecology Letters",
		Publisher: "Wiley",
		ISSN:      "1461023X",
		HIndex:    record.IntPtr(265),
		Quartile:  "Q1",
		SJR:       record.FloatPtr(4.2),
	})
	return cp
}

// setupTestDB creates a test database loaded from testCheckpoint.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), DefaultDBName))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.RebuildFromCheckpoint(testCheckpoint()); err != nil {
		t.Fatalf("Failed to rebuild DB: %v", err)
	}
	return db
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("OpenDB() did not create database file")
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats != (RebuildStats{}) {
		t.Errorf("Stats() on empty DB = %+v, want zeros", stats)
	}
}

func TestDB_RebuildFromCheckpoint(t *testing.T) {
	db := setupTestDB(t)

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := RebuildStats{Authors: 2, Articles: 3, Journals: 1}
	if stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}

	// Rebuild replaces everything
	cp := checkpoint.New()
	cp.AddAuthor(record.Author{ID: "CCC333", Name: "Carol King"})
	rebuilt, err := db.RebuildFromCheckpoint(cp)
	if err != nil {
		t.Fatalf("RebuildFromCheckpoint() error = %v", err)
	}
	if rebuilt != (RebuildStats{Authors: 1}) {
		t.Errorf("RebuildFromCheckpoint() = %+v, want 1 author", rebuilt)
	}

	results, err := db.SearchArticles("ecology", 10)
	if err != nil {
		t.Fatalf("SearchArticles() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("SearchArticles() after rebuild = %d results, want 0", len(results))
	}
}

func TestDB_AuthorByID(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		id        string
		wantFound bool
		wantName  string
	}{
		{"AAA111", true, "Jane Doe"},
		{"BBB222", true, "John Smith"},
		{"NotFound", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			a, err := db.AuthorByID(tt.id)
			if err != nil {
				t.Fatalf("AuthorByID() error = %v", err)
			}
			if !tt.wantFound {
				if a != nil {
					t.Errorf("AuthorByID() returned %+v, want nil", a)
				}
				return
			}
			if a == nil {
				t.Fatal("AuthorByID() returned nil, want author")
			}
			if a.Name != tt.wantName {
				t.Errorf("AuthorByID() name = %q, want %q", a.Name, tt.wantName)
			}
		})
	}
}

func TestDB_AuthorByID_FullRecord(t *testing.T) {
	db := setupTestDB(t)

	a, err := db.AuthorByID("AAA111")
	if err != nil {
		t.Fatalf("AuthorByID() error = %v", err)
	}
	if a.Affiliation != "Université de Montréal" {
		t.Errorf("Affiliation = %q", a.Affiliation)
	}
	if a.Citations == nil || *a.Citations != 1200 {
		t.Errorf("Citations = %v, want 1200", a.Citations)
	}
	if a.HIndex == nil || *a.HIndex != 18 {
		t.Errorf("HIndex = %v, want 18", a.HIndex)
	}
	if len(a.CoAuthors) != 2 || a.CoAuthors[1] != "Carol King" {
		t.Errorf("CoAuthors = %v", a.CoAuthors)
	}

	sparse, err := db.AuthorByID("BBB222")
	if err != nil {
		t.Fatalf("AuthorByID() error = %v", err)
	}
	if sparse.Citations != nil || sparse.HIndex != nil {
		t.Errorf("missing metrics should stay nil, got %v / %v", sparse.Citations, sparse.HIndex)
	}
	if len(sparse.CoAuthors) != 0 {
		t.Errorf("CoAuthors = %v, want none", sparse.CoAuthors)
	}
}

func TestDB_ArticlesByAuthor(t *testing.T) {
	db := setupTestDB(t)

	articles, err := db.ArticlesByAuthor("AAA111")
	if err != nil {
		t.Fatalf("ArticlesByAuthor() error = %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("ArticlesByAuthor() = %d articles, want 2", len(articles))
	}
	first := articles[0]
	if first.Title != "Machine Learning in Ecology" {
		t.Errorf("first title = %q", first.Title)
	}
	if first.Year == nil || *first.Year != 2021 {
		t.Errorf("Year = %v, want 2021", first.Year)
	}
	if first.DocType != record.DocArticle {
		t.Errorf("DocType = %q, want %q", first.DocType, record.DocArticle)
	}
	if first.ISSN != "1461023X" {
		t.Errorf("ISSN = %q", first.ISSN)
	}
	if articles[1].ISSN != "" || articles[1].Year != nil {
		t.Errorf("unresolved article = %+v, want empty ISSN and nil year", articles[1])
	}

	none, err := db.ArticlesByAuthor("missing")
	if err != nil {
		t.Fatalf("ArticlesByAuthor() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ArticlesByAuthor(missing) = %d, want 0", len(none))
	}
}

func TestDB_JournalByISSN(t *testing.T) {
	db := setupTestDB(t)

	j, err := db.JournalByISSN("1461023X")
	if err != nil {
		t.Fatalf("JournalByISSN() error = %v", err)
	}
	if j == nil {
		t.Fatal("JournalByISSN() returned nil")
	}
	if j.Name != "Ecology Letters" || j.Quartile != "Q1" {
		t.Errorf("JournalByISSN() = %+v", j)
	}
	if j.SJR == nil || *j.SJR != 4.2 {
		t.Errorf("SJR = %v, want 4.2", j.SJR)
	}
	if j.ImpactFactor != nil {
		t.Errorf("ImpactFactor = %v, want nil", j.ImpactFactor)
	}

	missing, err := db.JournalByISSN("00000000")
	if err != nil {
		t.Fatalf("JournalByISSN() error = %v", err)
	}
	if missing != nil {
		t.Errorf("JournalByISSN(missing) = %+v, want nil", missing)
	}
}

func TestDB_TopJournals(t *testing.T) {
	db := setupTestDB(t)

	cp := testCheckpoint()
	cp.AddJournal(record.Journal{Name: "Oikos", ISSN: "00301299", SJR: record.FloatPtr(1.1)})
	cp.AddJournal(record.Journal{Name: "Unranked", ISSN: "99999999"})
	if _, err := db.RebuildFromCheckpoint(cp); err != nil {
		t.Fatalf("RebuildFromCheckpoint() error = %v", err)
	}

	journals, err := db.TopJournals(10)
	if err != nil {
		t.Fatalf("TopJournals() error = %v", err)
	}
	var names []string
	for _, j := range journals {
		names = append(names, j.Name)
	}
	want := []string{"Ecology Letters", "Oikos", "Unranked"}
	if len(names) != len(want) {
		t.Fatalf("TopJournals() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("TopJournals()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDB_SearchArticles(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name      string
		query     string
		wantCount int
	}{
		{"title word", "machine", 2},
		{"source", "Global", 1},
		{"author line", "Smith", 2},
		{"summary", "species", 1},
		{"no match", "quantum", 0},
		{"empty", "   ", 0},
		{"phrase with special chars", "soil-carbon", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := db.SearchArticles(tt.query, 10)
			if err != nil {
				t.Fatalf("SearchArticles(%q) error = %v", tt.query, err)
			}
			if len(results) != tt.wantCount {
				t.Errorf("SearchArticles(%q) = %d results, want %d", tt.query, len(results), tt.wantCount)
			}
		})
	}
}

func TestDB_SearchArticles_Limit(t *testing.T) {
	db := setupTestDB(t)

	results, err := db.SearchArticles("ecology", 1)
	if err != nil {
		t.Fatalf("SearchArticles() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("SearchArticles() with limit 1 = %d results", len(results))
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"machine learning", "machine learning"},
		{"  soil  ", "soil"},
		{"", ""},
		{"soil-carbon", `"soil-carbon"`},
		{`say "hi"`, `"say ""hi"""`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := prepareFTSQuery(tt.input); got != tt.want {
				t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
