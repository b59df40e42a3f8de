package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// File names inside the checkpoint directory.
const (
	VisitedFile  = "visited.json"
	PendingFile  = "pending.json"
	AuthorsFile  = "authors.csv"
	ArticlesFile = "articles.csv"
	JournalsFile = "journals.csv"
)

// ErrCorrupt is returned when a checkpoint file exists but cannot be parsed.
var ErrCorrupt = errors.New("corrupt checkpoint file")

// Saver persists a checkpoint.
type Saver interface {
	Save(cp *Checkpoint) error
}

// Store reads and writes a checkpoint directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the checkpoint directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Load reads the checkpoint. Missing files load as empty collections; a
// file that exists but cannot be parsed yields an error wrapping ErrCorrupt.
func (s *Store) Load() (*Checkpoint, error) {
	cp := New()

	var visited []string
	if err := readFile(s.path(VisitedFile), func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&visited)
	}); err != nil {
		return nil, err
	}
	for _, name := range visited {
		cp.MarkVisited(name)
	}
	if err := readFile(s.path(PendingFile), func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&cp.Pending)
	}); err != nil {
		return nil, err
	}

	if err := readFile(s.path(AuthorsFile), func(r io.Reader) (err error) {
		cp.Authors, err = readAuthors(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readFile(s.path(ArticlesFile), func(r io.Reader) (err error) {
		cp.Articles, err = readArticles(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readFile(s.path(JournalsFile), func(r io.Reader) (err error) {
		cp.Journals, err = readJournals(r)
		return err
	}); err != nil {
		return nil, err
	}

	cp.rebuildIndexes()
	return cp, nil
}

// Save writes every collection, each to a temporary file renamed over the
// previous one. The record files go first and visited.json last, so a save
// that stops part way never marks a name visited without its record.
func (s *Store) Save(cp *Checkpoint) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	visited := make([]string, 0, len(cp.Visited))
	for name := range cp.Visited {
		visited = append(visited, name)
	}
	sort.Strings(visited)

	if err := writeAtomic(s.path(AuthorsFile), func(w io.Writer) error {
		return writeAuthors(w, cp.Authors)
	}); err != nil {
		return err
	}
	if err := writeAtomic(s.path(ArticlesFile), func(w io.Writer) error {
		return writeArticles(w, cp.Articles)
	}); err != nil {
		return err
	}
	if err := writeAtomic(s.path(JournalsFile), func(w io.Writer) error {
		return writeJournals(w, cp.Journals)
	}); err != nil {
		return err
	}

	pending := cp.Pending
	if pending == nil {
		pending = []Pending{}
	}
	if err := writeAtomic(s.path(PendingFile), func(w io.Writer) error {
		return json.NewEncoder(w).Encode(pending)
	}); err != nil {
		return err
	}
	return writeAtomic(s.path(VisitedFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(visited)
	})
}

func readFile(path string, decode func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if err := decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty file
		}
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, filepath.Base(path), err)
	}
	return nil
}

func writeAtomic(path string, encode func(io.Writer) error) error {
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if err := encode(f); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
