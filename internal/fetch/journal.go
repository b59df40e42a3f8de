package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/matsen/jrec/internal/extract"
	"github.com/matsen/jrec/internal/pace"
	"github.com/matsen/jrec/internal/record"
)

// DefaultRegistryURL is the journal-ranking registry home.
const DefaultRegistryURL = "https://www.scimagojr.com/"

// JournalConfig configures a JournalFetcher.
type JournalConfig struct {
	HomeURL     string
	Selectors   extract.RegistrySelectors
	SearchDelay pace.Range // after submitting the search
	ResultDelay pace.Range // after opening the chosen result
}

// JournalFetcher resolves a source title to a registry entry.
type JournalFetcher struct {
	Deps
	cfg JournalConfig
}

// NewJournalFetcher creates a JournalFetcher.
func NewJournalFetcher(d Deps, cfg JournalConfig) *JournalFetcher {
	if cfg.HomeURL == "" {
		cfg.HomeURL = DefaultRegistryURL
	}
	return &JournalFetcher{Deps: d, cfg: cfg}
}

// FetchJournal searches the registry for title and reads the chosen entry:
// the exact name match anywhere in the results, else the first result.
func (f *JournalFetcher) FetchJournal(ctx context.Context, title string) (record.Journal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return record.Journal{}, ErrNoTitle
	}
	s := f.Session
	sel := f.cfg.Selectors

	if err := s.Load(ctx, f.cfg.HomeURL); err != nil {
		return record.Journal{}, err
	}
	if err := s.Fill(ctx, sel.SearchInput, title); err != nil {
		return record.Journal{}, err
	}
	if err := s.Submit(ctx, sel.SearchInput); err != nil {
		return record.Journal{}, err
	}
	if err := f.wait(ctx, f.cfg.SearchDelay); err != nil {
		return record.Journal{}, err
	}

	page, err := f.snapshot(ctx, s)
	if err != nil {
		return record.Journal{}, err
	}
	if sel.NoResults(page) {
		return record.Journal{}, fmt.Errorf("%w: %q", ErrNoResults, title)
	}
	if err := s.WaitFor(ctx, sel.ResultLink); err != nil {
		return record.Journal{}, fmt.Errorf("%w: %q: %v", ErrNoResults, title, err)
	}
	if page, err = s.Snapshot(ctx); err != nil {
		return record.Journal{}, err
	}

	choice, ok := extract.SelectJournal(sel.JournalResults(page), title)
	if !ok {
		return record.Journal{}, fmt.Errorf("%w: %q", ErrNoResults, title)
	}
	if err := s.Load(ctx, choice.URL); err != nil {
		return record.Journal{}, err
	}
	if err := f.wait(ctx, f.cfg.ResultDelay); err != nil {
		return record.Journal{}, err
	}

	entry, err := f.snapshot(ctx, s)
	if err != nil {
		return record.Journal{}, err
	}
	return sel.Journal(entry), nil
}
