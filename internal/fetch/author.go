package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/matsen/jrec/internal/author"
	"github.com/matsen/jrec/internal/extract"
	"github.com/matsen/jrec/internal/logger"
	"github.com/matsen/jrec/internal/pace"
	"github.com/matsen/jrec/internal/record"
)

// DefaultScholarURL is the profile site's search home.
const DefaultScholarURL = "https://scholar.google.com/"

// AuthorConfig configures an AuthorFetcher.
type AuthorConfig struct {
	HomeURL         string
	Selectors       extract.ScholarSelectors
	SearchDelay     pace.Range
	CoAuthorTimeout time.Duration
}

// AuthorFetcher resolves a display name to a profile.
type AuthorFetcher struct {
	Deps
	cfg AuthorConfig
}

// NewAuthorFetcher creates an AuthorFetcher.
func NewAuthorFetcher(d Deps, cfg AuthorConfig) *AuthorFetcher {
	if cfg.HomeURL == "" {
		cfg.HomeURL = DefaultScholarURL
	}
	return &AuthorFetcher{Deps: d, cfg: cfg}
}

// FetchAuthor searches for name and reads the first matching profile.
// It returns ErrNotFound when the search lists no profile.
func (f *AuthorFetcher) FetchAuthor(ctx context.Context, name string) (record.Author, error) {
	s := f.Session
	sel := f.cfg.Selectors
	log := f.logger(ctx).With(logger.String("author", name))

	if err := s.Load(ctx, f.cfg.HomeURL); err != nil {
		return record.Author{}, err
	}
	if err := f.wait(ctx, f.cfg.SearchDelay); err != nil {
		return record.Author{}, err
	}
	if err := s.Fill(ctx, sel.SearchInput, author.CleanQuery(name)); err != nil {
		return record.Author{}, err
	}
	if err := s.Submit(ctx, sel.SearchInput); err != nil {
		return record.Author{}, err
	}

	results, err := f.snapshot(ctx, s)
	if err != nil {
		return record.Author{}, err
	}
	link := sel.ProfileLink(results)
	if !link.OK {
		return record.Author{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if err := s.Load(ctx, link.Value); err != nil {
		return record.Author{}, err
	}
	profile, err := f.snapshot(ctx, s)
	if err != nil {
		return record.Author{}, err
	}

	a := sel.Author(profile)
	if a.ID == "" {
		a.ID = extract.AuthorIDFromURL(link.Value).Or("")
	}
	if sel.HasCoAuthorDialog(profile) {
		if names := f.dialogCoAuthors(ctx, log); len(names) > 0 {
			a.CoAuthors = names
		}
	}
	return a, nil
}

// dialogCoAuthors opens the full co-author list and closes it again. A
// dialog that does not appear in time yields nil and the sidebar list stands.
func (f *AuthorFetcher) dialogCoAuthors(ctx context.Context, log logger.Logger) []string {
	s := f.Session
	sel := f.cfg.Selectors

	if err := s.Click(ctx, sel.CoAuthorOpen); err != nil {
		log.Debug("Co-author dialog did not open", logger.Error(err))
		return nil
	}

	waitCtx := ctx
	if f.cfg.CoAuthorTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, f.cfg.CoAuthorTimeout)
		defer cancel()
	}
	if err := s.WaitFor(waitCtx, sel.CoAuthorDialog); err != nil {
		log.Debug("Co-author dialog stayed empty", logger.Error(err))
		return nil
	}

	page, err := s.Snapshot(ctx)
	if err != nil {
		log.Debug("Co-author dialog unreadable", logger.Error(err))
		return nil
	}
	names := sel.CoAuthors(page, true)

	if err := s.Click(ctx, sel.CoAuthorClose); err != nil {
		log.Debug("Co-author dialog did not close", logger.Error(err))
	}
	return names
}
