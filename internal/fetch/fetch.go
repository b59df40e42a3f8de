// Package fetch turns one navigation sequence on the crawled sites into one
// entity record: an author profile, an author's articles, or a journal.
package fetch

import (
	"context"
	"errors"

	"github.com/matsen/jrec/internal/browser"
	"github.com/matsen/jrec/internal/extract"
	"github.com/matsen/jrec/internal/logger"
	"github.com/matsen/jrec/internal/pace"
)

var (
	// ErrNotFound means the author search returned no profile.
	ErrNotFound = errors.New("author not found")
	// ErrNoResults means the journal search returned nothing usable.
	ErrNoResults = errors.New("no journal search results")
	// ErrNoTitle means a journal lookup was asked for an empty source title.
	ErrNoTitle = errors.New("empty source title")
)

// Waiter inserts a paced delay.
type Waiter interface {
	Wait(ctx context.Context, r pace.Range) error
}

// Blocker inspects page source for a blocking page and backs off.
type Blocker interface {
	Check(ctx context.Context, text string) bool
}

// Deps are the collaborators every fetcher shares.
type Deps struct {
	Session  browser.Session
	Pacer    Waiter
	Detector Blocker
	// Log is used when ctx carries no logger.
	Log logger.Logger
}

func (d Deps) logger(ctx context.Context) logger.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l
	}
	if d.Log == nil {
		return logger.NewNop()
	}
	return d.Log
}

// snapshot captures the session page and runs the blocking check on it.
func (d Deps) snapshot(ctx context.Context, s browser.Session) (*extract.Page, error) {
	p, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if d.Detector != nil {
		d.Detector.Check(ctx, p.HTML)
	}
	return p, nil
}

func (d Deps) wait(ctx context.Context, r pace.Range) error {
	if d.Pacer == nil {
		return ctx.Err()
	}
	return d.Pacer.Wait(ctx, r)
}
