// Package browser drives the single browser session a crawl runs in.
//
// Navigation, clicks and waits go through Session; reading happens on
// extract.Page snapshots so extraction stays testable without a browser.
package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/matsen/jrec/internal/extract"
)

var (
	// ErrNoAuxContext is returned when an auxiliary context cannot be opened.
	ErrNoAuxContext = errors.New("auxiliary browser context unavailable")
	// ErrTimeout is returned when a bounded wait expires.
	ErrTimeout = errors.New("timed out waiting for element")
)

// Session is one browsing context (a tab).
type Session interface {
	// Load navigates to url and waits for the document to load.
	Load(ctx context.Context, url string) error
	// Snapshot captures the current document.
	Snapshot(ctx context.Context) (*extract.Page, error)
	// Text returns the text of the first element matching selector without
	// waiting for it.
	Text(ctx context.Context, selector string) (string, bool)
	Click(ctx context.Context, selector string) error
	// Fill clears the input matching selector and types value into it.
	Fill(ctx context.Context, selector, value string) error
	// Submit submits the form containing selector.
	Submit(ctx context.Context, selector string) error
	// WaitFor blocks until selector matches. The wait is bounded by ctx's
	// deadline when it has one, otherwise by the session's wait timeout.
	// Expiry yields ErrTimeout.
	WaitFor(ctx context.Context, selector string) error
	// OpenAux opens an auxiliary context (a new tab) in the same browser.
	OpenAux(ctx context.Context) (Session, error)
	// Close releases an auxiliary context. On the primary session it does
	// nothing.
	Close() error
}

// WithAux runs fn in a fresh auxiliary context of s and closes it on every
// path. The caller keeps using s afterwards.
func WithAux(ctx context.Context, s Session, fn func(Session) error) (err error) {
	aux, err := s.OpenAux(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := aux.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing auxiliary context: %w", cerr)
		}
	}()
	return fn(aux)
}
