// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/matsen/jrec/internal/browser"
	"github.com/matsen/jrec/internal/extract"
)

// Site is the static web a Fake browses. All Fake sessions opened from the
// same Site share its pages and counters.
type Site struct {
	mu sync.Mutex

	// Pages maps a URL to its HTML.
	Pages map[string]string
	// Clicks maps "url selector" to the URL the click leads to. Use ClickKey.
	Clicks map[string]string
	// Search maps the value filled into a search box to the results URL
	// reached on submit.
	Search map[string]string
	// LoadErrors makes Load fail for the given URLs.
	LoadErrors map[string]error
	// FailAux makes OpenAux fail.
	FailAux bool

	loads  []string
	fills  []string
	clicks []string
	opened int
	closed int
}

// NewSite returns an empty Site.
func NewSite() *Site {
	return &Site{
		Pages:      map[string]string{},
		Clicks:     map[string]string{},
		Search:     map[string]string{},
		LoadErrors: map[string]error{},
	}
}

// ClickKey builds a Clicks key.
func ClickKey(url, selector string) string {
	return url + " " + selector
}

// Session opens the primary session on the site.
func (s *Site) Session() *Fake {
	return &Fake{site: s}
}

// Loads returns every URL loaded so far, across sessions.
func (s *Site) Loads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.loads...)
}

// Fills returns every value filled so far.
func (s *Site) Fills() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fills...)
}

// Clicked returns every "url selector" clicked so far.
func (s *Site) Clicked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.clicks...)
}

// OpenAux returns the number of auxiliary contexts still open.
func (s *Site) OpenAux() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened - s.closed
}

// AuxOpened returns how many auxiliary contexts were ever opened.
func (s *Site) AuxOpened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// Fake is a browser.Session over a Site.
type Fake struct {
	site    *Site
	aux     bool
	closed  bool
	current string
	filled  string
}

var _ browser.Session = (*Fake)(nil)

// Current returns the URL the session is on.
func (f *Fake) Current() string {
	return f.current
}

func (f *Fake) Load(ctx context.Context, url string) error {
	if err := f.usable(ctx); err != nil {
		return err
	}
	f.site.mu.Lock()
	defer f.site.mu.Unlock()
	f.site.loads = append(f.site.loads, url)
	if err := f.site.LoadErrors[url]; err != nil {
		return err
	}
	if _, ok := f.site.Pages[url]; !ok {
		return fmt.Errorf("loading %s: no such page", url)
	}
	f.current = url
	return nil
}

func (f *Fake) Snapshot(ctx context.Context) (*extract.Page, error) {
	if err := f.usable(ctx); err != nil {
		return nil, err
	}
	f.site.mu.Lock()
	html := f.site.Pages[f.current]
	f.site.mu.Unlock()
	return extract.NewPage(f.current, html)
}

func (f *Fake) Text(ctx context.Context, selector string) (string, bool) {
	p, err := f.Snapshot(ctx)
	if err != nil {
		return "", false
	}
	t := extract.Text(p.Root(), selector)
	return t.Value, t.OK
}

func (f *Fake) Click(ctx context.Context, selector string) error {
	if err := f.usable(ctx); err != nil {
		return err
	}
	key := ClickKey(f.current, selector)
	f.site.mu.Lock()
	defer f.site.mu.Unlock()
	f.site.clicks = append(f.site.clicks, key)
	next, ok := f.site.Clicks[key]
	if !ok {
		return fmt.Errorf("clicking %s: %w", selector, browser.ErrTimeout)
	}
	f.current = next
	return nil
}

func (f *Fake) Fill(ctx context.Context, selector, value string) error {
	if err := f.usable(ctx); err != nil {
		return err
	}
	f.site.mu.Lock()
	defer f.site.mu.Unlock()
	f.site.fills = append(f.site.fills, value)
	f.filled = value
	return nil
}

func (f *Fake) Submit(ctx context.Context, selector string) error {
	if err := f.usable(ctx); err != nil {
		return err
	}
	f.site.mu.Lock()
	defer f.site.mu.Unlock()
	next, ok := f.site.Search[f.filled]
	if !ok {
		return fmt.Errorf("submitting %q: no results page", f.filled)
	}
	f.current = next
	return nil
}

func (f *Fake) WaitFor(ctx context.Context, selector string) error {
	p, err := f.Snapshot(ctx)
	if err != nil {
		return err
	}
	if !p.Has(selector) {
		return fmt.Errorf("waiting for %s: %w", selector, browser.ErrTimeout)
	}
	return nil
}

func (f *Fake) OpenAux(ctx context.Context) (browser.Session, error) {
	if err := f.usable(ctx); err != nil {
		return nil, err
	}
	f.site.mu.Lock()
	defer f.site.mu.Unlock()
	if f.aux || f.site.FailAux {
		return nil, browser.ErrNoAuxContext
	}
	f.site.opened++
	return &Fake{site: f.site, aux: true}, nil
}

func (f *Fake) Close() error {
	if !f.aux || f.closed {
		return nil
	}
	f.closed = true
	f.site.mu.Lock()
	f.site.closed++
	f.site.mu.Unlock()
	return nil
}

func (f *Fake) usable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.closed {
		return fmt.Errorf("session closed")
	}
	return nil
}
