package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is an immutable snapshot of a loaded document.
type Page struct {
	URL  string
	HTML string
	Doc  *goquery.Document
}

// NewPage parses html captured at pageURL.
func NewPage(pageURL, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing page %s: %w", pageURL, err)
	}
	return &Page{URL: pageURL, HTML: html, Doc: doc}, nil
}

// Root returns the document selection.
func (p *Page) Root() *goquery.Selection {
	if p == nil || p.Doc == nil {
		return nil
	}
	return p.Doc.Selection
}

// Has reports whether any node matches sel.
func (p *Page) Has(sel string) bool {
	root := p.Root()
	return root != nil && root.Find(sel).Length() > 0
}

// Contains reports whether the raw page source contains s.
func (p *Page) Contains(s string) bool {
	return p != nil && strings.Contains(p.HTML, s)
}

// Resolve makes href absolute against the page URL. Unparsable input is
// returned unchanged.
func (p *Page) Resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	base, err := url.Parse(p.URL)
	if err != nil || p.URL == "" {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// AuthorIDFromURL returns the "user" query parameter of a profile URL.
func AuthorIDFromURL(profileURL string) Field[string] {
	u, err := url.Parse(profileURL)
	if err != nil {
		return Absent[string]()
	}
	id := u.Query().Get("user")
	if id == "" {
		return Absent[string]()
	}
	return Present(id)
}
