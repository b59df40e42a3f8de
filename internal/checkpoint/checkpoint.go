// Package checkpoint holds the crawl state that survives between runs: the
// names already expanded and the author, article and journal collections.
package checkpoint

import (
	"strings"

	"github.com/matsen/jrec/internal/record"
)

// Checkpoint is the in-memory crawl state.
type Checkpoint struct {
	// Visited holds author display names already expanded, exactly as they
	// were queued.
	Visited map[string]struct{}
	// Pending is the depth-first expansion stack; the last entry is next.
	// It is non-empty only when a run stopped mid-expansion.
	Pending  []Pending
	Authors  []record.Author
	Articles []record.Article
	Journals []record.Journal
	// ResolvedISSNs is derived from Journals.
	ResolvedISSNs map[string]struct{}

	// Derived from Articles.
	articleAuthors map[string]struct{}
	sourceISSNs    map[string]string
}

// New returns an empty checkpoint.
func New() *Checkpoint {
	return &Checkpoint{
		Visited:        make(map[string]struct{}),
		ResolvedISSNs:  make(map[string]struct{}),
		articleAuthors: make(map[string]struct{}),
		sourceISSNs:    make(map[string]string),
	}
}

// MarkVisited records name as expanded.
func (c *Checkpoint) MarkVisited(name string) {
	c.Visited[name] = struct{}{}
}

// IsVisited reports whether name was already expanded.
func (c *Checkpoint) IsVisited(name string) bool {
	_, ok := c.Visited[name]
	return ok
}

// Pending is a queued author expansion.
type Pending struct {
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}

// Push queues name for expansion at depth.
func (c *Checkpoint) Push(name string, depth int) {
	c.Pending = append(c.Pending, Pending{Name: name, Depth: depth})
}

// Peek returns the next queued expansion.
func (c *Checkpoint) Peek() (Pending, bool) {
	if len(c.Pending) == 0 {
		return Pending{}, false
	}
	return c.Pending[len(c.Pending)-1], true
}

// Pop removes the next queued expansion.
func (c *Checkpoint) Pop() {
	if len(c.Pending) > 0 {
		c.Pending = c.Pending[:len(c.Pending)-1]
	}
}

// AddAuthor appends a resolved author.
func (c *Checkpoint) AddAuthor(a record.Author) {
	c.Authors = append(c.Authors, a)
}

// HasArticlesFor reports whether any article is attributed to authorID.
func (c *Checkpoint) HasArticlesFor(authorID string) bool {
	_, ok := c.articleAuthors[authorID]
	return ok
}

// AddArticles appends articles.
func (c *Checkpoint) AddArticles(articles []record.Article) {
	c.Articles = append(c.Articles, articles...)
	for _, a := range articles {
		c.indexArticle(a)
	}
}

// SetArticleISSN attaches issn to the article at index i.
func (c *Checkpoint) SetArticleISSN(i int, issn string) {
	c.Articles[i].ISSN = issn
	c.indexArticle(c.Articles[i])
}

func (c *Checkpoint) indexArticle(a record.Article) {
	c.articleAuthors[a.AuthorID] = struct{}{}
	source := strings.TrimSpace(a.Source)
	if source == "" || !a.HasISSN() {
		return
	}
	if _, ok := c.sourceISSNs[source]; !ok {
		c.sourceISSNs[source] = a.ISSN
	}
}

// AddJournal appends j unless it has no ISSN or its ISSN is already known.
// It reports whether j was appended.
func (c *Checkpoint) AddJournal(j record.Journal) bool {
	issn := strings.TrimSpace(j.ISSN)
	if issn == "" {
		return false
	}
	if _, dup := c.ResolvedISSNs[issn]; dup {
		return false
	}
	c.Journals = append(c.Journals, j)
	c.ResolvedISSNs[issn] = struct{}{}
	return true
}

// ISSNForSource returns the ISSN already attached to some article with the
// same source title.
func (c *Checkpoint) ISSNForSource(title string) (string, bool) {
	issn, ok := c.sourceISSNs[strings.TrimSpace(title)]
	return issn, ok
}

// Stats are collection sizes.
type Stats struct {
	Visited          int `json:"visited"`
	Pending          int `json:"pending"`
	Authors          int `json:"authors"`
	Articles         int `json:"articles"`
	ArticlesResolved int `json:"articles_resolved"` // articles with an ISSN
	Journals         int `json:"journals"`
}

// Stats counts the collections.
func (c *Checkpoint) Stats() Stats {
	s := Stats{
		Visited:  len(c.Visited),
		Pending:  len(c.Pending),
		Authors:  len(c.Authors),
		Articles: len(c.Articles),
		Journals: len(c.Journals),
	}
	for _, a := range c.Articles {
		if a.HasISSN() {
			s.ArticlesResolved++
		}
	}
	return s
}

// rebuildIndexes recomputes the lookups derived from Articles and Journals.
func (c *Checkpoint) rebuildIndexes() {
	c.articleAuthors = make(map[string]struct{}, len(c.Authors))
	c.sourceISSNs = make(map[string]string)
	for _, a := range c.Articles {
		c.indexArticle(a)
	}

	c.ResolvedISSNs = make(map[string]struct{}, len(c.Journals))
	for _, j := range c.Journals {
		if issn := strings.TrimSpace(j.ISSN); issn != "" {
			c.ResolvedISSNs[issn] = struct{}{}
		}
	}
}
