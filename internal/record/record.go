// Package record defines the crawled entities: authors, their articles, and
// the journals those articles were published in.
package record

// Author is one resolved scholar profile.
type Author struct {
	// Identity
	ID   string `json:"author_id"` // Opaque profile ID taken from the profile URL
	Name string `json:"name"`      // Display name as rendered on the profile

	Affiliation string `json:"affiliation,omitempty"` // Affiliation / country line

	// Metrics (nil when the profile did not show them)
	Citations *int `json:"citations,omitempty"`
	HIndex    *int `json:"h_index,omitempty"`

	// Display names only; identity is resolved by searching the name again.
	CoAuthors []string `json:"coauthors,omitempty"`
}

// Article is one (author, article) pairing. The same publication listed on
// two profiles produces two Articles with different AuthorID values.
type Article struct {
	Title     string  `json:"title,omitempty"`
	Authors   string  `json:"authors,omitempty"` // Author line as rendered
	Year      *int    `json:"year,omitempty"`
	Source    string  `json:"source,omitempty"` // Journal / venue title
	Citations *int    `json:"citations,omitempty"`
	Summary   string  `json:"summary,omitempty"`
	Link      string  `json:"link,omitempty"` // Document link (publisher / DOI)
	URL       string  `json:"url,omitempty"`  // Detail page on the profile site
	DocType   DocType `json:"doc_type,omitempty"`

	AuthorID string `json:"author_id"`      // Owning Author.ID
	ISSN     string `json:"issn,omitempty"` // Set once the journal is resolved
}

// Journal is the ranking-registry view of a publication venue.
type Journal struct {
	Name         string   `json:"name,omitempty"`
	Publisher    string   `json:"publisher,omitempty"`
	ISSN         string   `json:"issn,omitempty"`
	Coverage     string   `json:"coverage,omitempty"`
	HIndex       *int     `json:"h_index,omitempty"`
	Quartile     string   `json:"quartile,omitempty"`
	SJR          *float64 `json:"sjr,omitempty"`
	ImpactFactor *float64 `json:"impact_factor,omitempty"`
	Scope        string   `json:"scope,omitempty"`
}

// HasISSN reports whether the article's journal has been resolved.
func (a Article) HasISSN() bool {
	return a.ISSN != ""
}
