package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/matsen/jrec/internal/record"
)

// RegistrySelectors locate fields on the journal-ranking registry.
type RegistrySelectors struct {
	SearchInput string `yaml:"search_input"`
	// NoResultsText is matched against the raw page source.
	NoResultsText string `yaml:"no_results_text"`
	ResultLink    string `yaml:"result_link"`
	ResultName    string `yaml:"result_name"`

	Name           string `yaml:"name"`
	Section        string `yaml:"section"`
	SectionHeading string `yaml:"section_heading"`
	SectionValue   string `yaml:"section_value"`
	MetricTable    string `yaml:"metric_table"`
	Scope          string `yaml:"scope"`
}

// DefaultRegistry returns selectors for the SCImago Journal Rank site.
func DefaultRegistry() RegistrySelectors {
	return RegistrySelectors{
		SearchInput:   "#searchinput",
		NoResultsText: "Sorry, no results were found.",
		ResultLink:    "div.search_results > a[href]",
		ResultName:    ".jrnlname",

		Name:           "h1",
		Section:        "div",
		SectionHeading: "h2",
		SectionValue:   "p",
		MetricTable:    "div.cellcontent table",
		Scope:          ".fullwidth",
	}
}

// NoResults reports whether a search returned the "no results" message.
func (s RegistrySelectors) NoResults(p *Page) bool {
	return s.NoResultsText != "" && p.Contains(s.NoResultsText)
}

// JournalResult is one entry in a registry search result list.
type JournalResult struct {
	Name string
	URL  string
}

// JournalResults reads the search result list in display order.
func (s RegistrySelectors) JournalResults(p *Page) []JournalResult {
	root := p.Root()
	if root == nil {
		return nil
	}
	var out []JournalResult
	root.Find(s.ResultLink).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		name := Text(link, s.ResultName)
		if !name.OK {
			name = textOf(link)
		}
		out = append(out, JournalResult{Name: name.Or(""), URL: p.Resolve(href)})
	})
	return out
}

// SelectJournal picks the result whose display name equals title exactly,
// at any position in the list, falling back to the first result. It returns
// false only for an empty list.
func SelectJournal(results []JournalResult, title string) (JournalResult, bool) {
	if len(results) == 0 {
		return JournalResult{}, false
	}
	want := collapse(title)
	for _, r := range results {
		if r.Name == want {
			return r, true
		}
	}
	return results[0], true
}

// Metric cell occurrences in the registry's metric tables.
const (
	quartileCell     = 0
	sjrCell          = 1
	impactFactorCell = 3
)

// Journal reads a journal detail page.
func (s RegistrySelectors) Journal(p *Page) record.Journal {
	root := p.Root()
	j := record.Journal{
		Name:      Text(root, s.Name).Or(""),
		Publisher: Text(s.section(root, "Publisher"), s.SectionValue+" a").Or(""),
		ISSN:      Text(s.section(root, "ISSN"), s.SectionValue).Or(""),
		Coverage:  Text(s.section(root, "Coverage"), s.SectionValue).Or(""),
		HIndex:    Int(s.section(root, "H-Index"), s.SectionValue).Ptr(),
		Scope:     s.scope(root).Or(""),
	}

	cells := s.metricCells(root)
	if len(cells) > quartileCell {
		j.Quartile = cells[quartileCell]
	}
	if len(cells) > sjrCell {
		j.SJR = Decimal(Present(cells[sjrCell])).Ptr()
	}
	if len(cells) > impactFactorCell {
		j.ImpactFactor = Decimal(Present(cells[impactFactorCell])).Ptr()
	}
	return j
}

// section finds the block whose heading reads exactly heading.
func (s RegistrySelectors) section(root *goquery.Selection, heading string) *goquery.Selection {
	if root == nil {
		return nil
	}
	sec := root.Find(s.Section).FilterFunction(func(_ int, div *goquery.Selection) bool {
		return div.ChildrenFiltered(s.SectionHeading).FilterFunction(func(_ int, h *goquery.Selection) bool {
			return collapse(h.Text()) == heading
		}).Length() > 0
	}).First()
	if sec.Length() == 0 {
		return nil
	}
	return sec
}

// metricCells returns, for every metric table in document order, the third
// cell of its last body row. Tables whose last row is shorter are skipped.
func (s RegistrySelectors) metricCells(root *goquery.Selection) []string {
	if root == nil {
		return nil
	}
	var cells []string
	root.Find(s.MetricTable).Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tbody tr")
		if rows.Length() == 0 {
			rows = table.Find("tr")
		}
		cell := rows.Last().ChildrenFiltered("td").Eq(2)
		if cell.Length() == 0 {
			return
		}
		cells = append(cells, collapse(cell.Text()))
	})
	return cells
}

// scope reads the thematic scope paragraph without its heading.
func (s RegistrySelectors) scope(root *goquery.Selection) Field[string] {
	if root == nil {
		return Absent[string]()
	}
	block := root.Find(s.Scope).First()
	if block.Length() == 0 {
		return Absent[string]()
	}
	body := block.Clone()
	body.ChildrenFiltered(s.SectionHeading).Remove()
	return textOf(body)
}
