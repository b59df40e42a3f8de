package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/matsen/jrec/internal/author"
	"github.com/matsen/jrec/internal/record"
)

// ScholarSelectors locate fields on the scholar-profile site. They follow the
// current markup of the site and are expected to drift.
type ScholarSelectors struct {
	SearchInput   string `yaml:"search_input"`
	ProfileAnchor string `yaml:"profile_anchor"`

	Name        string `yaml:"name"`
	Affiliation string `yaml:"affiliation"`
	// Metric cells in table order: citations (all), citations (recent),
	// h-index (all), h-index (recent), ...
	Metrics string `yaml:"metrics"`

	CoAuthorOpen    string `yaml:"coauthor_open"`
	CoAuthorDialog  string `yaml:"coauthor_dialog"`
	CoAuthorClose   string `yaml:"coauthor_close"`
	CoAuthorSidebar string `yaml:"coauthor_sidebar"`

	ArticleRow       string `yaml:"article_row"`
	ArticleLink      string `yaml:"article_link"`
	ArticleCitations string `yaml:"article_citations"`
	ArticleYear      string `yaml:"article_year"`
	MoreButton       string `yaml:"more_button"`

	DetailReady   string `yaml:"detail_ready"`
	DetailTitle   string `yaml:"detail_title"`
	DetailRow     string `yaml:"detail_row"`
	DetailLabel   string `yaml:"detail_label"`
	DetailValue   string `yaml:"detail_value"`
	DetailSummary string `yaml:"detail_summary"`
}

// DefaultScholar returns selectors for Google Scholar profile pages.
func DefaultScholar() ScholarSelectors {
	return ScholarSelectors{
		SearchInput:   `input[name="q"]`,
		ProfileAnchor: `h4 a[href*="/citations?user="]`,

		Name:        "#gsc_prf_in",
		Affiliation: ".gsc_prf_ila",
		Metrics:     "td.gsc_rsb_std",

		CoAuthorOpen:    "#gsc_coauth_opn",
		CoAuthorDialog:  "h3.gs_ai_name a",
		CoAuthorClose:   "#gsc_md_cod-x",
		CoAuthorSidebar: "span.gsc_rsb_a_desc a",

		ArticleRow:       "tr.gsc_a_tr",
		ArticleLink:      "a.gsc_a_at",
		ArticleCitations: ".gsc_a_ac",
		ArticleYear:      "span.gsc_a_h.gsc_a_hc",
		MoreButton:       "#gsc_bpf_more",

		DetailReady:   ".gsh_csp",
		DetailTitle:   ".gsc_oci_title_link",
		DetailRow:     "#gsc_oci_table .gs_scl",
		DetailLabel:   ".gsc_oci_field",
		DetailValue:   ".gsc_oci_value",
		DetailSummary: "#gsc_oci_descr div",
	}
}

// ProfileLink returns the absolute URL of the first profile in a search
// result page.
func (s ScholarSelectors) ProfileLink(p *Page) Field[string] {
	href := Attr(p.Root(), s.ProfileAnchor, "href")
	if !href.OK {
		return href
	}
	return Present(p.Resolve(href.Value))
}

// Author reads an author profile. The ID comes from the profile URL; every
// other field may be absent. Co-authors are read from the sidebar; callers
// that opened the full co-author dialog should overwrite them with
// DialogCoAuthors.
func (s ScholarSelectors) Author(p *Page) record.Author {
	root := p.Root()
	a := record.Author{
		ID:          AuthorIDFromURL(p.URL).Or(""),
		Name:        Text(root, s.Name).Or(""),
		Affiliation: Text(root, s.Affiliation).Or(""),
		CoAuthors:   s.SidebarCoAuthors(p),
	}

	// The metrics table is only trusted when it has its full shape.
	if metrics := Texts(root, s.Metrics); len(metrics) >= 4 {
		a.Citations = Count(Present(metrics[0])).Ptr()
		a.HIndex = Count(Present(metrics[2])).Ptr()
	}
	return a
}

// HasCoAuthorDialog reports whether the profile offers a "view all
// co-authors" control.
func (s ScholarSelectors) HasCoAuthorDialog(p *Page) bool {
	return p.Has(s.CoAuthorOpen)
}

// CoAuthors reads the co-author names from the opened dialog when modal is
// set, otherwise from the sidebar.
func (s ScholarSelectors) CoAuthors(p *Page, modal bool) []string {
	if modal {
		return s.DialogCoAuthors(p)
	}
	return s.SidebarCoAuthors(p)
}

// SidebarCoAuthors reads the short co-author list shown beside a profile.
func (s ScholarSelectors) SidebarCoAuthors(p *Page) []string {
	return author.Dedupe(Texts(p.Root(), s.CoAuthorSidebar))
}

// DialogCoAuthors reads the names from an opened co-author dialog.
func (s ScholarSelectors) DialogCoAuthors(p *Page) []string {
	return author.Dedupe(Texts(p.Root(), s.CoAuthorDialog))
}

// ArticleRow is one line of a profile's publication listing.
type ArticleRow struct {
	URL       Field[string] // detail page
	Title     Field[string]
	Citations Field[int]
	Year      Field[int]
}

// ArticleRows reads every publication row currently rendered on a profile.
func (s ScholarSelectors) ArticleRows(p *Page) []ArticleRow {
	root := p.Root()
	if root == nil {
		return nil
	}
	var rows []ArticleRow
	root.Find(s.ArticleRow).Each(func(_ int, row *goquery.Selection) {
		r := ArticleRow{
			Title:     Text(row, s.ArticleLink),
			Citations: Int(row, s.ArticleCitations),
			Year:      Int(row, s.ArticleYear),
		}
		if href := Attr(row, s.ArticleLink, "href"); href.OK {
			r.URL = Present(p.Resolve(href.Value))
		}
		rows = append(rows, r)
	})
	return rows
}

// MoreEnabled reports whether the "show more" control exists and is not
// disabled.
func (s ScholarSelectors) MoreEnabled(p *Page) bool {
	root := p.Root()
	if root == nil {
		return false
	}
	btn := root.Find(s.MoreButton).First()
	if btn.Length() == 0 {
		return false
	}
	_, disabled := btn.Attr("disabled")
	return !disabled
}

// ArticleDetail holds the fields of a publication detail view.
type ArticleDetail struct {
	Title      Field[string]
	Authors    Field[string]
	Source     Field[string]
	VenueLabel Field[string]
	Summary    Field[string]
	Link       Field[string]
}

// venueLabels are detail-row labels that name the publication venue.
var venueLabels = []string{"journal", "conference", "proceedings", "book", "source", "revue"}

// ArticleDetail reads a publication detail view.
//
// The venue row is located by its label; when no known label is present the
// third row is used, which is where the site places the venue for most
// publication types.
func (s ScholarSelectors) ArticleDetail(p *Page) ArticleDetail {
	root := p.Root()
	d := ArticleDetail{
		Title:   Text(root, s.DetailTitle),
		Link:    Attr(root, s.DetailTitle, "href"),
		Summary: Text(root, s.DetailSummary),
	}
	if d.Link.OK {
		d.Link = Present(p.Resolve(d.Link.Value))
	}
	if root == nil {
		return d
	}

	rows := root.Find(s.DetailRow)
	if rows.Length() > 0 {
		d.Authors = Text(rows.First(), s.DetailValue)
	}

	venue := rows.FilterFunction(func(_ int, row *goquery.Selection) bool {
		label := strings.ToLower(Text(row, s.DetailLabel).Or(""))
		for _, v := range venueLabels {
			if strings.Contains(label, v) {
				return true
			}
		}
		return false
	}).First()
	if venue.Length() == 0 && rows.Length() >= 3 {
		venue = rows.Eq(2)
	}
	if venue.Length() > 0 {
		d.VenueLabel = Text(venue, s.DetailLabel)
		d.Source = Text(venue, s.DetailValue)
	}
	return d
}

// Article assembles an Article from a listing row and, when it could be
// loaded, the row's detail view.
func Article(row ArticleRow, detail *ArticleDetail) record.Article {
	a := record.Article{
		URL:       row.URL.Or(""),
		Title:     row.Title.Or(""),
		Citations: row.Citations.Ptr(),
		Year:      row.Year.Ptr(),
	}
	if detail == nil {
		return a
	}
	if detail.Title.OK {
		a.Title = detail.Title.Value
	}
	a.Authors = detail.Authors.Or("")
	a.Source = detail.Source.Or("")
	a.Summary = detail.Summary.Or("")
	a.Link = detail.Link.Or("")
	a.DocType = record.ClassifyVenue(detail.VenueLabel.Value, detail.VenueLabel.OK)
	return a
}
