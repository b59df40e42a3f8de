package record

import "strings"

// DocType is a coarse classification of a publication venue. The zero value
// means the venue label could not be read.
type DocType string

const (
	DocConference DocType = "Conference"
	DocArticle    DocType = "Article"
	DocBook       DocType = "Book"
	DocSource     DocType = "Source"
	DocRevue      DocType = "Revue"
	DocOther      DocType = "Other"
)

// ValidDocTypes lists every non-empty DocType.
var ValidDocTypes = []DocType{DocConference, DocArticle, DocBook, DocSource, DocRevue, DocOther}

// ClassifyVenue maps the label of a venue row (e.g. "Journal",
// "Conference", "Book") to a DocType. Matching is case-insensitive and
// checked in priority order; ok is false when no label was available.
func ClassifyVenue(label string, ok bool) DocType {
	if !ok {
		return ""
	}
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "conference"), strings.Contains(l, "proceedings"):
		return DocConference
	case strings.Contains(l, "journal"):
		return DocArticle
	case strings.Contains(l, "book"):
		return DocBook
	case strings.Contains(l, "source"):
		return DocSource
	case strings.Contains(l, "revue"):
		return DocRevue
	default:
		return DocOther
	}
}

// ParseDocType reads a stored DocType value. Unknown values map to DocOther,
// an empty string stays absent.
func ParseDocType(s string) DocType {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, d := range ValidDocTypes {
		if strings.EqualFold(s, string(d)) {
			return d
		}
	}
	return DocOther
}
