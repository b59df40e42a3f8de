package pdf

import (
	"regexp"
	"strings"
)

// Manuscript is the recommender-facing view of a paper.
type Manuscript struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Keywords string `json:"keywords,omitempty"`
}

// maxAbstractLength caps abstracts that run on because no end marker was
// found.
const maxAbstractLength = 3000

var (
	abstractStart = regexp.MustCompile(`(?i)^\s*(abstract|summary|résumé|resume)([\s.:—-]+|$)`)
	keywordsStart = regexp.MustCompile(`(?i)^\s*(key\s*words|index terms|mots[\s-]cl[ée]s)([\s.:—-]+|$)`)
	sectionStart  = regexp.MustCompile(`(?i)^\s*((\d+|[ivx]+)\.?\s+)?(introduction|background|methods|materials)\b`)
)

// ParseManuscript splits extracted page text into title, abstract and
// keywords. Any part it cannot find is left empty.
func ParseManuscript(text string) Manuscript {
	lines := strings.Split(text, "\n")
	m := Manuscript{Title: findTitle(lines)}

	var abstract []string
	inAbstract := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if loc := keywordsStart.FindStringIndex(line); loc != nil {
			if m.Keywords == "" {
				m.Keywords = strings.TrimSpace(line[loc[1]:])
			}
			inAbstract = false
			continue
		}
		if sectionStart.MatchString(line) {
			if inAbstract || len(abstract) > 0 {
				break
			}
			continue
		}
		if loc := abstractStart.FindStringIndex(line); loc != nil && len(abstract) == 0 {
			inAbstract = true
			line = strings.TrimSpace(line[loc[1]:])
		}
		if inAbstract && line != "" {
			abstract = append(abstract, line)
		}
	}

	if len(abstract) == 0 {
		abstract = leadParagraph(lines, m.Title)
	}
	m.Abstract = truncate(strings.Join(abstract, " "), maxAbstractLength)
	return m
}

// leadParagraph returns the lines between the title and the first section
// heading, for manuscripts without an abstract heading.
func leadParagraph(lines []string, title string) []string {
	var out []string
	afterTitle := title == ""
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if !afterTitle {
			afterTitle = line == title
			continue
		}
		if sectionStart.MatchString(line) {
			break
		}
		if line == "" || keywordsStart.MatchString(line) || isHeaderLine(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// findTitle returns the first substantial line that is not a running
// header.
func findTitle(lines []string) string {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) && !abstractStart.MatchString(line) {
			return line
		}
	}
	return ""
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	// Common header patterns
	if strings.Contains(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") || strings.Contains(lower, "preprint") {
		return true
	}
	if strings.Contains(lower, "article") && strings.Contains(lower, "published") {
		return true
	}
	if strings.HasPrefix(lower, "doi") || strings.HasPrefix(lower, "http") {
		return true
	}
	return false
}

// truncate shortens s to at most n bytes, cutting at a word boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := strings.LastIndexByte(s[:n], ' ')
	if cut <= 0 {
		cut = n
	}
	return s[:cut]
}
