// Package author handles author display names: building search queries from
// them and reading co-author lists.
package author

import "strings"

// CoAuthorSeparator joins co-author names in tabular storage.
const CoAuthorSeparator = "; "

// CleanQuery turns a display name into a phrase query for the profile
// search box.
//
// The name is trimmed and wrapped in double quotes so the engine matches it
// as a phrase. A standalone "in" is quoted as well, otherwise the search
// engine reads it as an operator ("Jane in Paris" → "Jane "in" Paris").
func CleanQuery(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " in ", ` "in" `)
	return `"` + name + `"`
}

// SplitCoAuthors parses a stored co-author list. Names are separated by ";"
// and trimmed; empty entries are dropped. A backslash escapes the next
// character, so "\;" is a literal semicolon inside a name.
//
// Examples:
//   - "John Smith; Jane Doe" → ["John Smith", "Jane Doe"]
//   - "John Smith;;  "       → ["John Smith"]
//   - `Lab A\; Lab B; Jo`   → ["Lab A; Lab B", "Jo"]
//   - ""                     → nil
func SplitCoAuthors(s string) []string {
	var names []string
	var cur strings.Builder
	flush := func() {
		if part := strings.TrimSpace(cur.String()); part != "" {
			names = append(names, part)
		}
		cur.Reset()
	}

	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ';':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return names
}

var coAuthorEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`)

// JoinCoAuthors is the inverse of SplitCoAuthors.
func JoinCoAuthors(names []string) string {
	escaped := make([]string, len(names))
	for i, n := range names {
		escaped[i] = coAuthorEscaper.Replace(n)
	}
	return strings.Join(escaped, CoAuthorSeparator)
}

// Dedupe removes repeated names (exact match after trimming) keeping the
// first occurrence, and drops blanks.
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
