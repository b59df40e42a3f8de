package record

import (
	"strconv"
	"strings"
)

// ParseCount parses a rendered count such as "1,234", "1 234" or "87*".
// It returns nil when the text holds no number.
func ParseCount(s string) *int {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',' || r == ' ' || r == '\u00a0' || r == '\u202f' || r == '*':
			// thousands separators and the "merged citations" marker
		default:
			if b.Len() > 0 {
				return atoi(b.String())
			}
		}
	}
	return atoi(b.String())
}

func atoi(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ParseDecimal parses a rendered decimal. Both "3.412" and "3,412" are read
// as 3.412; registry pages use either separator depending on locale. When
// both appear the last one is the decimal mark and the other groups
// thousands, so "1,234.5" and "1.234,5" are both 1234.5.
func ParseDecimal(s string) *float64 {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '\u202f' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// FormatInt renders an optional int for tabular output ("" when absent).
func FormatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// FormatFloat renders an optional float for tabular output ("" when absent).
func FormatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }
