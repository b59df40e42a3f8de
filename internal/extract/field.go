// Package extract reads entity fields out of a loaded page snapshot.
//
// Every adapter degrades per field: a selector that matches nothing yields an
// absent Field, never an error, so one missing value never blocks the rest of
// a record.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/matsen/jrec/internal/record"
)

// Field is the outcome of reading one value: either present with Value, or
// absent.
type Field[T any] struct {
	Value T
	OK    bool
}

// Present wraps a successfully read value.
func Present[T any](v T) Field[T] {
	return Field[T]{Value: v, OK: true}
}

// Absent is the zero Field.
func Absent[T any]() Field[T] {
	return Field[T]{}
}

// Or returns the value, or def when absent.
func (f Field[T]) Or(def T) T {
	if !f.OK {
		return def
	}
	return f.Value
}

// Ptr returns a pointer to the value, or nil when absent.
func (f Field[T]) Ptr() *T {
	if !f.OK {
		return nil
	}
	v := f.Value
	return &v
}

// Text reads the collapsed text of the first node matching sel under s.
// Empty text counts as absent.
func Text(s *goquery.Selection, sel string) Field[string] {
	if s == nil {
		return Absent[string]()
	}
	return textOf(s.Find(sel).First())
}

// Attr reads attribute name of the first node matching sel under s.
func Attr(s *goquery.Selection, sel, name string) Field[string] {
	if s == nil {
		return Absent[string]()
	}
	v, ok := s.Find(sel).First().Attr(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return Absent[string]()
	}
	return Present(v)
}

// Texts reads the collapsed text of every node matching sel, skipping blanks.
func Texts(s *goquery.Selection, sel string) []string {
	if s == nil {
		return nil
	}
	var out []string
	s.Find(sel).Each(func(_ int, n *goquery.Selection) {
		if t := textOf(n); t.OK {
			out = append(out, t.Value)
		}
	})
	return out
}

// Count converts a text field into a count ("1,234" → 1234).
func Count(f Field[string]) Field[int] {
	if !f.OK {
		return Absent[int]()
	}
	if n := record.ParseCount(f.Value); n != nil {
		return Present(*n)
	}
	return Absent[int]()
}

// Int reads the first node matching sel as a count.
func Int(s *goquery.Selection, sel string) Field[int] {
	return Count(Text(s, sel))
}

// Decimal converts a text field into a float ("3,412" → 3.412).
func Decimal(f Field[string]) Field[float64] {
	if !f.OK {
		return Absent[float64]()
	}
	if v := record.ParseDecimal(f.Value); v != nil {
		return Present(*v)
	}
	return Absent[float64]()
}

func textOf(s *goquery.Selection) Field[string] {
	if s.Length() == 0 {
		return Absent[string]()
	}
	t := collapse(s.Text())
	if t == "" {
		return Absent[string]()
	}
	return Present(t)
}

// collapse normalizes runs of whitespace to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
