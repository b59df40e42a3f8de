package author

import (
	"reflect"
	"testing"
)

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "Jane Doe", `"Jane Doe"`},
		{"trims whitespace", "  Jane Doe ", `"Jane Doe"`},
		{"quotes in", "Jane in Paris", `"Jane "in" Paris"`},
		{"in as prefix is untouched", "Ingrid Bergman", `"Ingrid Bergman"`},
		{"empty", "", `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanQuery(tt.input); got != tt.want {
				t.Errorf("CleanQuery(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitCoAuthors(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"John Smith; Jane Doe", []string{"John Smith", "Jane Doe"}},
		{"John Smith;;  ", []string{"John Smith"}},
		{"  Solo  ", []string{"Solo"}},
		{`Lab A\; Lab B; Jo`, []string{"Lab A; Lab B", "Jo"}},
		{`C:\\dir; X`, []string{`C:\dir`, "X"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := SplitCoAuthors(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitCoAuthors(%q) = %#v, want %#v", tt.input, got, tt.want)
		}
	}
}

func TestJoinCoAuthors_RoundTrip(t *testing.T) {
	names := []string{"John Smith", "Jane Doe"}
	joined := JoinCoAuthors(names)
	if joined != "John Smith; Jane Doe" {
		t.Fatalf("JoinCoAuthors() = %q", joined)
	}
	if got := SplitCoAuthors(joined); !reflect.DeepEqual(got, names) {
		t.Errorf("round trip = %#v, want %#v", got, names)
	}
}

func TestJoinCoAuthors_EscapesSeparator(t *testing.T) {
	names := []string{"Smith; J.", `back\slash`, "Jane Doe"}
	joined := JoinCoAuthors(names)
	if joined != `Smith\; J.; back\\slash; Jane Doe` {
		t.Fatalf("JoinCoAuthors() = %q", joined)
	}
	if got := SplitCoAuthors(joined); !reflect.DeepEqual(got, names) {
		t.Errorf("round trip = %#v, want %#v", got, names)
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"A", " A", "B", "", "A"})
	want := []string{"A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe() = %#v, want %#v", got, want)
	}
	if Dedupe([]string{" "}) != nil {
		t.Error("Dedupe of blanks should be nil")
	}
}
