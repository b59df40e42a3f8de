package record

import "testing"

func TestClassifyVenue(t *testing.T) {
	tests := []struct {
		label string
		ok    bool
		want  DocType
	}{
		{"Conference", true, DocConference},
		{"Proceedings of the IEEE", true, DocConference},
		{"Journal", true, DocArticle},
		{"Book", true, DocBook},
		{"Source", true, DocSource},
		{"Revue", true, DocRevue},
		{"Patent office", true, DocOther},
		{"", true, DocOther},
		{"Journal", false, ""},
	}
	for _, tt := range tests {
		if got := ClassifyVenue(tt.label, tt.ok); got != tt.want {
			t.Errorf("ClassifyVenue(%q, %v) = %q, want %q", tt.label, tt.ok, got, tt.want)
		}
	}
}

func TestParseDocType(t *testing.T) {
	if got := ParseDocType("conference"); got != DocConference {
		t.Errorf("ParseDocType(conference) = %q", got)
	}
	if got := ParseDocType(""); got != "" {
		t.Errorf("ParseDocType(\"\") = %q, want absent", got)
	}
	if got := ParseDocType("Thesis"); got != DocOther {
		t.Errorf("ParseDocType(Thesis) = %q, want Other", got)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"1234", IntPtr(1234)},
		{"1,234", IntPtr(1234)},
		{"12 345", IntPtr(12345)},
		{"87*", IntPtr(87)},
		{"2019 ", IntPtr(2019)},
		{"", nil},
		{"n/a", nil},
		{"Cited by 12", IntPtr(12)},
	}
	for _, tt := range tests {
		got := ParseCount(tt.in)
		switch {
		case got == nil && tt.want == nil:
		case got == nil || tt.want == nil:
			t.Errorf("ParseCount(%q) = %v, want %v", tt.in, got, tt.want)
		case *got != *tt.want:
			t.Errorf("ParseCount(%q) = %d, want %d", tt.in, *got, *tt.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	if got := ParseDecimal("3.412"); got == nil || *got != 3.412 {
		t.Errorf("ParseDecimal(3.412) = %v", got)
	}
	if got := ParseDecimal("3,412"); got == nil || *got != 3.412 {
		t.Errorf("ParseDecimal(3,412) = %v", got)
	}
	if got := ParseDecimal("-"); got != nil {
		t.Errorf("ParseDecimal(-) = %v, want nil", *got)
	}
}

func TestParseDecimal_ThousandsSeparators(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1,234.5", 1234.5},
		{"12,345,678.25", 12345678.25},
		{"1.234,5", 1234.5},
		{"1 234.5", 1234.5},
		{"1\u00a0234,5", 1234.5},
		{"1,234,567", 1234567},
	}
	for _, tt := range tests {
		got := ParseDecimal(tt.input)
		if got == nil || *got != tt.want {
			t.Errorf("ParseDecimal(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	if FormatInt(nil) != "" || FormatInt(IntPtr(7)) != "7" {
		t.Error("FormatInt mismatch")
	}
	if FormatFloat(nil) != "" || FormatFloat(FloatPtr(1.25)) != "1.25" {
		t.Error("FormatFloat mismatch")
	}
}
