package textprep

import (
	"strings"
	"testing"

	"github.com/karina-jasmin/quran-collate/data"
	"github.com/karina-jasmin/quran-collate/pkg/tables"
)

func defaultPreprocessor(t *testing.T) (*Preprocessor, *tables.Set) {
	t.Helper()
	s, err := tables.Load(data.Tables())
	if err != nil {
		t.Fatalf("Load default tables: %v", err)
	}
	return ForTables(s), s
}

func TestClean(t *testing.T) {
	p, _ := defaultPreprocessor(t)

	tests := []struct {
		name, input, want string
	}{
		{"empty", "", ""},
		{"nfkd ligature", "ﻻ", "لا"},
		{"nfkd hamza", "\u0623", "\u0627\u0654"},
		{"farsi yeh", "ی", "ي"},
		{"tatweel", "بـسم", "بسم"},
		{"newline", "بس\nم", "بسم"},
		{"spaces", " ب س م ", "بسم"},
		{"punctuation", "بسم، الله.", "بسمالله"},
		{"verse digits", "الله١٢٣", "الله"},
		{"verse marks fold", "الله۝۞۝١الرحمن", "الله۝الرحمن"},
		{"lone ornament", "الله۞", "الله۝"},
		{"zero width joiner", "ب\u200dس", "بس"},
		{"tashkil kept", "بِسْمِ", "بِسْمِ"},
		{"markers kept", "[ب]{س}", "[ب]{س}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanWord(t *testing.T) {
	p, _ := defaultPreprocessor(t)

	tests := []struct {
		name, input, want string
	}{
		{"empty", "", ""},
		{"word break kept", "ب%سم", "ب%سم"},
		{"break at edges", "%بسم%", "%بسم%"},
		{"all markers", "[ب]{س}%م", "[ب]{س}%م"},
		{"text between markers cleaned", "[ب ـ]%س،م١", "[ب]%سم"},
		{"nfkd inside markers", "{ﻻ}", "{لا}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.CleanWord(tt.input); got != tt.want {
				t.Errorf("CleanWord(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
	// Clean on the same text drops the break.
	if got := p.Clean("ب%سم"); got != "بسم" {
		t.Errorf("Clean(ب%%سم) = %q, want بسم", got)
	}
}

func TestReplace_Order(t *testing.T) {
	p := New([]tables.Replacement{{From: "ab", To: "c"}, {From: "c", To: "d"}})
	// Pairs apply one after the other over the whole text.
	if got := p.Replace("abc"); got != "dd" {
		t.Errorf("Replace = %q, want dd", got)
	}
}

func TestReplace_FixedPointShippedTable(t *testing.T) {
	p, s := defaultPreprocessor(t)

	ok, offending := p.FixedPoint()
	if !ok {
		t.Fatalf("shipped replacement table is not a fixed point: %v", offending)
	}

	var b strings.Builder
	for _, r := range s.Replacements {
		b.WriteString("ب")
		b.WriteString(r.From)
	}
	once := p.Replace(b.String())
	if twice := p.Replace(once); twice != once {
		t.Errorf("second pass changed %q into %q", once, twice)
	}
}

func TestFixedPoint_Detects(t *testing.T) {
	p := New([]tables.Replacement{{From: "a", To: "b"}, {From: "b", To: "c"}})
	ok, offending := p.FixedPoint()
	if ok {
		t.Fatal("expected the table not to be a fixed point")
	}
	if len(offending) != 1 || offending[0].From != "a" {
		t.Errorf("offending = %v, want [a->b]", offending)
	}
}
