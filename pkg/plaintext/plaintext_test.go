package plaintext

import (
	"errors"
	"testing"

	"github.com/karina-jasmin/quran-collate/pkg/segment"
	"github.com/karina-jasmin/quran-collate/pkg/tables/tablestest"
)

func TestAssemble(t *testing.T) {
	set := tablestest.Load(t)

	tests := []struct {
		name  string
		words []segment.Word
		opts  Options
		want  string
	}{
		{"empty", nil, Options{}, ""},
		{"single word", []segment.Word{{Ordinal: "1", Text: "BSM"}}, Options{}, "BSMfin"},
		{"separate ordinals", []segment.Word{{Ordinal: "1", Text: "BM"}, {Ordinal: "2", Text: "MS"}}, Options{}, "BMfin MmedS"},
		{"same ordinal joined", []segment.Word{{Ordinal: "1", Text: "BM"}, {Ordinal: "1", Text: "SM"}}, Options{}, "BMmedSMfin"},
		{"markers skipped", []segment.Word{{Ordinal: "1", Text: "[B]{S}M"}}, Options{}, "BSMfin"},
		{"vowels kept", []segment.Word{{Ordinal: "1", Text: "BَMِ"}}, Options{Vowels: true}, "BَMfinِ"},
		{"vowels dropped", []segment.Word{{Ordinal: "1", Text: "BَMِ"}}, Options{}, "BMfin"},
		{"single letter is final", []segment.Word{{Ordinal: "1", Text: "M"}}, Options{}, "Mfin"},
		{"no diacritics", []segment.Word{{Ordinal: "1", Text: "TD"}}, Options{}, "TD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assemble(tt.words, set, tt.opts)
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if got != tt.want {
				t.Errorf("Assemble = %q, want %q", got, tt.want)
			}
		})
	}
}

// A word break forces a final form in segmented output but is ignored
// here: only the last letter of the word is final. Pinned as current
// behaviour.
func TestAssemble_IgnoresWordBreak(t *testing.T) {
	set := tablestest.Load(t)
	words := []segment.Word{{Ordinal: "1", Text: "B%MS"}}

	got, err := Assemble(words, set, Options{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got != "BMmedS" {
		t.Errorf("Assemble = %q, want BMmedS", got)
	}

	clusters, err := segment.New(set).Segment(words[0])
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if clusters[1].Archigrapheme.RefID != "m2" {
		t.Errorf("segmented M = %s, want the final form m2", clusters[1].Archigrapheme.RefID)
	}
}

func TestAssemble_UnknownCharacter(t *testing.T) {
	set := tablestest.Load(t)

	got, err := Assemble([]segment.Word{{Ordinal: "1", Text: "B"}, {Ordinal: "5", Text: "SQ"}}, set, Options{})
	if got != "" {
		t.Errorf("partial output %q", got)
	}
	var uc *segment.UnknownCharacterError
	if !errors.As(err, &uc) || uc.Char != 'Q' || uc.Ordinal != "5" {
		t.Errorf("err = %v", err)
	}
}
