package segment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/karina-jasmin/quran-collate/data"
	"github.com/karina-jasmin/quran-collate/pkg/tables"
	"github.com/karina-jasmin/quran-collate/pkg/tables/tablestest"
)

// describe renders the archigraphemes of clusters as "id/position[?]".
func describe(clusters []Cluster) string {
	parts := make([]string, len(clusters))
	for i, c := range clusters {
		g := c.Archigrapheme
		parts[i] = g.RefID + "/" + g.Position.String()
		if g.Certainty == CertaintyMedium {
			parts[i] += "?"
		}
	}
	return strings.Join(parts, " ")
}

func TestSegment_Positions(t *testing.T) {
	e := New(tablestest.Load(t))

	tests := []struct {
		name string
		text string
		want string
	}{
		{"three letters", "BSM", "b1/initial s1/medial m2/final"},
		{"word break forces final", "B%SM", "b1/initial s1/final m1/initial"},
		{"single letter", "B", "b1/initial"},
		{"single two-context letter", "M", "m1/initial"},
		{"two letters", "BM", "b1/initial m2/final"},
		{"bracket-local unclear", "[SM]", "s1/initial? m2/final?"},
		{"partial unclear", "S[M]", "s1/initial m2/final?"},
		{"modified span is silent", "B{S}M", "b1/initial s1/medial m2/final"},
		{"vowels do not count", "BSَMِ", "b1/initial s1/medial m2/final"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clusters, err := e.Segment(Word{Ordinal: "1", Text: tt.text})
			if err != nil {
				t.Fatalf("Segment(%q): %v", tt.text, err)
			}
			if got := describe(clusters); got != tt.want {
				t.Errorf("Segment(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestSegment_ArchigraphemeCountMatchesLetters(t *testing.T) {
	e := New(tablestest.Load(t))

	for _, text := range []string{"B", "BSM", "B%SM", "[SM]", "{B}Sَ%M", "SَّSSSM", "[B]%[S]"} {
		clusters, err := e.Segment(Word{Ordinal: "1", Text: text})
		if err != nil {
			t.Fatalf("Segment(%q): %v", text, err)
		}
		if len(clusters) != CountLetters(text) {
			t.Errorf("Segment(%q) emitted %d clusters, want %d", text, len(clusters), CountLetters(text))
		}
		for _, c := range clusters {
			if c.Archigrapheme.Kind != KindArchigrapheme {
				t.Errorf("Segment(%q) cluster kind = %v", text, c.Archigrapheme.Kind)
			}
		}
	}
}

func TestSegment_WordUncertain(t *testing.T) {
	e := New(tablestest.Load(t))

	clusters, err := e.Segment(Word{Ordinal: "3", Text: "BS", Uncertain: true})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if got := describe(clusters); got != "b1/initial? s1/final?" {
		t.Errorf("got %s", got)
	}
}

func TestSegment_Vowels(t *testing.T) {
	e := New(tablestest.Load(t))

	clusters, err := e.Segment(Word{Ordinal: "1", Text: "BَSَّ"})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(clusters))
	}
	if len(clusters[0].Vowels) != 1 || clusters[0].Vowels[0].Text != "َ" {
		t.Errorf("first vowels = %+v", clusters[0].Vowels)
	}
	if len(clusters[1].Vowels) != 2 || clusters[1].Vowels[0].Text != "ّ" || clusters[1].Vowels[1].Text != "َ" {
		t.Errorf("second vowels = %+v", clusters[1].Vowels)
	}
	for _, v := range clusters[1].Vowels {
		if v.Kind != KindVowel || v.Position != PositionNone || v.RefID != "" {
			t.Errorf("vowel grapheme = %+v", v)
		}
	}
}

func TestSegment_OrphanVowel(t *testing.T) {
	e := New(tablestest.Load(t))

	_, err := e.Segment(Word{Ordinal: "7", Text: "[َB]"})
	if !errors.Is(err, ErrMalformedWord) {
		t.Fatalf("err = %v, want ErrMalformedWord", err)
	}
	var mw *MalformedWordError
	if !errors.As(err, &mw) || mw.Ordinal != "7" {
		t.Errorf("err = %#v", err)
	}
}

func TestSegment_Diacritic(t *testing.T) {
	e := New(tablestest.Load(t))

	clusters, err := e.Segment(Word{Ordinal: "1", Text: "BT"})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if clusters[0].Diacritic != nil {
		t.Errorf("undotted letter got diacritic %+v", clusters[0].Diacritic)
	}
	d := clusters[1].Diacritic
	if d == nil {
		t.Fatal("expected a diacritic on T")
	}
	if d.Kind != KindDiacritic || d.RefID != "one-dot-above" || d.Text != "'" || d.Position != Final {
		t.Errorf("diacritic = %+v", d)
	}
	if got := len(clusters[1].Graphemes()); got != 2 {
		t.Errorf("graphemes = %d, want 2", got)
	}
}

// Dots on both sides: the below descriptor replaces the above one. This
// pins current behaviour; the above dots are lost.
func TestSegment_DiacriticBelowOverwritesAbove(t *testing.T) {
	e := New(tablestest.Load(t))

	clusters, err := e.Segment(Word{Ordinal: "1", Text: "D"})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	d := clusters[0].Diacritic
	if d == nil || d.RefID != "one-dot-below" || d.Text != "." {
		t.Errorf("diacritic = %+v, want one-dot-below", d)
	}
}

func TestSegment_MissingDiacritic(t *testing.T) {
	e := New(tablestest.Load(t))

	_, err := e.Segment(Word{Ordinal: "4", Text: "BX"})
	var md *MissingDiacriticError
	if !errors.As(err, &md) {
		t.Fatalf("err = %v, want *MissingDiacriticError", err)
	}
	if md.Descriptor != "three-dots-below" || md.Ordinal != "4" {
		t.Errorf("err = %+v", md)
	}
	if !errors.Is(err, ErrMissingDiacritic) {
		t.Error("errors.Is(ErrMissingDiacritic) = false")
	}
}

func TestSegment_UnknownCharacter(t *testing.T) {
	e := New(tablestest.Load(t))

	clusters, err := e.Segment(Word{Ordinal: "9", Text: "BQS"})
	if clusters != nil {
		t.Errorf("clusters = %v, want none", clusters)
	}
	var uc *UnknownCharacterError
	if !errors.As(err, &uc) {
		t.Fatalf("err = %v, want *UnknownCharacterError", err)
	}
	if uc.Char != 'Q' || uc.Ordinal != "9" {
		t.Errorf("err = %+v", uc)
	}
	if !strings.Contains(err.Error(), "U+0051") {
		t.Errorf("message %q should name the code point", err.Error())
	}
}

func TestSegment_KafFold(t *testing.T) {
	s, err := tables.Load(data.Tables())
	if err != nil {
		t.Fatalf("Load default tables: %v", err)
	}
	e := New(s)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"arabic kaf folds unless final", "كك", "kaf/initial kaf-final/final"},
		{"keheh stays keheh", "کک", "kaf/initial kaf/final"},
		{"medial kaf", "بكت", "ba/initial kaf/medial ta/final"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clusters, err := e.Segment(Word{Ordinal: "1", Text: tt.text})
			if err != nil {
				t.Fatalf("Segment: %v", err)
			}
			if got := describe(clusters); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSegment_DefaultTablesTwoContext(t *testing.T) {
	s, err := tables.Load(data.Tables())
	if err != nil {
		t.Fatalf("Load default tables: %v", err)
	}
	e := New(s)

	clusters, err := e.Segment(Word{Ordinal: "1", Text: "نين"})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if got := describe(clusters); got != "nun-inmed/initial ya-inmed/medial nun-finis/final" {
		t.Errorf("got %s", got)
	}
	if d := clusters[1].Diacritic; d == nil || d.RefID != "two-dots-below" {
		t.Errorf("ya diacritic = %+v", d)
	}
}

func TestSegmentAll(t *testing.T) {
	set := tablestest.Load(t)

	var words []Word
	for i := range 50 {
		words = append(words, Word{Ordinal: fmt.Sprint(i), Text: []string{"BSM", "B%SM", "[SM]", "T"}[i%4]})
	}

	sequential, err := New(set).SegmentAll(context.Background(), words)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	parallel, err := New(set, WithWorkers(8)).SegmentAll(context.Background(), words)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if describe(sequential) != describe(parallel) {
		t.Error("parallel segmentation changed the cluster order")
	}
	if len(sequential) != 3*13+3*13+2*12+12 {
		t.Errorf("clusters = %d", len(sequential))
	}
}

func TestSegmentAll_FirstErrorWins(t *testing.T) {
	words := []Word{
		{Ordinal: "1", Text: "BSM"},
		{Ordinal: "2", Text: "Q"},
		{Ordinal: "3", Text: "X"},
		{Ordinal: "4", Text: "S"},
	}
	for _, workers := range []int{1, 4} {
		out, err := New(tablestest.Load(t), WithWorkers(workers)).SegmentAll(context.Background(), words)
		if out != nil {
			t.Errorf("workers=%d: partial output %v", workers, out)
		}
		var uc *UnknownCharacterError
		if !errors.As(err, &uc) || uc.Ordinal != "2" {
			t.Errorf("workers=%d: err = %v, want unknown character in word 2", workers, err)
		}
	}
}

func TestSegmentAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	words := []Word{{Ordinal: "1", Text: "B"}, {Ordinal: "2", Text: "S"}}
	for _, workers := range []int{1, 4} {
		if _, err := New(tablestest.Load(t), WithWorkers(workers)).SegmentAll(ctx, words); !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: err = %v, want context.Canceled", workers, err)
		}
	}
}
