package markup

import (
	"errors"
	"strings"
	"testing"

	"github.com/karina-jasmin/quran-collate/pkg/segment"
)

func flatten(t *testing.T, xml string) []segment.Word {
	t.Helper()
	doc, err := ParseBytes([]byte(xml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	words, err := Flatten(doc, nil)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	return words
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain", `<w n="1">بسم</w>`, "بسم"},
		{"surrounding space", `<w n="1">  بسم
		</w>`, "بسم"},
		{"supplied dropped", `<w n="1">ب<supplied>س</supplied>م</w>`, "بم"},
		{"unclear wrapped", `<w n="1">ب<unclear>س</unclear>م</w>`, "ب[س]م"},
		{"hi wrapped", `<w n="1">ب<hi>س</hi>م</w>`, "ب{س}م"},
		{"del wrapped", `<w n="1">ب<del>س</del>م</w>`, "ب{س}م"},
		{"other unwrapped", `<w n="1">ب<add>س</add>م</w>`, "بسم"},
		{"own text only", `<w n="1">ب<unclear>س<hi>x</hi>y</unclear>م</w>`, "ب[س]م"},
		{"comment transparent", `<w n="1">ب<!-- note -->س</w>`, "بس"},
		{"cdata", `<w n="1"><![CDATA[بس]]></w>`, "بس"},
		{"break before last letter", `<w n="1">بسم<br/></w>`, "بس%م"},
		{"break keeps marks with letter", `<w n="1">بسمِّ<br/></w>`, "بس%مِّ"},
		{"break keeps markers with letter", `<w n="1">ب<unclear>س</unclear><br/></w>`, "ب[%س]"},
		{"break tail dropped", `<w n="1">بس<br/>م</w>`, "ب%س"},
		{"break without letter", `<w n="1">َ<br/></w>`, "%َ"},
		{"break in empty word", `<w n="1"><br/></w>`, "%"},
		{"single letter break", `<w n="1">ب<br/></w>`, "%ب"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := flatten(t, `<text src="ms">`+tt.body+`</text>`)
			if len(words) != 1 {
				t.Fatalf("words = %v, want one", words)
			}
			if words[0].Text != tt.want {
				t.Errorf("text = %q, want %q", words[0].Text, tt.want)
			}
			if words[0].Ordinal != "1" || words[0].Uncertain {
				t.Errorf("word = %+v", words[0])
			}
		})
	}
}

func TestFlatten_WordUnclear(t *testing.T) {
	words := flatten(t, `<text><w n="2" type="unclear">ب<unclear>س</unclear></w></text>`)
	if len(words) != 1 {
		t.Fatalf("words = %v", words)
	}
	if words[0].Text != "[ب[س]]" || !words[0].Uncertain {
		t.Errorf("word = %+v", words[0])
	}
}

func TestFlatten_DropsEmptyWords(t *testing.T) {
	words := flatten(t, `<text>
		<w n="1">ب</w>
		<w n="2"><supplied>س</supplied></w>
		<w n="3">   </w>
		<w n="4">م</w>
	</text>`)
	var got []string
	for _, w := range words {
		got = append(got, w.Ordinal+":"+w.Text)
	}
	if strings.Join(got, " ") != "1:ب 4:م" {
		t.Errorf("words = %v", got)
	}
}

func TestFlatten_MissingOrdinal(t *testing.T) {
	doc, err := ParseBytes([]byte(`<text><w n="1">ب</w><w>س</w></text>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = Flatten(doc, nil)
	if !errors.Is(err, segment.ErrMalformedWord) {
		t.Errorf("err = %v, want ErrMalformedWord", err)
	}

	// An empty word never needs an ordinal.
	doc, _ = ParseBytes([]byte(`<text><w><supplied>س</supplied></w></text>`))
	if _, err := Flatten(doc, nil); err != nil {
		t.Errorf("empty word without n: %v", err)
	}
}

func TestFlatten_Clean(t *testing.T) {
	doc, err := ParseBytes([]byte(`<text><w n="1">xبx<unclear>xسx</unclear>xمx</w></text>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	words, err := Flatten(doc, func(s string) string { return strings.ReplaceAll(s, "x", " ") })
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if words[0].Text != "ب[س]م" {
		t.Errorf("text = %q", words[0].Text)
	}
}

func TestParse_SourceAndNamespace(t *testing.T) {
	doc, err := ParseBytes([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<text xmlns="http://www.tei-c.org/ns/1.0" src="Ms-1234">
  <line><w n="1">ب<unclear>س</unclear></w></line>
  <line><w n="1">م</w><w n="2">ل</w></line>
</text>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Source != "Ms-1234" {
		t.Errorf("Source = %q", doc.Source)
	}
	words, err := Flatten(doc, nil)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(words) != 3 || words[0].Text != "ب[س]" || words[2].Ordinal != "2" {
		t.Errorf("words = %+v", words)
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := ParseBytes([]byte(`<text><w n="1">ب</x></text>`))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("err = %v, want ErrInvalidDocument", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"supplied": KindSupplied,
		"unclear":  KindUnclear,
		"hi":       KindHighlighted,
		"del":      KindDeleted,
		"br":       KindLineBreak,
		"add":      KindOther,
		"":         KindOther,
	}
	for name, want := range tests {
		if got := KindOf(name); got != want {
			t.Errorf("KindOf(%q) = %v, want %v", name, got, want)
		}
	}
}
