package segment

import "fmt"

// Kind is the role of a grapheme inside its cluster.
type Kind uint8

const (
	KindArchigrapheme Kind = iota + 1
	KindDiacritic
	KindVowel
)

func (k Kind) String() string {
	switch k {
	case KindArchigrapheme:
		return "archigrapheme"
	case KindDiacritic:
		return "diacritic"
	case KindVowel:
		return "vowel"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "archigrapheme":
		*k = KindArchigrapheme
	case "diacritic":
		*k = KindDiacritic
	case "vowel":
		*k = KindVowel
	default:
		return fmt.Errorf("unknown grapheme kind %q", b)
	}
	return nil
}

// CertaintyMedium marks a grapheme read inside an unclear span.
const CertaintyMedium = "medium"

// Word is one flattened transcription word.
type Word struct {
	Ordinal   string `json:"n"`
	Text      string `json:"text"`
	Uncertain bool   `json:"uncertain,omitempty"`
}

// Grapheme is one emitted glyph. RefID points into the character
// declaration: the table id for archigraphemes, the dot descriptor for
// diacritics.
type Grapheme struct {
	Kind      Kind     `json:"kind"`
	Position  Position `json:"position,omitempty"`
	RefID     string   `json:"ref,omitempty"`
	Text      string   `json:"text"`
	Certainty string   `json:"cert,omitempty"`
}

// Cluster is an archigrapheme with its optional dot diacritic and any
// vowel marks, in source order.
type Cluster struct {
	Archigrapheme Grapheme   `json:"archigrapheme"`
	Diacritic     *Grapheme  `json:"diacritic,omitempty"`
	Vowels        []Grapheme `json:"vowels,omitempty"`
}

// Graphemes returns the cluster flattened in emission order.
func (c Cluster) Graphemes() []Grapheme {
	out := make([]Grapheme, 0, 2+len(c.Vowels))
	out = append(out, c.Archigrapheme)
	if c.Diacritic != nil {
		out = append(out, *c.Diacritic)
	}
	return append(out, c.Vowels...)
}
