package segment

import (
	"fmt"

	"github.com/karina-jasmin/quran-collate/pkg/tables"
)

// Position is where a letter stands inside its word.
type Position uint8

const (
	PositionNone Position = iota
	Initial
	Medial
	Final
)

func (p Position) String() string {
	switch p {
	case Initial:
		return "initial"
	case Medial:
		return "medial"
	case Final:
		return "final"
	}
	return ""
}

// Context maps a position onto the two lookup contexts of the base table.
func (p Position) Context() tables.Context {
	if p == Final {
		return tables.ContextFinal
	}
	return tables.ContextInitialMedial
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(b []byte) error {
	switch string(b) {
	case "":
		*p = PositionNone
	case "initial":
		*p = Initial
	case "medial":
		*p = Medial
	case "final":
		*p = Final
	default:
		return fmt.Errorf("unknown position %q", b)
	}
	return nil
}

// State is the positional state threaded through a word, one rune at a
// time. Letter and Segment counters are zero-based; LastIndex is the number
// of base letters minus one.
type State struct {
	Letter    int  // letters seen so far in the word
	Segment   int  // letters seen since the last segment start
	LastIndex int  // index of the last letter of the word
	Reset     bool // the next rune starts a new segment
	Unclear   bool // inside [ ]
	Modified  bool // inside { }
}

// NewState returns the starting state for a flattened word.
func NewState(text string) State {
	return State{LastIndex: CountLetters(text) - 1}
}

// StepKind tells what a single rune turned out to be.
type StepKind uint8

const (
	StepMarker StepKind = iota
	StepVowel
	StepLetter
)

// Step describes the rune just consumed.
type Step struct {
	Kind     StepKind
	Position Position // StepLetter only
	Unclear  bool     // the rune stood inside [ ]
}

// Classify returns the position of the next letter and whether the letter
// after it starts a new segment. A letter that both starts a segment and is
// the last of the word is initial.
func Classify(s State) (Position, bool) {
	switch {
	case s.Segment == 0:
		return Initial, false
	case s.Segment == s.LastIndex || s.Letter == s.LastIndex:
		return Final, true
	}
	return Medial, false
}

// ClassifyLast is the weaker test used for plain text output: only the last
// letter of the word is final. index is zero-based.
func ClassifyLast(index, count int) Position {
	switch {
	case index == count-1:
		return Final
	case index == 0:
		return Initial
	}
	return Medial
}

// Advance consumes one rune and returns the next state. Markers and vowels
// leave the counters alone but still honour a pending segment reset.
func Advance(s State, r rune) (State, Step) {
	if s.Reset {
		s.Segment = 0
	}

	if IsControl(r) {
		switch r {
		case UncertainOpen:
			s.Unclear = true
		case UncertainClose:
			s.Unclear = false
		case ModifiedOpen:
			s.Modified = true
		case ModifiedClose:
			s.Modified = false
		case WordBreak:
			s.Segment = s.LastIndex
		}
		return s, Step{Kind: StepMarker, Unclear: s.Unclear}
	}
	if IsTashkil(r) {
		return s, Step{Kind: StepVowel, Unclear: s.Unclear}
	}

	pos, reset := Classify(s)
	s.Reset = reset
	s.Letter++
	s.Segment++
	return s, Step{Kind: StepLetter, Position: pos, Unclear: s.Unclear}
}
