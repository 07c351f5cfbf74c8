package segment

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCharacter = errors.New("unknown character")
	ErrMissingDiacritic = errors.New("missing diacritic")
	ErrMalformedWord    = errors.New("malformed word")
)

// UnknownCharacterError reports a letter absent from the base table.
type UnknownCharacterError struct {
	Char    rune
	Ordinal string
}

func (e *UnknownCharacterError) Error() string {
	return fmt.Sprintf("word %s: the letter %q (U+%04X) does not exist in the base character table", e.Ordinal, e.Char, e.Char)
}

func (e *UnknownCharacterError) Unwrap() error { return ErrUnknownCharacter }

// MissingDiacriticError reports a dot descriptor absent from the diacritic table.
type MissingDiacriticError struct {
	Descriptor string
	Ordinal    string
}

func (e *MissingDiacriticError) Error() string {
	return fmt.Sprintf("word %s: diacritic %q does not exist in the diacritic table", e.Ordinal, e.Descriptor)
}

func (e *MissingDiacriticError) Unwrap() error { return ErrMissingDiacritic }

// MalformedWordError reports a word the segmenter cannot interpret.
type MalformedWordError struct {
	Ordinal string
	Reason  string
}

func (e *MalformedWordError) Error() string {
	if e.Ordinal == "" {
		return "malformed word: " + e.Reason
	}
	return fmt.Sprintf("word %s: %s", e.Ordinal, e.Reason)
}

func (e *MalformedWordError) Unwrap() error { return ErrMalformedWord }
