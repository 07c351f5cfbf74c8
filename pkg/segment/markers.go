package segment

// Control markers interleaved with letters in a flattened word. They carry
// no position and are never emitted.
const (
	UncertainOpen  = '['
	UncertainClose = ']'
	ModifiedOpen   = '{'
	ModifiedClose  = '}'
	WordBreak      = '%'
)

// Kaf homoglyphs: the Arabic kaf is kept only in final position, every
// other occurrence folds to the keheh form.
const (
	kafArabic = 'ك'
	kafKeheh  = 'ک'
)

// IsControl reports whether r is a control marker.
func IsControl(r rune) bool {
	switch r {
	case UncertainOpen, UncertainClose, ModifiedOpen, ModifiedClose, WordBreak:
		return true
	}
	return false
}

// IsTashkil reports whether r is a vowel or pronunciation mark belonging to
// the preceding letter: tanwin, short vowels, shadda, sukun, maddah,
// hamza above/below and the superscript alif.
func IsTashkil(r rune) bool {
	return (r >= 'ً' && r <= 'ٕ') || r == 'ٰ'
}

// IsSpecial reports whether r is excluded from letter counting.
func IsSpecial(r rune) bool {
	return IsTashkil(r) || IsControl(r)
}

// CountLetters returns the number of base letters in text.
func CountLetters(text string) int {
	n := 0
	for _, r := range text {
		if !IsSpecial(r) {
			n++
		}
	}
	return n
}

// FoldHomoglyph canonicalizes the kaf pair to its non-final glyph unless
// the letter stands in final position.
func FoldHomoglyph(r rune, pos Position) rune {
	if pos != Final && (r == kafArabic || r == kafKeheh) {
		return kafKeheh
	}
	return r
}
