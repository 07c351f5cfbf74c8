// CLAUDE:SUMMARY Text cleanup applied to every text node of a transcription: NFKD, replacement table, verse separators, category stripping.
package textprep

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/karina-jasmin/quran-collate/pkg/segment"
	"github.com/karina-jasmin/quran-collate/pkg/tables"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// VerseSeparator is the single rune every run of verse markers folds to.
const VerseSeparator = '۝'

var (
	verseDigits = regexp.MustCompile(`[٠١٢٣٤٥٦٧٨٩]`)
	verseMarks  = regexp.MustCompile(`[۝۞]+`)

	// Space separators, other punctuation, format and other symbols are
	// dropped. The verse separator is itself a format character and stays.
	stripCategories = runes.Remove(runes.Predicate(func(r rune) bool {
		return r != VerseSeparator && unicode.In(r, unicode.Zs, unicode.Po, unicode.Cf, unicode.So)
	}))
)

// Preprocessor cleans raw element text. It is safe for concurrent use.
type Preprocessor struct {
	replacements []tables.Replacement
}

// New returns a Preprocessor applying the given replacements in order.
func New(replacements []tables.Replacement) *Preprocessor {
	return &Preprocessor{replacements: replacements}
}

// ForTables returns a Preprocessor for the replacement table of s.
func ForTables(s *tables.Set) *Preprocessor {
	return New(s.Replacements)
}

// Clean normalizes one piece of element text.
func (p *Preprocessor) Clean(text string) string {
	if text == "" {
		return text
	}
	text = norm.NFKD.String(text)
	text = p.Replace(text)
	text = strings.ReplaceAll(text, "\n", "")

	text = verseDigits.ReplaceAllString(text, "")
	text = verseMarks.ReplaceAllString(text, string(VerseSeparator))

	result, _, _ := transform.String(stripCategories, text)
	return result
}

// CleanWord cleans an already flattened word. Only the text between control
// markers is cleaned; the markers themselves survive, including % which
// Clean would strip as punctuation.
func (p *Preprocessor) CleanWord(word string) string {
	var b strings.Builder
	start := 0
	for i, r := range word {
		if !segment.IsControl(r) {
			continue
		}
		b.WriteString(p.Clean(word[start:i]))
		b.WriteRune(r)
		start = i + len(string(r))
	}
	b.WriteString(p.Clean(word[start:]))
	return b.String()
}

// Replace applies the replacement table, each pair over the whole text in
// table order.
func (p *Preprocessor) Replace(text string) string {
	for _, r := range p.replacements {
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return text
}

// FixedPoint reports whether a second pass of the replacement table can
// never change already replaced text, i.e. no target contains a source.
// It returns the offending pairs otherwise.
func (p *Preprocessor) FixedPoint() (bool, []tables.Replacement) {
	var offending []tables.Replacement
	for _, r := range p.replacements {
		for _, src := range p.replacements {
			if strings.Contains(r.To, src.From) {
				offending = append(offending, r)
				break
			}
		}
	}
	return len(offending) == 0, offending
}
