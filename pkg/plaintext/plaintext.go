// Package plaintext renders flattened words as a flat archigrapheme string.
package plaintext

import (
	"strings"

	"github.com/karina-jasmin/quran-collate/pkg/segment"
	"github.com/karina-jasmin/quran-collate/pkg/tables"
)

// Options controls plain text output.
type Options struct {
	// Vowels keeps tashkil marks in the output.
	Vowels bool
}

type group struct {
	ordinal string
	text    strings.Builder
}

// Assemble joins consecutive words sharing an ordinal, resolves every base
// letter to its archigrapheme and separates the resulting words with one
// space. Only the last letter of a word is read as final; word breaks and
// kaf folding play no part here.
func Assemble(words []segment.Word, t *tables.Set, opts Options) (string, error) {
	var groups []*group
	for _, w := range words {
		if len(groups) == 0 || groups[len(groups)-1].ordinal != w.Ordinal {
			groups = append(groups, &group{ordinal: w.Ordinal})
		}
		groups[len(groups)-1].text.WriteString(w.Text)
	}

	out := make([]string, 0, len(groups))
	for _, g := range groups {
		s, err := render(g.ordinal, g.text.String(), t, opts)
		if err != nil {
			return "", err
		}
		out = append(out, s)
	}
	return strings.Join(out, " "), nil
}

func render(ordinal, text string, t *tables.Set, opts Options) (string, error) {
	count := segment.CountLetters(text)
	var b strings.Builder
	i := 0
	for _, r := range text {
		switch {
		case segment.IsControl(r):
			continue
		case segment.IsTashkil(r):
			if opts.Vowels {
				b.WriteRune(r)
			}
			continue
		}

		pos := segment.ClassifyLast(i, count)
		i++
		entry, ok := t.Lookup(r, pos.Context())
		if !ok {
			return "", &segment.UnknownCharacterError{Char: r, Ordinal: ordinal}
		}
		b.WriteString(entry.Archigrapheme)
	}
	return b.String(), nil
}
