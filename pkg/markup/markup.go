// CLAUDE:SUMMARY Parses a transcription and flattens every <w> with its editorial children into one marker-annotated string.
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/karina-jasmin/quran-collate/pkg/segment"
)

// Words are matched by local name so transcriptions with or without a
// default namespace flatten the same way.
var wordExpr = xpath.MustCompile(`//*[local-name()='w']`)

// ErrInvalidDocument wraps every failure to parse a transcription.
var ErrInvalidDocument = errors.New("invalid transcription")

// Document is a parsed transcription.
type Document struct {
	// Source is the src attribute of the root element.
	Source string

	root *xmlquery.Node
}

// Parse reads a transcription document.
func Parse(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	doc := &Document{root: root}
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			doc.Source = n.SelectAttr("src")
			break
		}
	}
	return doc, nil
}

// ParseBytes reads a transcription held in memory.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// Flatten returns the words of doc in document order. clean is applied to
// every text piece before it is joined; nil leaves text untouched. Words
// that flatten to nothing are dropped.
func Flatten(doc *Document, clean func(string) string) ([]segment.Word, error) {
	if clean == nil {
		clean = func(s string) string { return s }
	}
	piece := func(s string) string { return strings.TrimSpace(clean(s)) }

	var words []segment.Word
	for _, w := range xmlquery.QuerySelectorAll(doc.root, wordExpr) {
		text := flattenWord(w, piece)

		uncertain := w.SelectAttr("type") == "unclear"
		if uncertain {
			text = string(segment.UncertainOpen) + text + string(segment.UncertainClose)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		n, ok := attr(w, "n")
		if !ok {
			return nil, &segment.MalformedWordError{
				Reason: fmt.Sprintf("word %d has no n attribute", len(words)+1),
			}
		}
		words = append(words, segment.Word{Ordinal: n, Text: text, Uncertain: uncertain})
	}
	return words, nil
}

func flattenWord(w *xmlquery.Node, piece func(string) string) string {
	acc := piece(leadingText(w.FirstChild))

	for child := w.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		kind := KindOf(child.Data)
		if kind == KindLineBreak {
			acc = insertBreak(acc)
			continue
		}
		if kind.keepsText() {
			open, close := kind.wrap()
			acc += open + piece(leadingText(child.FirstChild)) + close
		}
		acc += piece(leadingText(child.NextSibling))
	}
	return acc
}

// insertBreak places the word-break marker before the last base letter
// and the marks trailing it, so that letter is read as final. Without a
// base letter the marker goes to the front.
func insertBreak(acc string) string {
	rs := []rune(acc)
	k := len(rs)
	for k > 0 && segment.IsSpecial(rs[k-1]) {
		k--
	}
	split := max(k-1, 0)
	return strings.TrimSpace(string(rs[:split])) + string(segment.WordBreak) + strings.TrimSpace(string(rs[split:]))
}

// leadingText collects the text of n and its following siblings up to the
// next element. Comments and processing instructions are skipped.
func leadingText(n *xmlquery.Node) string {
	var b strings.Builder
	for ; n != nil && n.Type != xmlquery.ElementNode; n = n.NextSibling {
		if n.Type == xmlquery.TextNode || n.Type == xmlquery.CharDataNode {
			b.WriteString(n.Data)
		}
	}
	return b.String()
}

func attr(n *xmlquery.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
