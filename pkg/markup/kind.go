package markup

import "github.com/karina-jasmin/quran-collate/pkg/segment"

// Kind is the closed set of editorial children a word may contain.
type Kind uint8

const (
	KindOther Kind = iota
	KindSupplied
	KindUnclear
	KindHighlighted
	KindDeleted
	KindLineBreak
)

// KindOf maps an element's local name onto its kind.
func KindOf(name string) Kind {
	switch name {
	case "supplied":
		return KindSupplied
	case "unclear":
		return KindUnclear
	case "hi":
		return KindHighlighted
	case "del":
		return KindDeleted
	case "br":
		return KindLineBreak
	}
	return KindOther
}

func (k Kind) String() string {
	switch k {
	case KindSupplied:
		return "supplied"
	case KindUnclear:
		return "unclear"
	case KindHighlighted:
		return "hi"
	case KindDeleted:
		return "del"
	case KindLineBreak:
		return "br"
	}
	return "other"
}

// wrap returns the control markers surrounding the child's own text.
func (k Kind) wrap() (open, close string) {
	switch k {
	case KindUnclear:
		return string(segment.UncertainOpen), string(segment.UncertainClose)
	case KindHighlighted, KindDeleted:
		return string(segment.ModifiedOpen), string(segment.ModifiedClose)
	}
	return "", ""
}

// keepsText reports whether the child's own text reaches the word.
func (k Kind) keepsText() bool {
	return k != KindSupplied && k != KindLineBreak
}
