package tables

import (
	"fmt"
	"sort"
)

var countWords = [...]string{1: "one", 2: "two", 3: "three"}

// Descriptor names the i'jam of count dots above or below a letter,
// e.g. "one-dot-above" or "two-dots-below". It returns "" for count 0.
func Descriptor(count uint8, below bool) string {
	if count == 0 || int(count) >= len(countWords) {
		return ""
	}
	dot := "dot"
	if count > 1 {
		dot = "dots"
	}
	side := "above"
	if below {
		side = "below"
	}
	return fmt.Sprintf("%s-%s-%s", countWords[count], dot, side)
}

// Check reports every diacritic descriptor the base table can produce that
// is missing from the diacritic table, in sorted order.
func (s *Set) Check() []string {
	missing := make(map[string]struct{})
	for _, e := range s.Entries {
		for _, d := range []string{Descriptor(e.DotsAbove, false), Descriptor(e.DotsBelow, true)} {
			if d == "" {
				continue
			}
			if _, ok := s.Diacritics[d]; !ok {
				missing[d] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(missing))
	for d := range missing {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
