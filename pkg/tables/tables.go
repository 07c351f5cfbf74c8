package tables

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"

	"github.com/zeebo/blake3"
)

// Context disambiguates the letterform a base table entry applies to.
type Context uint8

const (
	ContextAny Context = iota
	ContextInitialMedial
	ContextFinal
)

// ParseContext maps the "pos" column of the base table to a Context.
func ParseContext(s string) (Context, error) {
	switch s {
	case "":
		return ContextAny, nil
	case "inmed":
		return ContextInitialMedial, nil
	case "finis":
		return ContextFinal, nil
	}
	return ContextAny, fmt.Errorf("unknown context %q", s)
}

func (c Context) String() string {
	switch c {
	case ContextInitialMedial:
		return "inmed"
	case ContextFinal:
		return "finis"
	}
	return ""
}

// CharacterEntry is one row of the base character table.
type CharacterEntry struct {
	Char          rune    `json:"char"`
	Context       Context `json:"context"`
	ID            string  `json:"id"`
	Archigrapheme string  `json:"archigrapheme"`
	DotsAbove     uint8   `json:"dots_above"`
	DotsBelow     uint8   `json:"dots_below"`
}

// Replacement is one literal substitution of the replacement table.
type Replacement struct {
	From string
	To   string
}

// MaxDots is the largest dot count a base table entry may carry.
const MaxDots = 3

type entryKey struct {
	char rune
	ctx  Context
}

// Set is one loaded table set. It is immutable once returned by Load and
// safe for concurrent use.
type Set struct {
	Manifest     *Manifest
	Digest       string
	Entries      []CharacterEntry
	Diacritics   map[string]string
	Replacements []Replacement
	CharDecl     []byte
	Skeleton     []byte

	index map[entryKey]CharacterEntry
}

// Load reads the table set rooted at fsys. A gob cache whose digest matches
// the current sources is preferred over the CSV files.
func Load(fsys fs.FS) (*Set, error) {
	manifest, err := LoadManifest(fsys)
	if err != nil {
		return nil, err
	}

	digest, err := sourceDigest(fsys, manifest)
	if err != nil {
		return nil, fmt.Errorf("tables %s: %w", manifest.ID, err)
	}

	if cached, err := loadGob(fsys); err == nil && cached.Digest == digest {
		cached.Manifest = manifest
		if err := cached.buildIndex(); err != nil {
			return nil, fmt.Errorf("tables %s: %w", manifest.ID, err)
		}
		return cached, nil
	}

	s := &Set{Manifest: manifest, Digest: digest}
	if err := s.loadSources(fsys); err != nil {
		return nil, fmt.Errorf("tables %s: %w", manifest.ID, err)
	}
	if err := s.buildIndex(); err != nil {
		return nil, fmt.Errorf("tables %s: %w", manifest.ID, err)
	}
	return s, nil
}

// LoadDir reads the table set stored in dir.
func LoadDir(dir string) (*Set, error) {
	return Load(os.DirFS(dir))
}

func (s *Set) loadSources(fsys fs.FS) error {
	m := s.Manifest
	var err error
	if s.Entries, err = readBaseTable(fsys, m); err != nil {
		return err
	}
	if s.Diacritics, err = readDiacriticTable(fsys, m); err != nil {
		return err
	}
	if s.Replacements, err = readReplacementTable(fsys, m); err != nil {
		return err
	}
	if m.CharDeclFile != "" {
		if s.CharDecl, err = fs.ReadFile(fsys, m.CharDeclFile); err != nil {
			return fmt.Errorf("read chardecl: %w", err)
		}
	}
	if m.SkeletonFile != "" {
		if s.Skeleton, err = fs.ReadFile(fsys, m.SkeletonFile); err != nil {
			return fmt.Errorf("read skeleton: %w", err)
		}
	}
	return nil
}

// buildIndex indexes the entries by (character, context) and enforces the
// one-Any-or-InitialMedial+Final invariant.
func (s *Set) buildIndex() error {
	s.index = make(map[entryKey]CharacterEntry, len(s.Entries))
	perChar := make(map[rune][]Context)
	for _, e := range s.Entries {
		k := entryKey{e.Char, e.Context}
		if _, dup := s.index[k]; dup {
			return fmt.Errorf("character %q: duplicate %q entry", e.Char, e.Context)
		}
		s.index[k] = e
		perChar[e.Char] = append(perChar[e.Char], e.Context)
	}
	for r, ctxs := range perChar {
		switch len(ctxs) {
		case 1:
			if ctxs[0] != ContextAny {
				return fmt.Errorf("character %q: single entry must have an empty context, got %q", r, ctxs[0])
			}
		case 2:
			_, im := s.index[entryKey{r, ContextInitialMedial}]
			_, fi := s.index[entryKey{r, ContextFinal}]
			if !im || !fi {
				return fmt.Errorf("character %q: two entries must be inmed and finis", r)
			}
		default:
			return fmt.Errorf("character %q: %d entries, at most two allowed", r, len(ctxs))
		}
	}
	return nil
}

// Lookup resolves a character in the given context. The exact context is
// probed first, then the context-independent entry.
func (s *Set) Lookup(r rune, ctx Context) (CharacterEntry, bool) {
	if ctx != ContextAny {
		if e, ok := s.index[entryKey{r, ctx}]; ok {
			return e, true
		}
	}
	e, ok := s.index[entryKey{r, ContextAny}]
	return e, ok
}

// Diacritic returns the sign text for a diacritic descriptor.
func (s *Set) Diacritic(descriptor string) (string, bool) {
	sign, ok := s.Diacritics[descriptor]
	return sign, ok
}

// Characters returns the number of distinct characters in the base table.
func (s *Set) Characters() int {
	seen := make(map[rune]struct{}, len(s.Entries))
	for _, e := range s.Entries {
		seen[e.Char] = struct{}{}
	}
	return len(seen)
}

// sourceDigest hashes every source file named by the manifest.
func sourceDigest(fsys fs.FS, m *Manifest) (string, error) {
	h := blake3.New()
	for _, name := range []string{m.BaseFile, m.DiacriticsFile, m.ReplacementsFile, m.CharDeclFile, m.SkeletonFile} {
		if name == "" {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		h.Write([]byte(name))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
