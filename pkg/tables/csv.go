package tables

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Base table header names.
const (
	colCharacter = "Character"
	colContext   = "pos"
	colID        = "id"
	colAG        = "ag"
	colAbove     = "dots-above"
	colBelow     = "dots-below"
)

// openCSV opens name in fsys and returns a reader configured from the
// manifest. The caller closes the returned file.
func openCSV(fsys fs.FS, name string, format FormatSpec) (*csv.Reader, io.Closer, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}

	// Transcode non-UTF-8 encodings declared in the manifest.
	var reader io.Reader = f
	if enc := format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	r.Comma = []rune(format.Delimiter)[0]
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	return r, f, nil
}

func readBaseTable(fsys fs.FS, m *Manifest) ([]CharacterEntry, error) {
	r, c, err := openCSV(fsys, m.BaseFile, m.Format)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", m.BaseFile, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{colCharacter, colContext, colID, colAG, colAbove, colBelow} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%s: column %q not found in header %v", m.BaseFile, col, header)
		}
	}

	var entries []CharacterEntry
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read row: %w", m.BaseFile, err)
		}
		line++
		field := func(col string) string {
			if i := idx[col]; i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		char := field(colCharacter)
		if char == "" {
			continue
		}
		if utf8.RuneCountInString(char) != 1 {
			return nil, fmt.Errorf("%s:%d: character %q is not a single code point", m.BaseFile, line, char)
		}
		ctx, err := ParseContext(field(colContext))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", m.BaseFile, line, err)
		}
		above, err := parseDots(field(colAbove))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %s: %w", m.BaseFile, line, colAbove, err)
		}
		below, err := parseDots(field(colBelow))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %s: %w", m.BaseFile, line, colBelow, err)
		}
		id := field(colID)
		if id == "" {
			return nil, fmt.Errorf("%s:%d: missing id", m.BaseFile, line)
		}

		ch, _ := utf8.DecodeRuneInString(char)
		entries = append(entries, CharacterEntry{
			Char:          ch,
			Context:       ctx,
			ID:            id,
			Archigrapheme: field(colAG),
			DotsAbove:     above,
			DotsBelow:     below,
		})
	}
	return entries, nil
}

func parseDots(s string) (uint8, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	if n > MaxDots {
		return 0, fmt.Errorf("%d dots, at most %d allowed", n, MaxDots)
	}
	return uint8(n), nil
}

// readPairs reads a headerless two-column table in file order.
func readPairs(fsys fs.FS, name string, format FormatSpec) ([][2]string, error) {
	r, c, err := openCSV(fsys, name, format)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var pairs [][2]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read row: %w", name, err)
		}
		if len(record) < 2 || record[0] == "" {
			continue
		}
		pairs = append(pairs, [2]string{record[0], record[1]})
	}
	return pairs, nil
}

func readDiacriticTable(fsys fs.FS, m *Manifest) (map[string]string, error) {
	pairs, err := readPairs(fsys, m.DiacriticsFile, m.Format)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key := strings.TrimSpace(p[0])
		if _, exists := out[key]; exists {
			continue
		}
		out[key] = p[1]
	}
	return out, nil
}

// readReplacementTable keeps the first occurrence of every source literal;
// later duplicates are dropped.
func readReplacementTable(fsys fs.FS, m *Manifest) ([]Replacement, error) {
	pairs, err := readPairs(fsys, m.ReplacementsFile, m.Format)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(pairs))
	out := make([]Replacement, 0, len(pairs))
	var dups int
	for _, p := range pairs {
		if seen[p[0]] {
			dups++
			continue
		}
		seen[p[0]] = true
		out = append(out, Replacement{From: p[0], To: p[1]})
	}
	if dups > 0 {
		slog.Warn("duplicate replacement sources ignored", "tables", m.ID, "duplicates", dups)
	}
	return out, nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
