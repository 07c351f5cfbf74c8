// Package tablestest provides small in-memory table sets for tests.
package tablestest

import (
	"testing"
	"testing/fstest"

	"github.com/karina-jasmin/quran-collate/pkg/tables"
)

const manifest = `id: illustrative
version: "test"
format:
  delimiter: ";"
  encoding: utf-8
base_file: base.csv
diacritics_file: dia.csv
replacements_file: repl.csv
chardecl_file: chardecl.xml
skeleton_file: skeleton.xml
`

// Base is the illustrative base table: B and S have a single entry, M has
// an initial/medial and a final form. D carries dots on both sides, T dots
// above only and X a descriptor the diacritic table lacks.
const Base = "Character;pos;id;ag;dots-above;dots-below\n" +
	"B;;b1;B;0;0\n" +
	"S;;s1;S;0;0\n" +
	"M;inmed;m1;Mmed;0;0\n" +
	"M;finis;m2;Mfin;0;0\n" +
	"D;;d1;D;2;1\n" +
	"T;;t1;T;1;0\n" +
	"X;;x1;X;0;3\n"

const Diacritics = "one-dot-above;'\n" +
	"two-dots-above;:\n" +
	"one-dot-below;.\n"

const CharDecl = `<charDecl xmlns="http://www.tei-c.org/ns/1.0"><glyph xml:id="one-dot-above"/></charDecl>`

const Skeleton = `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0"><teiHeader><encodingDesc/></teiHeader><text><body><p/></body></text></TEI>`

// FS returns the illustrative table set as an in-memory filesystem.
func FS() fstest.MapFS {
	return fstest.MapFS{
		"manifest.yaml": {Data: []byte(manifest)},
		"base.csv":      {Data: []byte(Base)},
		"dia.csv":       {Data: []byte(Diacritics)},
		"repl.csv":      {Data: []byte("x;y\n")},
		"chardecl.xml":  {Data: []byte(CharDecl)},
		"skeleton.xml":  {Data: []byte(Skeleton)},
	}
}

// Load returns the illustrative table set or fails the test.
func Load(t testing.TB) *tables.Set {
	t.Helper()
	s, err := tables.Load(FS())
	if err != nil {
		t.Fatalf("load illustrative tables: %v", err)
	}
	return s
}
