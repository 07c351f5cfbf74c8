// CLAUDE:SUMMARY Gob serialization of compiled table sets, validated against the blake3 digest of their CSV sources.
package tables

import (
	"encoding/gob"
	"fmt"
	"io/fs"
	"os"
)

// CacheFile is the name of the compiled cache next to the manifest.
const CacheFile = "tables.gob"

// loadGob decodes the compiled cache stored in fsys.
func loadGob(fsys fs.FS) (*Set, error) {
	f, err := fsys.Open(CacheFile)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var s Set
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	return &s, nil
}

// SaveGob serializes a loaded set to path. Load uses the cache as long as
// the digest of the sources still matches.
func SaveGob(s *Set, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}
