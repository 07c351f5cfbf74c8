package tables

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrUnknownSet is returned by Get for an id no loaded table set carries.
var ErrUnknownSet = errors.New("unknown table set")

// Registry holds every loaded table set and the id of the default one.
type Registry struct {
	mu        sync.RWMutex
	sets      map[string]*Set
	defaultID string
	dir       string
	fallback  fs.FS
}

// NewRegistry creates an empty registry. Table sets are read from the
// subdirectories of dir; when dir is empty only fallback is loaded.
func NewRegistry(dir string, fallback fs.FS) *Registry {
	return &Registry{
		sets:     make(map[string]*Set),
		dir:      dir,
		fallback: fallback,
	}
}

// Load scans the tables directory and loads every table set. A directory
// that is itself a table set (manifest at its root) is loaded as the only set.
func (r *Registry) Load() error {
	newSets := make(map[string]*Set)
	var order []string

	add := func(fsys fs.FS) error {
		s, err := Load(fsys)
		if err != nil {
			return err
		}
		if _, dup := newSets[s.Manifest.ID]; dup {
			return fmt.Errorf("duplicate table set id %q", s.Manifest.ID)
		}
		newSets[s.Manifest.ID] = s
		order = append(order, s.Manifest.ID)
		return nil
	}

	switch {
	case r.dir == "":
		if r.fallback == nil {
			return fmt.Errorf("no tables directory and no default tables")
		}
		if err := add(r.fallback); err != nil {
			return fmt.Errorf("load default tables: %w", err)
		}
	case fileExists(filepath.Join(r.dir, ManifestFile)):
		if err := add(os.DirFS(r.dir)); err != nil {
			return fmt.Errorf("load tables %s: %w", r.dir, err)
		}
	default:
		entries, err := os.ReadDir(r.dir)
		if err != nil {
			return fmt.Errorf("read tables dir %s: %w", r.dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(r.dir, entry.Name())
			if !fileExists(filepath.Join(dir, ManifestFile)) {
				continue
			}
			if err := add(os.DirFS(dir)); err != nil {
				return fmt.Errorf("load tables %s: %w", entry.Name(), err)
			}
		}
		if len(newSets) == 0 {
			return fmt.Errorf("no table sets found in %s", r.dir)
		}
	}

	sort.Strings(order)

	r.mu.Lock()
	r.sets = newSets
	r.defaultID = order[0]
	r.mu.Unlock()
	return nil
}

// Reload reloads all table sets from disk (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

// Get returns the table set with the given id, or the default set for "".
func (r *Registry) Get(id string) (*Set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id == "" {
		id = r.defaultID
	}
	s, ok := r.sets[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSet, id)
	}
	return s, nil
}

// SetInfo is the public metadata of a loaded table set.
type SetInfo struct {
	ID           string `json:"id"`
	Version      string `json:"version"`
	Source       string `json:"source"`
	License      string `json:"license"`
	Digest       string `json:"digest"`
	Characters   int    `json:"characters"`
	Entries      int    `json:"entries"`
	Diacritics   int    `json:"diacritics"`
	Replacements int    `json:"replacements"`
	Default      bool   `json:"default"`
}

// Info returns the public metadata of s.
func (s *Set) Info() SetInfo {
	return SetInfo{
		ID:           s.Manifest.ID,
		Version:      s.Manifest.Version,
		Source:       s.Manifest.Source,
		License:      s.Manifest.License,
		Digest:       s.Digest,
		Characters:   s.Characters(),
		Entries:      len(s.Entries),
		Diacritics:   len(s.Diacritics),
		Replacements: len(s.Replacements),
	}
}

// ListSets returns metadata for all loaded table sets, sorted by ID.
func (r *Registry) ListSets() []SetInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]SetInfo, 0, len(r.sets))
	for id, s := range r.sets {
		info := s.Info()
		info.Default = id == r.defaultID
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// SetCount returns the number of loaded table sets.
func (r *Registry) SetCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sets)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
