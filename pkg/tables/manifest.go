// CLAUDE:SUMMARY Manifest YAML schema naming a table set's CSV files, their layout and the TEI fragments shipped with it.
package tables

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the manifest at the root of a table set.
const ManifestFile = "manifest.yaml"

// Manifest describes a table set: where its files live and how to read them.
type Manifest struct {
	ID               string     `yaml:"id" json:"id"`
	Version          string     `yaml:"version" json:"version"`
	Source           string     `yaml:"source" json:"source"`
	License          string     `yaml:"license" json:"license"`
	Format           FormatSpec `yaml:"format" json:"-"`
	BaseFile         string     `yaml:"base_file" json:"base_file"`
	DiacriticsFile   string     `yaml:"diacritics_file" json:"diacritics_file"`
	ReplacementsFile string     `yaml:"replacements_file" json:"replacements_file"`
	CharDeclFile     string     `yaml:"chardecl_file" json:"chardecl_file,omitempty"`
	SkeletonFile     string     `yaml:"skeleton_file" json:"skeleton_file,omitempty"`
}

// FormatSpec describes the CSV layout shared by all tables of a set.
type FormatSpec struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
}

// LoadManifest reads and parses the manifest at the root of fsys.
func LoadManifest(fsys fs.FS) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest: missing id")
	}
	if m.BaseFile == "" {
		m.BaseFile = "basecharacters.csv"
	}
	if m.DiacriticsFile == "" {
		m.DiacriticsFile = "ag-id.csv"
	}
	if m.ReplacementsFile == "" {
		m.ReplacementsFile = "normalize.csv"
	}
	if m.Format.Delimiter == "" {
		m.Format.Delimiter = ";"
	}
	return &m, nil
}
