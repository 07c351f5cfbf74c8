// Package data ships the default lookup tables, character declaration and
// TEI skeleton used when no tables directory is configured.
package data

import (
	"embed"
	"io/fs"
)

//go:embed tables
var files embed.FS

// Tables returns the default table set rooted at its manifest.
func Tables() fs.FS {
	sub, err := fs.Sub(files, "tables")
	if err != nil {
		panic(err)
	}
	return sub
}
