// Package storage is the file-system layer under the note mirror and the
// attachment store.
package storage

import "github.com/e-schultz/floativerse/internal/models"

// Provider is the interface for file operations relative to a root
// directory.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Root returns the absolute root directory.
	Root() string
}
