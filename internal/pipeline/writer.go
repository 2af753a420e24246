package pipeline

import (
	"os"
	"path/filepath"

	"github.com/conneroisu/sitepress/internal/assets"
)

// Writer writes artifacts beneath an output directory, stamping each file
// with the artifact's fixed timestamp so identical inputs produce identical
// output trees.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write stores one artifact. The directory is created on first use.
func (w *Writer) Write(a assets.Artifact) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(w.dir, a.Name)
	if err := os.WriteFile(path, a.Body, 0o644); err != nil {
		return err
	}
	return os.Chtimes(path, a.ModTime, a.ModTime)
}
