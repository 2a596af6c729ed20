// internal/objectives/export.go
//
// Writes an objective list back to disk, one label per line in catalog
// order, without a trailing newline. The output reads back with ReadFile.

package objectives

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Write writes labels to w.
func Write(w io.Writer, labels []string) error {
	_, err := io.WriteString(w, strings.Join(labels, "\n"))
	return err
}

// Export writes labels to path, replacing the file atomically.
func Export(path string, labels []string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	_ = tmp.Chmod(0o644)

	if err := Write(tmp, labels); err != nil {
		tmp.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
