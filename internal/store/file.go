package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
)

// File stores a snapshot as an indented JSON document. Writes go to a
// temporary file in the same directory and are renamed into place, so a
// crash never leaves a half-written save.
type File struct {
	path string
}

// NewFileStore returns a JSON store backed by path.
func NewFileStore(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

func (f *File) Save(ctx context.Context, s bingo.Snapshot) error {
	data, err := bingo.Encode(s)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+"-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	defer os.Remove(tmp.Name())
	_ = tmp.Chmod(0o644)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	log.Debug().Str("file", f.path).Str("checksum", shortSum(s)).Msg("board saved")
	return nil
}

func (f *File) Load(ctx context.Context) (bingo.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return bingo.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return bingo.Snapshot{}, err
	}
	s, err := bingo.Decode(data)
	if err != nil {
		return bingo.Snapshot{}, fmt.Errorf("load %s: %w", f.path, err)
	}
	return s, nil
}

// Open picks the store for path by extension: .db, .sqlite and .sqlite3
// open a SQLite file, anything else a JSON file. An empty path yields a
// memory store.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		if path == "" {
			return NewMemoryStore(), nil
		}
		return NewFileStore(path), nil
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	default:
		return NewFileStore(path), nil
	}
}

func shortSum(s bingo.Snapshot) string {
	if len(s.Checksum) > 12 {
		return s.Checksum[:12]
	}
	return s.Checksum
}
