// internal/store/sqlite.go
//
// SQLite-backed Store. The whole save lives in one database file, so a board
// saved as "event.db" is as portable as "event.json".
// Responsibilities:
//   - Opening the file in WAL mode with a busy timeout.
//   - Applying the embedded sql/*.sql schema files once each (schema_history).
//   - Saving and loading the board snapshot payload.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
)

//go:embed sql/*.sql
var migrations embed.FS

// stampFormat is fixed-width so updated_at sorts lexically.
const stampFormat = "2006-01-02T15:04:05.000000000Z"

// SQLite stores snapshots in the boards table. Every game saved to the file
// keeps its own row keyed by board id; Load returns the most recently saved.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens the save file at path, creating it when missing, and
// brings its schema up to date.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := openSaveFile(path)
	if err != nil {
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Path() string { return s.path }

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Save(ctx context.Context, snap bingo.Snapshot) error {
	data, err := bingo.Encode(snap)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	sum := snap.Sum()
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO boards (id, payload, checksum, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            payload = excluded.payload,
            checksum = excluded.checksum,
            updated_at = excluded.updated_at`,
		snap.ID, string(data), sum, time.Now().UTC().Format(stampFormat),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	log.Debug().Str("file", s.path).Str("board", snap.ID).Msg("board saved")
	return nil
}

func (s *SQLite) Load(ctx context.Context) (bingo.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
        SELECT payload FROM boards
        ORDER BY updated_at DESC, rowid DESC
        LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return bingo.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return bingo.Snapshot{}, fmt.Errorf("load %s: %w", s.path, err)
	}
	snap, err := bingo.Decode([]byte(payload))
	if err != nil {
		return bingo.Snapshot{}, fmt.Errorf("load %s: %w", s.path, err)
	}
	return snap, nil
}

// openSaveFile opens path as a SQLite database, creating the file and its
// directory when missing.
func openSaveFile(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create save dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection per save file.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

// applySchema runs every embedded sql/*.sql file not yet listed in
// schema_history, in name order, one transaction per file.
func applySchema(db *sql.DB) error {
	const history = `CREATE TABLE IF NOT EXISTS schema_history (
        file       TEXT PRIMARY KEY,
        applied_at TEXT NOT NULL
    )`
	if _, err := db.Exec(history); err != nil {
		return fmt.Errorf("schema history: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list schema files: %w", err)
	}
	sort.Strings(files)

	applied := map[string]bool{}
	rows, err := db.Query(`SELECT file FROM schema_history`)
	if err != nil {
		return fmt.Errorf("schema history: %w", err)
	}
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			rows.Close()
			return fmt.Errorf("schema history: %w", err)
		}
		applied[f] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("schema history: %w", err)
	}

	for _, f := range files {
		if applied[f] {
			continue
		}
		if err := applyFile(db, f); err != nil {
			return err
		}
		log.Debug().Str("schema", f).Msg("schema file applied")
	}
	return nil
}

func applyFile(db *sql.DB, name string) error {
	stmts, err := migrations.ReadFile(name)
	if err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(stmts)); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_history (file, applied_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(stampFormat)); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	return tx.Commit()
}
