// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used for ephemeral boards (no save file configured) and in tests.
//
// Characteristics:
//   - Holds the last saved snapshot; state is lost when the process exits.
//   - Concurrency-safe via RWMutex.
//   - Snapshots are deep-copied on the way in and out.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
)

// ErrNotFound is returned by Load when nothing has been saved.
var ErrNotFound = errors.New("store: no saved board")

// Store persists the snapshot of one board to one location.
// Implementations: JSON file (file.go), SQLite file (sqlite.go), memory.
type Store interface {
	// Save persists s, replacing any previous snapshot.
	Save(ctx context.Context, s bingo.Snapshot) error

	// Load returns the saved snapshot, or ErrNotFound.
	Load(ctx context.Context) (bingo.Snapshot, error)

	// Path is the backing file, or "" for memory.
	Path() string
}

// Memory is the in-memory Store.
type Memory struct {
	mu    sync.RWMutex
	saved *bingo.Snapshot
	saves int
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *Memory {
	return &Memory{}
}

func (m *Memory) Save(ctx context.Context, s bingo.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := clone(s)
	m.saved = &cp
	m.saves++
	return nil
}

func (m *Memory) Load(ctx context.Context) (bingo.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.saved == nil {
		return bingo.Snapshot{}, ErrNotFound
	}
	return clone(*m.saved), nil
}

func (m *Memory) Path() string { return "" }

// Saves reports how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func clone(s bingo.Snapshot) bingo.Snapshot {
	cp := s
	cp.Grid = make([][]string, len(s.Grid))
	for i, row := range s.Grid {
		cp.Grid[i] = append([]string(nil), row...)
	}
	cp.Statuses = make([][]bingo.Status, len(s.Statuses))
	for i, row := range s.Statuses {
		cp.Statuses[i] = append([]bingo.Status(nil), row...)
	}
	cp.Catalog = append([]bingo.Entry(nil), s.Catalog...)
	return cp
}
