// internal/session/session.go
//
// Session is the caller side of a board: it owns the engine, the one-slot
// undo snapshot and the store, and persists the board after every mutation.
// The CLI, the terminal UI and the web UI all drive a board through it.
//
// Notes:
//   - The mutex serializes operations the way a UI event loop would; the web
//     UI and the file watcher call in from their own goroutines.
//   - An operation that fails in the engine or in the store leaves both the
//     board and the undo slot unchanged.
//   - The undo slot holds the state before the last successful mutation.
//     Undo consumes it.

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
	"github.com/OriginOfChaos/Bearathon5/internal/objectives"
	"github.com/OriginOfChaos/Bearathon5/internal/store"
)

// ErrNothingToUndo is returned by Undo when the undo slot is empty.
var ErrNothingToUndo = errors.New("nothing to undo")

// Session binds one board to one store.
type Session struct {
	mu    sync.Mutex
	board *bingo.Board
	prev  *bingo.Snapshot
	store store.Store
}

// Create builds a fresh board and saves it.
func Create(ctx context.Context, st store.Store, cfg bingo.Config, labels, featured []string, opts ...bingo.Option) (*Session, error) {
	b, err := bingo.New(cfg, labels, featured, opts...)
	if err != nil {
		return nil, err
	}
	s := &Session{board: b, store: st}
	if err := s.persist(ctx, "new"); err != nil {
		return nil, err
	}
	log.Info().
		Str("board", b.ID()).
		Int("size", cfg.Size).
		Bool("featured", cfg.Featured).
		Int("objectives", len(b.Objectives())).
		Str("file", st.Path()).
		Msg("board created")
	return s, nil
}

// Open loads the board saved in st.
func Open(ctx context.Context, st store.Store, featured []string, opts ...bingo.Option) (*Session, error) {
	snap, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	b, err := bingo.FromSnapshot(snap, featured, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", st.Path(), err)
	}
	log.Debug().Str("board", b.ID()).Str("file", st.Path()).Msg("board opened")
	return &Session{board: b, store: st}, nil
}

// Store returns the backing store.
func (s *Session) Store() store.Store { return s.store }

// View returns the current board projection.
func (s *Session) View() bingo.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.View()
}

// Snapshot returns a value copy of the current board.
func (s *Session) Snapshot() bingo.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Snapshot()
}

// Objectives returns the catalog entries in order.
func (s *Session) Objectives() []bingo.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Objectives()
}

// Featured returns the featured catalog.
func (s *Session) Featured() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.FeaturedCatalog()
}

// CanUndo reports whether the undo slot is filled.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prev != nil
}

// Toggle flips the completion status of a cell.
func (s *Session) Toggle(ctx context.Context, row, col int) (bingo.Status, error) {
	var st bingo.Status
	err := s.mutate(ctx, "toggle", func(b *bingo.Board) error {
		var err error
		st, err = b.ToggleStatus(row, col)
		return err
	})
	return st, err
}

// Shuffle moves cells around, keeping content and status together.
func (s *Session) Shuffle(ctx context.Context) error {
	return s.mutate(ctx, "shuffle", func(b *bingo.Board) error { return b.Shuffle() })
}

// Replace swaps the content of one cell, randomly or with label.
func (s *Session) Replace(ctx context.Context, row, col int, random bool, label string) error {
	return s.mutate(ctx, "replace", func(b *bingo.Board) error { return b.Replace(row, col, random, label) })
}

// ReplaceFeatured swaps the featured center item.
func (s *Session) ReplaceFeatured(ctx context.Context, random bool, label string) error {
	return s.mutate(ctx, "replace-featured", func(b *bingo.Board) error { return b.ReplaceFeatured(random, label) })
}

// Wipe generates a new board from the objectives not yet achieved.
func (s *Session) Wipe(ctx context.Context) error {
	return s.mutate(ctx, "wipe", func(b *bingo.Board) error { return b.Populate() })
}

// Reset clears all progress and generates a new board.
func (s *Session) Reset(ctx context.Context) error {
	return s.mutate(ctx, "reset", func(b *bingo.Board) error { return b.Reset() })
}

// AddObjective adds a label to the catalog.
func (s *Session) AddObjective(ctx context.Context, label string) (bool, error) {
	var added bool
	err := s.mutate(ctx, "add-objective", func(b *bingo.Board) error {
		var err error
		added, err = b.AddObjective(label)
		return err
	})
	return added, err
}

// RemoveObjective removes a label that is not on the grid.
func (s *Session) RemoveObjective(ctx context.Context, label string) (bool, error) {
	var removed bool
	err := s.mutate(ctx, "remove-objective", func(b *bingo.Board) error {
		var err error
		removed, err = b.RemoveObjective(label)
		return err
	})
	return removed, err
}

// SetObjectiveStatus sets the achieved marker of a label.
func (s *Session) SetObjectiveStatus(ctx context.Context, label string, st bingo.Status) error {
	return s.mutate(ctx, "objective-status", func(b *bingo.Board) error { return b.SetObjectiveStatus(label, st) })
}

// Undo restores the state saved before the last mutation.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prev == nil {
		return ErrNothingToUndo
	}
	current := s.board.Snapshot()
	if err := s.board.Restore(*s.prev); err != nil {
		return err
	}
	if err := s.persist(ctx, "undo"); err != nil {
		s.rollback(current, "undo")
		return err
	}
	s.prev = nil
	return nil
}

// ExportList writes the catalog labels to path in catalog order.
func (s *Session) ExportList(path string) error {
	entries := s.Objectives()
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	if err := objectives.Export(path, labels); err != nil {
		return err
	}
	log.Info().Str("file", path).Int("objectives", len(labels)).Msg("objective list exported")
	return nil
}

// Reload re-reads the store and adopts its board when it differs from the
// one in memory, e.g. after another process edited the save file. The
// replaced state goes into the undo slot. It reports whether anything changed.
//
// The store is read under the mutex, so a save that lands between the read
// and the comparison cannot be rolled back to an older file.
func (s *Session) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	current := s.board.Snapshot()
	if snap.Sum() == current.Checksum {
		return false, nil
	}
	if err := s.board.Restore(snap); err != nil {
		return false, err
	}
	s.prev = &current
	log.Info().Str("file", s.store.Path()).Str("board", snap.ID).Msg("board reloaded")
	return true, nil
}

// mutate applies fn and saves. When fn or the save fails, the board and the
// undo slot are left as they were.
func (s *Session) mutate(ctx context.Context, op string, fn func(b *bingo.Board) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.board.Snapshot()
	if err := fn(s.board); err != nil {
		log.Debug().Err(err).Str("op", op).Msg("operation rejected")
		return err
	}
	if err := s.persist(ctx, op); err != nil {
		s.rollback(before, op)
		return err
	}
	s.prev = &before
	return nil
}

// rollback puts the board back to before after a failed save.
func (s *Session) rollback(before bingo.Snapshot, op string) {
	if err := s.board.Restore(before); err != nil {
		log.Error().Err(err).Str("op", op).Msg("restore board after failed save")
	}
}

// persist saves the board; callers hold the mutex or own s exclusively.
func (s *Session) persist(ctx context.Context, op string) error {
	if err := s.store.Save(ctx, s.board.Snapshot()); err != nil {
		log.Error().Err(err).Str("op", op).Str("file", s.store.Path()).Msg("save board")
		return err
	}
	log.Debug().Str("op", op).Str("board", s.board.ID()).Msg("board updated")
	return nil
}
