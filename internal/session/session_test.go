package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
	"github.com/OriginOfChaos/Bearathon5/internal/objectives"
	"github.com/OriginOfChaos/Bearathon5/internal/store"
)

var featured = []string{"Pikachu", "Eevee", "Mew"}

func labels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("objective %02d", i)
	}
	return out
}

func newSession(t *testing.T, st store.Store) *Session {
	t.Helper()
	s, err := Create(context.Background(), st, bingo.Config{Size: 5, Featured: true}, labels(30), featured, bingo.WithRand(bingo.NewRand(1)))
	require.NoError(t, err)
	return s
}

func TestCreate_Persists(t *testing.T) {
	mem := store.NewMemoryStore()
	s := newSession(t, mem)
	assert.Equal(t, 1, mem.Saves())
	assert.False(t, s.CanUndo())

	saved, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), saved)
}

func TestCreate_InvalidConfig(t *testing.T) {
	mem := store.NewMemoryStore()
	_, err := Create(context.Background(), mem, bingo.Config{Size: 4, Featured: true}, labels(30), featured)
	require.ErrorIs(t, err, bingo.ErrConfiguration)
	assert.Equal(t, 0, mem.Saves())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()

	_, err := Open(ctx, mem, featured)
	require.ErrorIs(t, err, store.ErrNotFound)

	s := newSession(t, mem)
	_, err = s.Toggle(ctx, 0, 0)
	require.NoError(t, err)

	again, err := Open(ctx, mem, featured)
	require.NoError(t, err)
	assert.Equal(t, s.View(), again.View())
	assert.False(t, again.CanUndo(), "undo does not survive a reopen")
}

func TestUndo(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	s := newSession(t, mem)

	require.ErrorIs(t, s.Undo(ctx), ErrNothingToUndo)

	before := s.Snapshot()
	require.NoError(t, s.Shuffle(ctx))
	_, err := s.Toggle(ctx, 1, 1)
	require.NoError(t, err)
	afterShuffle := s.Snapshot()
	_, err = s.Toggle(ctx, 3, 3)
	require.NoError(t, err)

	require.True(t, s.CanUndo())
	require.NoError(t, s.Undo(ctx))
	assert.Equal(t, afterShuffle, s.Snapshot(), "undo reverts the last mutation only")
	assert.NotEqual(t, before, s.Snapshot())

	require.ErrorIs(t, s.Undo(ctx), ErrNothingToUndo, "the slot is consumed")

	saved, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, afterShuffle.Checksum, saved.Checksum, "undo is persisted")
}

func TestFailedOperationKeepsUndoSlot(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	s := newSession(t, mem)

	require.NoError(t, s.Wipe(ctx))
	wiped := s.Snapshot()
	saves := mem.Saves()

	require.ErrorIs(t, s.Replace(ctx, 9, 9, true, ""), bingo.ErrIndexOutOfRange)
	require.ErrorIs(t, s.ReplaceFeatured(ctx, false, "Missingno"), bingo.ErrUnknownFeatured)
	assert.Equal(t, wiped, s.Snapshot())
	assert.Equal(t, saves, mem.Saves(), "nothing saved on failure")

	require.NoError(t, s.Undo(ctx))
	assert.NotEqual(t, wiped.Grid, s.Snapshot().Grid, "undo still reverts the wipe")
}

func TestOperations(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, store.NewMemoryStore())

	st, err := s.Toggle(ctx, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, bingo.StatusComplete, st)

	require.NoError(t, s.Replace(ctx, 0, 4, false, "custom"))
	v := s.View()
	assert.Equal(t, "custom", v.Cells[0][4].Content)
	assert.Equal(t, bingo.StatusIncomplete, v.Cells[0][4].Status)

	prev := v.CurrentFeatured
	require.NoError(t, s.ReplaceFeatured(ctx, true, ""))
	assert.NotEqual(t, prev, s.View().CurrentFeatured)

	added, err := s.AddObjective(ctx, "brand new")
	require.NoError(t, err)
	assert.True(t, added)
	removed, err := s.RemoveObjective(ctx, "brand new")
	require.NoError(t, err)
	assert.True(t, removed)
	_, err = s.RemoveObjective(ctx, "custom")
	require.ErrorIs(t, err, bingo.ErrObjectiveInUse)

	require.NoError(t, s.SetObjectiveStatus(ctx, "objective 00", bingo.StatusComplete))
	require.NoError(t, s.Reset(ctx))
	for _, e := range s.Objectives() {
		assert.Equal(t, bingo.StatusIncomplete, e.Status)
	}
	assert.Equal(t, featured, s.Featured())
}

func TestExportList(t *testing.T) {
	s := newSession(t, store.NewMemoryStore())
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, s.ExportList(path))

	got, err := objectives.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, labels(30), got)
}

func TestReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.json")
	s := newSession(t, store.NewFileStore(path))

	changed, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "own save is not a change")

	// Another process toggles a cell in the same file.
	other, err := Open(ctx, store.NewFileStore(path), featured)
	require.NoError(t, err)
	_, err = other.Toggle(ctx, 4, 0)
	require.NoError(t, err)

	mine := s.Snapshot()
	changed, err = s.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, other.Snapshot(), s.Snapshot())

	require.NoError(t, s.Undo(ctx))
	assert.Equal(t, mine, s.Snapshot(), "a reload can be undone")
}

func TestReload_CorruptFileKeepsBoard(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.json")
	s := newSession(t, store.NewFileStore(path))
	before := s.Snapshot()

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	_, err := s.Reload(ctx)
	require.ErrorIs(t, err, bingo.ErrDeserialization)
	assert.Equal(t, before, s.Snapshot())
}

// hookStore wraps a Memory store with a switchable save failure and a hook
// that runs inside Load.
type hookStore struct {
	*store.Memory
	saveErr error
	onLoad  func()
}

func (h *hookStore) Save(ctx context.Context, snap bingo.Snapshot) error {
	if h.saveErr != nil {
		return h.saveErr
	}
	return h.Memory.Save(ctx, snap)
}

func (h *hookStore) Load(ctx context.Context) (bingo.Snapshot, error) {
	if h.onLoad != nil {
		h.onLoad()
	}
	return h.Memory.Load(ctx)
}

func TestFailedSaveLeavesBoardUnchanged(t *testing.T) {
	ctx := context.Background()
	st := &hookStore{Memory: store.NewMemoryStore()}
	s := newSession(t, st)
	require.NoError(t, s.Shuffle(ctx))
	shuffled := s.Snapshot()

	diskFull := errors.New("disk full")
	st.saveErr = diskFull
	_, err := s.Toggle(ctx, 0, 0)
	require.ErrorIs(t, err, diskFull)
	require.ErrorIs(t, s.Wipe(ctx), diskFull)
	assert.Equal(t, shuffled, s.Snapshot(), "memory matches the last save")

	require.ErrorIs(t, s.Undo(ctx), diskFull)
	assert.Equal(t, shuffled, s.Snapshot())
	assert.True(t, s.CanUndo(), "undo slot survives a failed save")

	st.saveErr = nil
	require.NoError(t, s.Undo(ctx))
	assert.NotEqual(t, shuffled.Grid, s.Snapshot().Grid, "undo still reverts the shuffle")
}

func TestReload_ReadsStoreUnderLock(t *testing.T) {
	ctx := context.Background()
	st := &hookStore{Memory: store.NewMemoryStore()}
	s := newSession(t, st)

	var locked bool
	st.onLoad = func() {
		locked = !s.mu.TryLock()
		if !locked {
			s.mu.Unlock()
		}
	}
	changed, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, locked, "store read while holding the session lock")
}

func TestReload_AfterQueuedMutationKeepsIt(t *testing.T) {
	ctx := context.Background()
	st := &hookStore{Memory: store.NewMemoryStore()}
	s := newSession(t, st)

	// The mutation is started while Reload is inside Load, the way a web
	// request races the watcher callback of an earlier save.
	done := make(chan error, 1)
	st.onLoad = func() {
		st.onLoad = nil
		go func() {
			_, err := s.Toggle(ctx, 0, 0)
			done <- err
		}()
	}
	_, err := s.Reload(ctx)
	require.NoError(t, err)
	require.NoError(t, <-done)

	cell, err := s.board.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, bingo.StatusComplete, cell.Status, "toggle survives the reload")

	changed, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "the toggle's own save is not a change")
	saved, err := st.Memory.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot().Checksum, saved.Checksum)
}
