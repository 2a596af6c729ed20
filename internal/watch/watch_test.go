package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_FiresOnRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	fired := make(chan struct{}, 10)
	w, err := New(path, func() { fired <- struct{}{} })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	select {
	case <-fired:
		t.Fatal("callback fired for another file")
	case <-time.After(3 * Debounce):
	}

	// An atomic replace, as the file store does it.
	tmp := filepath.Join(dir, ".board.json-tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"a":1}`), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not fire")
	}
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")

	fired := make(chan struct{}, 10)
	w, err := New(path, func() { fired <- struct{}{} })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('0' + i)}, 0o644))
	}
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not fire")
	}
	select {
	case <-fired:
		t.Fatal("burst of writes fired more than once")
	case <-time.After(3 * Debounce):
	}
	assert.True(t, filepath.IsAbs(w.File))
}
