package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
)

// run executes the root command. Flag values persist between runs in one
// process, so callers pass every flag they depend on.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeList(t *testing.T, dir string, n int) string {
	t.Helper()
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("objective %02d µ note %d", i, i)
	}
	path := filepath.Join(dir, "objectives.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

func TestBoardCommands(t *testing.T) {
	dir := t.TempDir()
	list := writeList(t, dir, 30)
	save := filepath.Join(dir, "board.json")

	out, err := run(t, "new", "--file", save, "--objectives", list, "--seed", "5", "--daily=false", "--force=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Bingo 5x5")

	_, err = run(t, "new", "--file", save, "--objectives", list, "--seed", "5", "--daily=false", "--force=false")
	require.ErrorContains(t, err, "already holds a board")

	out, err = run(t, "toggle", "--file", save, "0", "0")
	require.NoError(t, err)
	assert.Equal(t, "cell (0,0) done\n", out)

	out, err = run(t, "show", "--file", save, "--json")
	require.NoError(t, err)
	var v bingo.View
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.True(t, v.Cells[0][0].Done())
	assert.Equal(t, 30, v.Objectives)
	done := v.Cells[0][0].Content

	_, err = run(t, "objectives", "add", "--file", save, "extra goal")
	require.NoError(t, err)
	out, err = run(t, "objectives", "list", "--file", save)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+done+"\n")
	assert.Contains(t, out, "  extra goal\n")

	export := filepath.Join(dir, "export.txt")
	_, err = run(t, "export", "--file", save, export)
	require.NoError(t, err)
	data, err := os.ReadFile(export)
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(data), "\n"), 31)

	_, err = run(t, "toggle", "--file", save, "9", "9")
	require.ErrorIs(t, err, bingo.ErrIndexOutOfRange)

	_, err = run(t, "toggle", "--file", save, "x", "0")
	require.Error(t, err)
}

func TestOpenMissingBoard(t *testing.T) {
	_, err := run(t, "show", "--file", filepath.Join(t.TempDir(), "none.json"), "--json=false")
	require.ErrorContains(t, err, "bingo new")
}

func TestDailyBoardsMatch(t *testing.T) {
	dir := t.TempDir()
	list := writeList(t, dir, 40)
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.db")

	for _, save := range []string{a, b} {
		_, err := run(t, "new", "--file", save, "--objectives", list, "--daily", "--date", "2024-05-01", "--force=false")
		require.NoError(t, err)
	}

	var views [2]bingo.View
	for i, save := range []string{a, b} {
		out, err := run(t, "show", "--file", save, "--json")
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &views[i]))
	}
	assert.Equal(t, "daily-2024-05-01", views[0].ID)
	assert.Equal(t, views[0].Cells, views[1].Cells)
	assert.Equal(t, views[0].CurrentFeatured, views[1].CurrentFeatured)
}
