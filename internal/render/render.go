// Package render draws a board with lipgloss for the CLI and the terminal UI.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/OriginOfChaos/Bearathon5/internal/bingo"
)

// Cell geometry. A rendered cell is CellWidth+2 columns by CellHeight+2
// lines including its border; the board starts after HeaderLines lines.
const (
	CellWidth   = 16
	CellHeight  = 3
	HeaderLines = 2
)

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorAccent  = lipgloss.Color("#FFD700")
	colorSuccess = lipgloss.Color("#00E676")
	colorMuted   = lipgloss.Color("#636363")
	colorWhite   = lipgloss.Color("#EEEEEE")
	colorSurface = lipgloss.Color("#1E1E2E")

	styleHeader = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)

	styleCell = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Foreground(colorWhite).
			Width(CellWidth).
			Height(CellHeight).
			MaxHeight(CellHeight+2).
			Padding(0, 1).
			Align(lipgloss.Center, lipgloss.Center)

	styleDone     = styleCell.BorderForeground(colorSuccess).Foreground(colorSuccess).Bold(true)
	styleFeatured = styleCell.BorderForeground(colorAccent).Foreground(colorAccent)
	styleCursor   = lipgloss.NewStyle().Background(colorSurface)
)

// Options tweak a rendering.
type Options struct {
	CursorRow, CursorCol int  // highlighted cell; ignored when NoCursor
	NoCursor             bool // render without a highlighted cell
}

// Header returns the one-line summary above the grid.
func Header(v bingo.View) string {
	line := fmt.Sprintf("Bingo %dx%d", v.Size, v.Size)
	stats := fmt.Sprintf("  %d/%d done · %d line(s) · %d objectives", v.Completed, v.Total, v.Lines, v.Objectives)
	if v.FeaturedEnabled {
		stats += " · featured: " + v.CurrentFeatured
	}
	return styleHeader.Render(line) + styleMuted.Render(stats)
}

// Board renders the header and the grid.
func Board(v bingo.View, opts Options) string {
	center := v.Size / 2
	rows := make([]string, 0, len(v.Cells))
	for r, row := range v.Cells {
		cells := make([]string, 0, len(row))
		for c, cell := range row {
			st := styleCell
			switch {
			case cell.Done():
				st = styleDone
			case v.FeaturedEnabled && r == center && c == center:
				st = styleFeatured
			}
			if !opts.NoCursor && r == opts.CursorRow && c == opts.CursorCol {
				st = st.Inherit(styleCursor).BorderStyle(lipgloss.ThickBorder())
			}
			cells = append(cells, st.Render(Truncate(cell.Content, (CellWidth-2)*CellHeight)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return Header(v) + "\n\n" + lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// CellAt maps a terminal position to a cell. ok is false outside the grid.
func CellAt(v bingo.View, x, y int) (row, col int, ok bool) {
	y -= HeaderLines
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	row, col = y/(CellHeight+2), x/(CellWidth+2)
	if row >= v.Size || col >= v.Size {
		return 0, 0, false
	}
	return row, col, true
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if n <= 1 || len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
