// internal/bingo/types.go
//
// Core type definitions for the bingo board engine.
// Defines:
//   - Status: per-cell completion marker (incomplete/complete).
//   - Cell:   one grid square and its own completion status.
//   - Entry:  one objective catalog record.
//   - View:   read-only projection of a board for renderers and transports.

package bingo

// Status is the completion marker of a cell.
// Values other than 0 and 1 are reserved for custom multi-state use and are
// preserved by shuffle and serialization.
type Status int

const (
	StatusIncomplete Status = 0
	StatusComplete   Status = 1
)

// Cell is a single grid square.
type Cell struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Content string `json:"content"` // objective label, or the featured item at the center
	Status  Status `json:"status"`
}

// Done reports whether the cell counts as completed.
func (c Cell) Done() bool { return c.Status == StatusComplete }

// Entry is an objective catalog record.
// Status is an "achieved" marker: 1 once a cell holding the label has been
// completed. The grid cell status stays the source of truth for display.
type Entry struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
}

// Config holds the construction parameters of a fresh board.
type Config struct {
	Size     int  // grid dimension (Size x Size)
	Featured bool // reserve the center cell for a featured item
}

// View is a deep copy of the visible board state.
type View struct {
	ID              string   `json:"id"`
	Size            int      `json:"size"`
	FeaturedEnabled bool     `json:"featuredEnabled"`
	CurrentFeatured string   `json:"currentFeatured"`
	Cells           [][]Cell `json:"cells"`
	Completed       int      `json:"completed"`
	Total           int      `json:"total"`
	Lines           int      `json:"lines"`
	Objectives      int      `json:"objectives"`
}
