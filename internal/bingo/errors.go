// internal/bingo/errors.go
//
// Sentinel errors of the board engine.

package bingo

import "errors"

// Engine errors. Callers match them with errors.Is; returned errors wrap
// these sentinels with call-specific context.
var (
	// ErrConfiguration reports invalid construction parameters.
	ErrConfiguration = errors.New("invalid board configuration")

	// ErrInsufficientObjectives reports a catalog smaller than the number of
	// cells to fill.
	ErrInsufficientObjectives = errors.New("not enough objectives")

	// ErrEmptyCatalog reports a random draw with no valid alternative.
	ErrEmptyCatalog = errors.New("no alternative to draw from")

	// ErrDeserialization reports a malformed or inconsistent snapshot.
	ErrDeserialization = errors.New("invalid board snapshot")

	// ErrIndexOutOfRange reports cell coordinates outside [0, size).
	ErrIndexOutOfRange = errors.New("cell index out of range")

	// ErrInvalidLabel reports a blank label, a featured item used as an
	// objective, or a label missing from the catalog.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrDuplicateLabel reports a label already placed in another cell.
	ErrDuplicateLabel = errors.New("label already on the board")

	// ErrUnknownFeatured reports a center pick outside the featured catalog.
	ErrUnknownFeatured = errors.New("unknown featured item")

	// ErrObjectiveInUse reports removal of a label that is on the grid.
	ErrObjectiveInUse = errors.New("objective is on the board")

	// ErrInactive reports an operation on a board that was never built.
	ErrInactive = errors.New("board is not active")
)
