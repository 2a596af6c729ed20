// internal/bingo/snapshot.go
//
// Snapshot is the single persisted and undo shape of a board.
//
//	{
//	  "version": 2,
//	  "id": "…",
//	  "size": 5,
//	  "featuredEnabled": true,
//	  "grid": [["label", …], …],
//	  "statuses": [[0, 1, …], …],
//	  "currentFeatured": "…",
//	  "catalog": [{"label": "…", "status": 0}, …],
//	  "checksum": "blake2b-256 hex"
//	}
//
// The objective catalog is stored inline so a save file is self-contained.
// Decode also accepts the older per-label status shape (legacy.go) and
// converts it; Encode always writes the shape above.

package bingo

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// SnapshotVersion is the version written by Encode.
const SnapshotVersion = 2

// Snapshot is an immutable value copy of a board's state. The featured
// catalog and the random source are process resources and are not part of it.
type Snapshot struct {
	Version         int        `json:"version"`
	ID              string     `json:"id"`
	Size            int        `json:"size"`
	FeaturedEnabled bool       `json:"featuredEnabled"`
	Grid            [][]string `json:"grid"`
	Statuses        [][]Status `json:"statuses"`
	CurrentFeatured string     `json:"currentFeatured"`
	Catalog         []Entry    `json:"catalog"`
	Checksum        string     `json:"checksum,omitempty"`
}

// Snapshot captures the board. The returned value shares no memory with it.
func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Version:         SnapshotVersion,
		ID:              b.id,
		Size:            b.size,
		FeaturedEnabled: b.featuredEnabled,
		Grid:            make([][]string, len(b.grid)),
		Statuses:        make([][]Status, len(b.grid)),
		CurrentFeatured: b.currentFeatured,
		Catalog:         b.Objectives(),
	}
	for r, row := range b.grid {
		s.Grid[r] = make([]string, len(row))
		s.Statuses[r] = make([]Status, len(row))
		for c, cell := range row {
			s.Grid[r][c] = cell.Content
			s.Statuses[r][c] = cell.Status
		}
	}
	s.Checksum = s.Sum()
	return s
}

// Restore replaces the board state with s. The featured catalog and random
// source are kept. On error the board is unchanged.
func (b *Board) Restore(s Snapshot) error {
	if b == nil {
		return ErrInactive
	}
	if err := s.Validate(); err != nil {
		return err
	}
	b.apply(s)
	return nil
}

// FromSnapshot rebuilds an active board from s without regenerating
// anything. featured is the process featured catalog.
func FromSnapshot(s Snapshot, featured []string, opts ...Option) (*Board, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	b := &Board{featured: cleanFeatured(featured), rng: processRand{}}
	for _, o := range opts {
		o(b)
	}
	b.apply(s)
	return b, nil
}

func (b *Board) apply(s Snapshot) {
	grid := newGrid(s.Size)
	for r := range grid {
		for c := range grid[r] {
			grid[r][c].Content = s.Grid[r][c]
			grid[r][c].Status = s.Statuses[r][c]
		}
	}
	b.id = s.ID
	b.size = s.Size
	b.featuredEnabled = s.FeaturedEnabled
	b.catalog = catalogFromEntries(s.Catalog)
	b.grid = grid
	b.currentFeatured = s.CurrentFeatured
	b.active = true
}

// Validate checks the structural invariants of s. Every failure wraps
// ErrDeserialization; nothing is coerced.
func (s Snapshot) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrDeserialization}, args...)...)
	}
	switch {
	case s.Size <= 0:
		return bad("size must be positive, got %d", s.Size)
	case s.FeaturedEnabled && s.Size%2 == 0:
		return bad("featured board with even size %d", s.Size)
	case len(s.Grid) != s.Size:
		return bad("grid has %d rows, size is %d", len(s.Grid), s.Size)
	case len(s.Statuses) != s.Size:
		return bad("statuses has %d rows, size is %d", len(s.Statuses), s.Size)
	}

	catalog := make(map[string]struct{}, len(s.Catalog))
	for _, e := range s.Catalog {
		if e.Label == "" || e.Label != strings.TrimSpace(e.Label) {
			return bad("catalog label %q is blank or not trimmed", e.Label)
		}
		if _, dup := catalog[e.Label]; dup {
			return bad("catalog label %q appears twice", e.Label)
		}
		if e.Status < 0 {
			return bad("catalog label %q has negative status", e.Label)
		}
		catalog[e.Label] = struct{}{}
	}

	center := s.Size / 2
	placed := make(map[string]struct{}, s.Size*s.Size)
	for r := 0; r < s.Size; r++ {
		if len(s.Grid[r]) != s.Size || len(s.Statuses[r]) != s.Size {
			return bad("row %d does not have %d columns", r, s.Size)
		}
		for c := 0; c < s.Size; c++ {
			if s.Statuses[r][c] < 0 {
				return bad("cell (%d,%d) has negative status", r, c)
			}
			content := s.Grid[r][c]
			if s.FeaturedEnabled && r == center && c == center {
				if content == "" || content != s.CurrentFeatured {
					return bad("center cell %q does not match featured item %q", content, s.CurrentFeatured)
				}
				continue
			}
			if _, ok := catalog[content]; !ok {
				return bad("cell (%d,%d) holds %q, which is not in the catalog", r, c, content)
			}
			if _, dup := placed[content]; dup {
				return bad("label %q is placed twice", content)
			}
			placed[content] = struct{}{}
		}
	}
	return nil
}

// Sum returns the BLAKE2b-256 checksum of s, ignoring the Checksum field.
func (s Snapshot) Sum() string {
	s.Checksum = ""
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Encode serializes s in the canonical shape.
func Encode(s Snapshot) ([]byte, error) {
	s.Version = SnapshotVersion
	s.Checksum = s.Sum()
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses a snapshot in the canonical or the legacy shape and
// validates it. A present checksum must match.
func Decode(data []byte) (Snapshot, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if isLegacy(probe) {
		return decodeLegacy(probe)
	}

	var s Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	for _, field := range []string{"size", "grid", "statuses", "catalog"} {
		if _, ok := probe[field]; !ok {
			return Snapshot{}, fmt.Errorf("%w: missing field %q", ErrDeserialization, field)
		}
	}
	if s.Checksum != "" && s.Checksum != s.Sum() {
		return Snapshot{}, fmt.Errorf("%w: checksum mismatch", ErrDeserialization)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
