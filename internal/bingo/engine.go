// internal/bingo/engine.go
//
// Board state engine for a single bingo game.
// Responsibilities:
//   - Create boards from an objective list and an optional featured catalog.
//   - Populate the grid by sampling objectives without replacement.
//   - Shuffle, replace, reset and toggle cells without breaking invariants.
//
// Notes:
//   - Every operation validates fully before mutating; a failed call leaves
//     the board unchanged.
//   - The engine keeps no history. Undo is built by callers on Snapshot and
//     Restore (snapshot.go).
//   - Randomness comes from an injected Rand (rand.go).
package bingo

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Board is the aggregate of one game: catalogs, grid and completion state.
// The zero value is an inactive placeholder; every operation on it fails
// with ErrInactive.
type Board struct {
	id              string
	size            int
	featuredEnabled bool
	catalog         *Catalog
	featured        []string // read-only featured catalog
	grid            [][]Cell
	currentFeatured string
	active          bool
	rng             Rand
}

// Option customizes a Board at construction.
type Option func(*Board)

// WithRand injects the random source.
func WithRand(r Rand) Option {
	return func(b *Board) {
		if r != nil {
			b.rng = r
		}
	}
}

// WithID overrides the generated board identifier.
func WithID(id string) Option {
	return func(b *Board) {
		if id != "" {
			b.id = id
		}
	}
}

// New constructs and populates a fresh board.
//
// Validation rules:
//   - Size must be positive.
//   - Size must be odd when Featured is set (the center cell must be unique).
//   - The featured catalog must not be empty when Featured is set.
func New(cfg Config, objectives, featured []string, opts ...Option) (*Board, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrConfiguration, cfg.Size)
	}
	fc := cleanFeatured(featured)
	if cfg.Featured {
		if cfg.Size%2 == 0 {
			return nil, fmt.Errorf("%w: size %d is even, featured center needs an odd size", ErrConfiguration, cfg.Size)
		}
		if len(fc) == 0 {
			return nil, fmt.Errorf("%w: featured catalog is empty", ErrConfiguration)
		}
	}

	b := &Board{
		id:              uuid.NewString(),
		size:            cfg.Size,
		featuredEnabled: cfg.Featured,
		catalog:         NewCatalog(objectives),
		featured:        fc,
		rng:             processRand{},
	}
	for _, o := range opts {
		o(b)
	}
	if err := b.populate(); err != nil {
		return nil, err
	}
	b.active = true
	return b, nil
}

// --------------------------------- accessors ---------------------------------

func (b *Board) ID() string { return b.id }
func (b *Board) Size() int { return b.size }
func (b *Board) FeaturedEnabled() bool { return b.featuredEnabled }
func (b *Board) CurrentFeatured() string { return b.currentFeatured }
func (b *Board) Active() bool { return b.active }

// FeaturedCatalog returns a copy of the featured catalog.
func (b *Board) FeaturedCatalog() []string { return append([]string(nil), b.featured...) }

// CenterCoordinates returns the center cell, (size/2, size/2).
func (b *Board) CenterCoordinates() (row, col int) { return b.size / 2, b.size / 2 }

// IsFeaturedCell reports whether (row, col) holds the featured item.
func (b *Board) IsFeaturedCell(row, col int) bool {
	if !b.featuredEnabled {
		return false
	}
	cr, cc := b.CenterCoordinates()
	return row == cr && col == cc
}

// Cell returns a copy of the cell at (row, col).
func (b *Board) Cell(row, col int) (Cell, error) {
	if err := b.ensureActive(); err != nil {
		return Cell{}, err
	}
	if err := b.checkBounds(row, col); err != nil {
		return Cell{}, err
	}
	return b.grid[row][col], nil
}

// Rows returns a deep copy of the grid.
func (b *Board) Rows() [][]Cell {
	out := make([][]Cell, len(b.grid))
	for i, row := range b.grid {
		out[i] = append([]Cell(nil), row...)
	}
	return out
}

// Objectives returns the catalog entries in order.
func (b *Board) Objectives() []Entry {
	if b.catalog == nil {
		return nil
	}
	return b.catalog.Entries()
}

// Progress reports completed and total cells.
func (b *Board) Progress() (completed, total int) {
	for _, row := range b.grid {
		for _, c := range row {
			if c.Done() {
				completed++
			}
		}
	}
	return completed, b.size * b.size
}

// Lines counts completed rows, columns and the two diagonals.
func (b *Board) Lines() int {
	if len(b.grid) != b.size || b.size == 0 {
		return 0
	}
	n := 0
	diag, anti := true, true
	for i := 0; i < b.size; i++ {
		row, col := true, true
		for j := 0; j < b.size; j++ {
			row = row && b.grid[i][j].Done()
			col = col && b.grid[j][i].Done()
		}
		if row {
			n++
		}
		if col {
			n++
		}
		diag = diag && b.grid[i][i].Done()
		anti = anti && b.grid[i][b.size-1-i].Done()
	}
	if diag {
		n++
	}
	if anti {
		n++
	}
	return n
}

// View returns a read-only projection of the board.
func (b *Board) View() View {
	done, total := b.Progress()
	v := View{
		ID:              b.id,
		Size:            b.size,
		FeaturedEnabled: b.featuredEnabled,
		CurrentFeatured: b.currentFeatured,
		Cells:           b.Rows(),
		Completed:       done,
		Total:           total,
		Lines:           b.Lines(),
	}
	if b.catalog != nil {
		v.Objectives = b.catalog.Len()
	}
	return v
}

// -------------------------------- operations ---------------------------------

// Populate regenerates the grid from the objectives not yet achieved and
// picks a new featured item. All cell statuses reset to 0.
func (b *Board) Populate() error {
	if err := b.ensureActive(); err != nil {
		return err
	}
	return b.populate()
}

// populate draws size*size objectives (minus the center when featured)
// without replacement. The pool is a copy of the available labels; each
// draw swap-removes its pick, so every remaining label is equally likely for
// the next cell and every arrangement is equally likely overall.
func (b *Board) populate() error {
	pool := b.catalog.available()
	if need := b.objectiveCells(); len(pool) < need {
		return fmt.Errorf("%w: %d cells need objectives, %d available", ErrInsufficientObjectives, need, len(pool))
	}

	featured := b.currentFeatured
	if b.featuredEnabled {
		f, err := b.pickFeatured(true)
		if err != nil {
			return err
		}
		featured = f
	}

	grid := newGrid(b.size)
	for r := range grid {
		for c := range grid[r] {
			if b.IsFeaturedCell(r, c) {
				grid[r][c].Content = featured
				continue
			}
			i := b.rng.IntN(len(pool))
			grid[r][c].Content = pool[i]
			pool[i] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]
		}
	}

	b.grid = grid
	b.currentFeatured = featured
	return nil
}

// Shuffle permutes the (content, status) pairs of the objective cells.
// The featured center keeps its place; no content or status changes.
func (b *Board) Shuffle() error {
	if err := b.ensureActive(); err != nil {
		return err
	}
	coords := b.objectiveCoords()
	cells := make([]Cell, len(coords))
	for i, p := range coords {
		cells[i] = b.grid[p[0]][p[1]]
	}
	for i := len(cells) - 1; i > 0; i-- {
		j := b.rng.IntN(i + 1)
		cells[i], cells[j] = cells[j], cells[i]
	}
	for i, p := range coords {
		b.grid[p[0]][p[1]].Content = cells[i].Content
		b.grid[p[0]][p[1]].Status = cells[i].Status
	}
	return nil
}

// Replace puts new content in one cell and resets its status to 0.
//
// Modes:
//   - useRandom on the featured center: a featured item different from the
//     current one (ErrEmptyCatalog when there is none).
//   - useRandom elsewhere: an objective not placed anywhere on the grid
//     (ErrEmptyCatalog when every objective is placed).
//   - manual on the featured center: label must be in the featured catalog.
//   - manual elsewhere: label is placed verbatim and added to the catalog if
//     new. Blank labels, featured labels and labels placed in another cell
//     are rejected.
func (b *Board) Replace(row, col int, useRandom bool, label string) error {
	if err := b.ensureActive(); err != nil {
		return err
	}
	if err := b.checkBounds(row, col); err != nil {
		return err
	}

	if b.IsFeaturedCell(row, col) {
		next := strings.TrimSpace(label)
		if useRandom {
			f, err := b.pickFeatured(false)
			if err != nil {
				return err
			}
			next = f
		} else if !b.isFeatured(next) {
			return fmt.Errorf("%w: %q", ErrUnknownFeatured, next)
		}
		b.currentFeatured = next
		b.grid[row][col].Content = next
		b.grid[row][col].Status = StatusIncomplete
		return nil
	}

	if useRandom {
		pool := b.unplaced()
		if len(pool) == 0 {
			return fmt.Errorf("%w: every objective is already on the board", ErrEmptyCatalog)
		}
		b.place(row, col, pool[b.rng.IntN(len(pool))])
		return nil
	}

	label = strings.TrimSpace(label)
	switch {
	case label == "":
		return fmt.Errorf("%w: empty label", ErrInvalidLabel)
	case b.featuredEnabled && b.isFeatured(label):
		return fmt.Errorf("%w: %q is a featured item", ErrInvalidLabel, label)
	}
	if r, c, ok := b.find(label); ok && (r != row || c != col) {
		return fmt.Errorf("%w: %q at (%d,%d)", ErrDuplicateLabel, label, r, c)
	}
	b.catalog.Add(label)
	b.place(row, col, label)
	return nil
}

// place puts an objective in a normal cell as incomplete. The label's
// achieved marker is cleared so it matches the cell.
func (b *Board) place(row, col int, label string) {
	b.grid[row][col].Content = label
	b.grid[row][col].Status = StatusIncomplete
	b.catalog.SetStatus(label, StatusIncomplete)
}

// ReplaceFeatured replaces the featured center cell.
func (b *Board) ReplaceFeatured(useRandom bool, label string) error {
	if err := b.ensureActive(); err != nil {
		return err
	}
	if !b.featuredEnabled {
		return fmt.Errorf("%w: board has no featured cell", ErrConfiguration)
	}
	r, c := b.CenterCoordinates()
	return b.Replace(r, c, useRandom, label)
}

// Reset clears every achieved marker and regenerates the board.
func (b *Board) Reset() error {
	if err := b.ensureActive(); err != nil {
		return err
	}
	saved := b.catalog.clone()
	b.catalog.ResetStatuses()
	if err := b.populate(); err != nil {
		b.catalog = saved
		return err
	}
	return nil
}

// ToggleStatus flips a cell between incomplete and complete and returns the
// new status. Any status other than 0 toggles down to 0.
func (b *Board) ToggleStatus(row, col int) (Status, error) {
	if err := b.ensureActive(); err != nil {
		return 0, err
	}
	if err := b.checkBounds(row, col); err != nil {
		return 0, err
	}
	cell := &b.grid[row][col]
	next := StatusComplete
	if cell.Status != StatusIncomplete {
		next = StatusIncomplete
	}
	cell.Status = next
	if !b.IsFeaturedCell(row, col) {
		b.catalog.SetStatus(cell.Content, next)
	}
	return next, nil
}

// AddObjective inserts a label into the catalog. It reports whether the label
// was new.
func (b *Board) AddObjective(label string) (bool, error) {
	if err := b.ensureActive(); err != nil {
		return false, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return false, fmt.Errorf("%w: empty label", ErrInvalidLabel)
	}
	if b.featuredEnabled && b.isFeatured(label) {
		return false, fmt.Errorf("%w: %q is a featured item", ErrInvalidLabel, label)
	}
	return b.catalog.Add(label), nil
}

// RemoveObjective deletes a label that is not placed on the grid.
// It reports whether the label existed.
func (b *Board) RemoveObjective(label string) (bool, error) {
	if err := b.ensureActive(); err != nil {
		return false, err
	}
	label = strings.TrimSpace(label)
	if r, c, ok := b.find(label); ok {
		return false, fmt.Errorf("%w: %q at (%d,%d)", ErrObjectiveInUse, label, r, c)
	}
	return b.catalog.Remove(label), nil
}

// SetObjectiveStatus sets the achieved marker of a catalog label.
func (b *Board) SetObjectiveStatus(label string, s Status) error {
	if err := b.ensureActive(); err != nil {
		return err
	}
	if s < 0 {
		return fmt.Errorf("%w: negative status %d", ErrInvalidLabel, s)
	}
	if !b.catalog.SetStatus(strings.TrimSpace(label), s) {
		return fmt.Errorf("%w: %q is not in the catalog", ErrInvalidLabel, label)
	}
	return nil
}

// --------------------------------- helpers -----------------------------------

// pickFeatured draws uniformly among featured items other than the current
// one. With no alternative it repeats the current item when allowRepeat is
// set (single-entry catalog at populate time) and fails otherwise.
func (b *Board) pickFeatured(allowRepeat bool) (string, error) {
	alts := make([]string, 0, len(b.featured))
	for _, f := range b.featured {
		if f != b.currentFeatured {
			alts = append(alts, f)
		}
	}
	if len(alts) == 0 {
		if allowRepeat && len(b.featured) > 0 {
			return b.featured[0], nil
		}
		return "", fmt.Errorf("%w: no featured item other than %q", ErrEmptyCatalog, b.currentFeatured)
	}
	return alts[b.rng.IntN(len(alts))], nil
}

// unplaced returns the catalog labels not present on the grid.
func (b *Board) unplaced() []string {
	placed := make(map[string]struct{}, b.size*b.size)
	for r, row := range b.grid {
		for c, cell := range row {
			if !b.IsFeaturedCell(r, c) {
				placed[cell.Content] = struct{}{}
			}
		}
	}
	var out []string
	for _, l := range b.catalog.Labels() {
		if _, ok := placed[l]; !ok {
			out = append(out, l)
		}
	}
	return out
}

// find locates an objective label on the grid, skipping the featured cell.
func (b *Board) find(label string) (row, col int, ok bool) {
	for r, cells := range b.grid {
		for c, cell := range cells {
			if cell.Content == label && !b.IsFeaturedCell(r, c) {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

func (b *Board) isFeatured(label string) bool {
	for _, f := range b.featured {
		if f == label {
			return true
		}
	}
	return false
}

// objectiveCells is the number of cells filled from the catalog.
func (b *Board) objectiveCells() int {
	n := b.size * b.size
	if b.featuredEnabled {
		n--
	}
	return n
}

// objectiveCoords lists the non-featured cells in row-major order.
func (b *Board) objectiveCoords() [][2]int {
	out := make([][2]int, 0, b.objectiveCells())
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			if !b.IsFeaturedCell(r, c) {
				out = append(out, [2]int{r, c})
			}
		}
	}
	return out
}

func (b *Board) checkBounds(row, col int) error {
	if row < 0 || row >= b.size || col < 0 || col >= b.size {
		return fmt.Errorf("%w: (%d,%d) on a %dx%d board", ErrIndexOutOfRange, row, col, b.size, b.size)
	}
	return nil
}

func (b *Board) ensureActive() error {
	if b == nil || !b.active {
		return ErrInactive
	}
	return nil
}

func newGrid(size int) [][]Cell {
	grid := make([][]Cell, size)
	for r := range grid {
		grid[r] = make([]Cell, size)
		for c := range grid[r] {
			grid[r][c] = Cell{Row: r, Col: c}
		}
	}
	return grid
}

// cleanFeatured trims the featured catalog and drops blanks and repeats.
func cleanFeatured(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
