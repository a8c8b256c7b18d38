package column

import "fmt"

func NewGrid(columnID int) Grid {
	return Grid{ColumnID: columnID, Cells: make([]string, Height)}
}

// Clone returns a deep copy of g.
func (g Grid) Clone() Grid {
	c := g
	c.Cells = append([]string(nil), g.Cells...)
	return c
}

func (g Grid) Full() bool {
	for _, c := range g.Cells {
		if c == "" {
			return false
		}
	}
	return true
}

// Discs returns the occupied cells from top to bottom.
func (g Grid) Discs() []string {
	discs := make([]string, 0, len(g.Cells))
	for _, c := range g.Cells {
		if c != "" {
			discs = append(discs, c)
		}
	}
	return discs
}

// Validate checks the structural invariants of a grid received from outside.
func (g Grid) Validate() error {
	if len(g.Cells) != Height {
		return fmt.Errorf("%w: %d cells, want %d", ErrInvalidGrid, len(g.Cells), Height)
	}
	if g.BlockTurnsRemaining < 0 {
		return fmt.Errorf("%w: negative block counter", ErrInvalidGrid)
	}
	if g.IsBlocked && g.BlockTurnsRemaining == 0 {
		return fmt.Errorf("%w: blocked with no turns remaining", ErrInvalidGrid)
	}
	return nil
}

// normalize pads or trims Cells to Height.
func (g *Grid) normalize() {
	switch {
	case len(g.Cells) < Height:
		g.Cells = append(g.Cells, make([]string, Height-len(g.Cells))...)
	case len(g.Cells) > Height:
		g.Cells = g.Cells[:Height]
	}
}

// Settle lays discs out contiguously against the current gravity edge,
// keeping their order: the bottom edge under normal gravity, the top edge
// when flipped.
func (g *Grid) Settle(discs []string) {
	cells := make([]string, Height)
	if g.IsFlipped {
		copy(cells, discs)
	} else {
		copy(cells[Height-len(discs):], discs)
	}
	g.Cells = cells
}

// Drop places a disc for playerID and returns the row it landed on.
//
// A blocked column consumes one turn of its block instead of accepting the
// disc. Under normal gravity occupied cells are compacted to the bottom first;
// flipped gravity takes the lowest empty index as is.
func (g *Grid) Drop(playerID string) (int, error) {
	g.normalize()
	if g.IsBlocked {
		if g.BlockTurnsRemaining > 0 {
			g.BlockTurnsRemaining--
		}
		if g.BlockTurnsRemaining == 0 {
			g.IsBlocked = false
		}
		return 0, ErrBlocked
	}
	if g.Full() {
		return 0, ErrFull
	}

	if g.IsFlipped {
		for i := 0; i < Height; i++ {
			if g.Cells[i] == "" {
				g.Cells[i] = playerID
				return i, nil
			}
		}
	} else {
		g.Settle(g.Discs())
		for i := Height - 1; i >= 0; i-- {
			if g.Cells[i] == "" {
				g.Cells[i] = playerID
				return i, nil
			}
		}
	}
	return 0, ErrFull
}

// Block overwrites any existing block. Non-positive turns mean one turn.
func (g *Grid) Block(turns int) {
	if turns <= 0 {
		turns = 1
	}
	g.IsBlocked = true
	g.BlockTurnsRemaining = turns
}

func (g *Grid) Flip() {
	g.normalize()
	g.IsFlipped = !g.IsFlipped
	g.Settle(g.Discs())
}

// Clear empties every cell and keeps the block and gravity flags.
func (g *Grid) Clear() {
	g.Cells = make([]string, Height)
}
