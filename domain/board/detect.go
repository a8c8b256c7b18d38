package board

// Result is the outcome of a win check. Winner is empty while the game goes
// on, DrawWinner on a draw. Missing lists columns that could not be read.
type Result struct {
	Winner    string     `json:"winner,omitempty"`
	Type      WinType    `json:"win_type,omitempty"`
	Positions []Position `json:"positions,omitempty"`
	Missing   []int      `json:"missing_columns,omitempty"`
}

func (r Result) Over() bool { return r.Winner != "" }

func (r Result) IsDraw() bool { return r.Type == Draw }

type step struct {
	kind   WinType
	dc, dr int
}

// Evaluate scans horizontal, vertical, rising and falling lines in that
// order and returns the first four-in-a-row found. A full board without a
// line is a draw.
func Evaluate(b *Board) Result {
	w, h := b.width, b.height
	last := WinLength - 1

	for row := 0; row < h; row++ {
		for col := 0; col+last < w; col++ {
			if r, ok := b.line(col, row, step{Horizontal, 1, 0}); ok {
				return r
			}
		}
	}
	for col := 0; col < w; col++ {
		for row := 0; row+last < h; row++ {
			if r, ok := b.line(col, row, step{Vertical, 0, 1}); ok {
				return r
			}
		}
	}
	for col := 0; col+last < w; col++ {
		for row := last; row < h; row++ {
			if r, ok := b.line(col, row, step{DiagonalRising, 1, -1}); ok {
				return r
			}
		}
	}
	for col := 0; col+last < w; col++ {
		for row := 0; row+last < h; row++ {
			if r, ok := b.line(col, row, step{DiagonalFalling, 1, 1}); ok {
				return r
			}
		}
	}

	if w > 0 && b.full() {
		return Result{Winner: DrawWinner, Type: Draw}
	}
	return Result{}
}

func (b *Board) line(col, row int, s step) (Result, bool) {
	owner := b.cells[col][row]
	if owner == "" {
		return Result{}, false
	}
	positions := make([]Position, 0, WinLength)
	for i := 0; i < WinLength; i++ {
		c, r := col+i*s.dc, row+i*s.dr
		if b.cells[c][r] != owner {
			return Result{}, false
		}
		positions = append(positions, Position{Column: c, Row: r})
	}
	return Result{Winner: owner, Type: s.kind, Positions: positions}, true
}
