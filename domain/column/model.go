package column

import "errors"

// Height is the number of cells in every column.
const Height = 6

var (
	ErrBlocked        = errors.New("column is blocked")
	ErrFull           = errors.New("column is full")
	ErrNotFound       = errors.New("column state not found for this room")
	ErrColumnMismatch = errors.New("column id mismatch")
	ErrInvalidGrid    = errors.New("invalid column state")
)

// Grid is one column of one room. An empty string marks an empty cell;
// index 0 is the top of the board.
type Grid struct {
	ColumnID            int      `json:"column_id"`
	Cells               []string `json:"cells"`
	IsBlocked           bool     `json:"is_blocked"`
	BlockTurnsRemaining int      `json:"block_turns_remaining"`
	IsFlipped           bool     `json:"is_flipped"`
}
