// Package board assembles per-column grids into a full board and decides
// whether the game is over.
package board

import "fmt"

const WinLength = 4

type WinType string

const (
	Horizontal      WinType = "horizontal"
	Vertical        WinType = "vertical"
	DiagonalRising  WinType = "diagonal_rising"
	DiagonalFalling WinType = "diagonal_falling"
	Draw            WinType = "draw"
)

// DrawWinner is the winner reported for a full board without a line.
const DrawWinner = "draw"

type Position struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// Board is indexed [column][row]; row 0 is the top.
type Board struct {
	width, height int
	cells         [][]string
}

func New(width, height int) *Board {
	cells := make([][]string, width)
	for c := range cells {
		cells[c] = make([]string, height)
	}
	return &Board{width: width, height: height, cells: cells}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) At(col, row int) string { return b.cells[col][row] }

func (b *Board) Set(col, row int, owner string) { b.cells[col][row] = owner }

// SetColumn copies cells into column col, ignoring rows past the board height.
func (b *Board) SetColumn(col int, cells []string) error {
	if col < 0 || col >= b.width {
		return fmt.Errorf("column %d outside board of width %d", col, b.width)
	}
	for row, owner := range cells {
		if row >= b.height {
			break
		}
		b.cells[col][row] = owner
	}
	return nil
}

func (b *Board) full() bool {
	for _, col := range b.cells {
		for _, owner := range col {
			if owner == "" {
				return false
			}
		}
	}
	return true
}
