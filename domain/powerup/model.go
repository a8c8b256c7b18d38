package powerup

import "errors"

type Kind string

const (
	DoubleDrop  Kind = "double_drop"
	UndoMove    Kind = "undo_move"
	ColumnBomb  Kind = "column_bomb"
	ColumnBlock Kind = "column_block"
	GravityFlip Kind = "gravity_flip"
	StealColumn Kind = "steal_column"
)

var (
	ErrUnknownPowerUp  = errors.New("unknown power-up")
	ErrNoUsesRemaining = errors.New("no uses remaining")
	ErrNotImplemented  = errors.New("power-up is not implemented")
	ErrInvalidTarget   = errors.New("invalid power-up target")
	ErrNotFound        = errors.New("power-ups not found for this player")
	ErrEffectFailed    = errors.New("power-up effect failed")
)

type Definition struct {
	Kind        Kind
	Name        string
	Description string
	InitialUses int
	Implemented bool
}

// Catalog lists every power-up a player starts with, in display order.
var Catalog = []Definition{
	{DoubleDrop, "Double Drop", "Place two discs in one turn", 1, true},
	{UndoMove, "Undo Move", "Undo the last move", 1, false},
	{ColumnBomb, "Column Bomb", "Remove all discs from a column", 1, true},
	{ColumnBlock, "Column Block", "Block a column for 1 turn", 1, true},
	{GravityFlip, "Gravity Flip", "Flip gravity in a column", 1, true},
	{StealColumn, "Steal Column", "Take control of a column for 1 turn", 1, false},
}

func Lookup(kind Kind) (Definition, bool) {
	for _, d := range Catalog {
		if d.Kind == kind {
			return d, true
		}
	}
	return Definition{}, false
}

type PowerUp struct {
	ID            Kind   `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	RemainingUses int    `json:"remaining_uses"`
}

type Inventory struct {
	PlayerID string           `json:"player_id"`
	PowerUps map[Kind]PowerUp `json:"power_ups"`
}

func newInventory(playerID string) Inventory {
	inv := Inventory{PlayerID: playerID, PowerUps: make(map[Kind]PowerUp, len(Catalog))}
	for _, d := range Catalog {
		inv.PowerUps[d.Kind] = PowerUp{
			ID:            d.Kind,
			Name:          d.Name,
			Description:   d.Description,
			RemainingUses: d.InitialUses,
		}
	}
	return inv
}

func (inv Inventory) clone() Inventory {
	cp := Inventory{PlayerID: inv.PlayerID, PowerUps: make(map[Kind]PowerUp, len(inv.PowerUps))}
	for k, p := range inv.PowerUps {
		cp.PowerUps[k] = p
	}
	return cp
}

// Target carries the columns a power-up acts on. Column is used by the
// single-column kinds, Column1 and Column2 by double drop.
type Target struct {
	Column  *int `json:"column,omitempty"`
	Column1 *int `json:"column1,omitempty"`
	Column2 *int `json:"column2,omitempty"`
}

type Drop struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// Effect describes what a power-up did to the board.
type Effect struct {
	Kind    Kind   `json:"kind"`
	Columns []int  `json:"columns"`
	Drops   []Drop `json:"drops,omitempty"`
	Blocked bool   `json:"blocked,omitempty"`
	Turns   int    `json:"turns,omitempty"`
	Flipped *bool  `json:"flipped,omitempty"`
	Bombed  bool   `json:"bombed,omitempty"`
}

type UseResult struct {
	PowerUp PowerUp `json:"power_up"`
	Effect  Effect  `json:"effect"`
}
