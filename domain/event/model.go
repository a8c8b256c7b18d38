package event

import "errors"

type Effect string

const (
	ShuffleColumns    Effect = "shuffle_columns"
	HideUI            Effect = "hide_ui"
	SpeedLimit        Effect = "speed_limit"
	GivePowerUps      Effect = "give_power_ups"
	SwapColumns       Effect = "swap_columns"
	ReverseAllGravity Effect = "reverse_all_gravity"
)

const (
	// GraceTurns is the number of opening turns that never trigger an event.
	GraceTurns = 3
	// TriggerChance is the probability of an event after each later turn.
	TriggerChance = 0.3
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrEffectFailed = errors.New("event effect failed")
)

type Definition struct {
	ID          string
	Name        string
	Description string
	Effect      Effect
	Duration    int
	Probability float64
}

func (d Definition) Event() Event {
	return Event{ID: d.ID, Name: d.Name, Description: d.Description, Effect: d.Effect, Duration: d.Duration}
}

var Catalog = []Definition{
	{"earthquake", "Earthquake", "Shuffles the discs in random columns", ShuffleColumns, 1, 0.15},
	{"blackout", "Blackout", "Hides the board UI for a limited time", HideUI, 2, 0.1},
	{"speed_round", "Speed Round", "Players have only 5 seconds to make a move", SpeedLimit, 3, 0.2},
	{"power_surge", "Power Surge", "All players get a random power-up", GivePowerUps, 1, 0.1},
	{"column_swap", "Column Swap", "Two random columns swap positions", SwapColumns, 1, 0.15},
	{"reverse_gravity", "Reverse Gravity", "All columns have reversed gravity", ReverseAllGravity, 2, 0.1},
}

func Lookup(id string) (Definition, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

type Event struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Effect      Effect `json:"effect"`
	Duration    int    `json:"duration"`
}

// ActiveEvent stays in its room's active set while the room's turn counter
// is below ActiveUntil.
type ActiveEvent struct {
	Event           Event    `json:"event"`
	ActiveUntil     int      `json:"active_until"`
	AffectedColumns []int    `json:"affected_columns"`
	AffectedPlayers []string `json:"affected_players"`
}

type EffectResult struct {
	Message         string   `json:"message,omitempty"`
	AffectedColumns []int    `json:"affected_columns"`
	AffectedPlayers []string `json:"affected_players"`
	// Failed lists columns the effect could not reach.
	Failed []int `json:"failed_columns,omitempty"`
}

// Trigger is what the scheduler reports to the coordinator.
type Trigger struct {
	RoomID string       `json:"room_id"`
	Turn   int          `json:"turn"`
	Event  Event        `json:"event"`
	Result EffectResult `json:"effect_result"`
}

type TurnOutcome struct {
	CurrentTurn  int           `json:"current_turn"`
	ActiveEvents []ActiveEvent `json:"active_events"`
	Triggered    *Trigger      `json:"event_triggered,omitempty"`
}

type roomState struct {
	Turn   int           `json:"turn"`
	Active []ActiveEvent `json:"active"`
}
