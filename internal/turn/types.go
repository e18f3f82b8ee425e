package turn

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/tenpin/internal/pins"
	"github.com/roach88/tenpin/internal/roll"
	"github.com/roach88/tenpin/internal/scoring"
)

// ErrOutOfSequence marks an action that arrived at a moment the turn cannot
// accept it, such as grabbing a ball that is rolling down the lane.
var ErrOutOfSequence = errors.New("action out of sequence")

func fmtSequence(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrOutOfSequence)...)
}

func wrapSequence(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrOutOfSequence, err)
}

// ActionKind enumerates discrete player and UI actions.
type ActionKind uint8

const (
	ActionRelease ActionKind = iota + 1
	ActionGrab
	ActionModeChange
	ActionReset
	ActionNewGame
)

func (k ActionKind) String() string {
	switch k {
	case ActionRelease:
		return "throw_released"
	case ActionGrab:
		return "ball_grabbed"
	case ActionModeChange:
		return "mode_changed"
	case ActionReset:
		return "explicit_reset"
	case ActionNewGame:
		return "start_new_game"
	default:
		return "unknown"
	}
}

// Action is one discrete input event.
type Action struct {
	Kind ActionKind
	// Mode is the target of ActionModeChange.
	Mode Mode
	// Player optionally names the bowler of ActionNewGame.
	Player string
}

// Release builds a throw-release action.
func Release() Action { return Action{Kind: ActionRelease} }

// Grab builds a ball-pickup action.
func Grab() Action { return Action{Kind: ActionGrab} }

// Reset builds an explicit reset request.
func Reset() Action { return Action{Kind: ActionReset} }

// NewGame builds a start-new-game request.
func NewGame(player string) Action { return Action{Kind: ActionNewGame, Player: player} }

// SwitchMode builds a mode change.
func SwitchMode(m Mode) Action { return Action{Kind: ActionModeChange, Mode: m} }

// Input is everything the scene collaborator reports for one tick.
type Input struct {
	Actions []Action
	Pins    []pins.Observation
	Ball    roll.Ball
	// DT is the fixed simulation step.
	DT time.Duration
}

// Command asks the scene collaborator to reset the deck and respot the ball.
type Command struct {
	Policy ResetPolicy
	// Spots is the fresh layout for FullRack.
	Spots []pins.Spot
	// Cleared lists the pins swept by ClearFallenOnly.
	Cleared []int
}

// EventKind enumerates what a tick can report besides commands.
type EventKind uint8

const (
	EventRollRecorded EventKind = iota + 1
	EventRollDiscarded
	EventGameStarted
	EventGameOver
	EventModeChanged
	EventRerack
)

func (k EventKind) String() string {
	switch k {
	case EventRollRecorded:
		return "roll_recorded"
	case EventRollDiscarded:
		return "roll_discarded"
	case EventGameStarted:
		return "game_started"
	case EventGameOver:
		return "game_over"
	case EventModeChanged:
		return "mode_changed"
	case EventRerack:
		return "rerack"
	default:
		return "unknown"
	}
}

// Event is a notable state change. GameOver carries nothing beyond asking the
// player whether to play again.
type Event struct {
	Kind   EventKind
	GameID string
	// Frame and Roll locate a recorded or discarded roll.
	Frame  int
	Roll   int
	Record scoring.RollRecord
	Mode   Mode
	Player string
}

// Output is the result of one tick.
type Output struct {
	Commands []Command
	Events   []Event
	// Fallen is the pin-state HUD feed for this tick.
	Fallen []int
	// Anomalies are inputs that were ignored. They never stop the tick.
	Anomalies []error
}
