package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tenpin/internal/roll"
	"github.com/roach88/tenpin/internal/turn"
)

// Scenario defines a lane scenario: a flow of throws and raw ticks run
// through the engine, followed by assertions on the trace, the scoreboard
// and the journal.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Mode is the starting mode, "scoring" (default) or "freeplay".
	Mode string `yaml:"mode,omitempty"`

	// Tuning is an optional tuning file, relative to the scenario file.
	Tuning string `yaml:"tuning,omitempty"`

	// Flow is executed in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the trace, the final board and the journal.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one of: a run of scripted throws (rolls or notation), a number
// of idle ticks, or one explicit tick.
type FlowStep struct {
	// Rolls scripts one valid throw per entry, knocking down that many of the
	// pins standing when the throw starts.
	Rolls []int `yaml:"rolls,omitempty"`

	// Notation is the same as Rolls written as score-sheet marks, "X 7 /".
	Notation string `yaml:"notation,omitempty"`

	// Invalid scripts that many throws released straight onto the ground.
	Invalid int `yaml:"invalid,omitempty"`

	// Idle runs that many ticks with the ball at rest.
	Idle int `yaml:"idle,omitempty"`

	Tick `yaml:",inline"`
}

// Tick is one explicit simulation tick.
type Tick struct {
	// Actions are "release", "grab", "reset", "new_game", "freeplay" and
	// "scoring".
	Actions []string `yaml:"actions,omitempty"`

	// Player names the player of a new_game action.
	Player string `yaml:"player,omitempty"`

	// Knock lists pins observed lying down this tick.
	Knock []int `yaml:"knock,omitempty"`

	// Pins are raw pin observations.
	Pins []PinStep `yaml:"pins,omitempty"`

	// Ball is the ball sample. Without one the ball is rolling freely with no
	// contacts.
	Ball *BallStep `yaml:"ball,omitempty"`

	// DTMillis overrides the tick length.
	DTMillis int `yaml:"dt_ms,omitempty"`

	// Repeat runs the tick this many times. Actions fire on the first only.
	Repeat int `yaml:"repeat,omitempty"`
}

// PinStep is one raw pin observation.
type PinStep struct {
	ID     int        `yaml:"id"`
	Up     [3]float64 `yaml:"up"`
	Height float64    `yaml:"height"`
}

// BallStep is one raw ball sample.
type BallStep struct {
	Contacts []string `yaml:"contacts,omitempty"`
	Speed    float64  `yaml:"speed,omitempty"`
	Distance float64  `yaml:"distance,omitempty"`
	Sleeping bool     `yaml:"sleeping,omitempty"`
}

// FrameExpect is the expected state of one frame. A nil Rolls is not checked.
// A nil Total expects the frame to be pending.
type FrameExpect struct {
	Rolls []string `yaml:"rolls,omitempty"`
	Total *int     `yaml:"total"`
}

// Assertion validates trace, board or journal state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": a trace entry of Kind (and Frame, Roll, Detail) exists
	// - "trace_order": entries of Kinds appear in order
	// - "trace_count": entries of Kind appear exactly Count times
	// - "board": the final scoreboard matches Expect
	// - "frames": the final frames match Frames
	// - "final_state": a journal table row matching Where matches Expect
	Type string `yaml:"type"`

	Kind   string `yaml:"kind,omitempty"`
	Frame  *int   `yaml:"frame,omitempty"`
	Roll   *int   `yaml:"roll,omitempty"`
	Detail string `yaml:"detail,omitempty"`

	Kinds []string `yaml:"kinds,omitempty"`
	Count int      `yaml:"count,omitempty"`

	Frames []FrameExpect `yaml:"frames,omitempty"`

	Table  string         `yaml:"table,omitempty"`
	Where  map[string]any `yaml:"where,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertBoard         = "board"
	AssertFrames        = "frames"
	AssertFinalState    = "final_state"
)

var actionNames = map[string]func(player string) turn.Action{
	"release":  func(string) turn.Action { return turn.Release() },
	"grab":     func(string) turn.Action { return turn.Grab() },
	"reset":    func(string) turn.Action { return turn.Reset() },
	"new_game": turn.NewGame,
	"freeplay": func(string) turn.Action { return turn.SwitchMode(turn.ModeFreeplay) },
	"scoring":  func(string) turn.Action { return turn.SwitchMode(turn.ModeScoring) },
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative tuning path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Tuning != "" && !filepath.IsAbs(scenario.Tuning) {
		scenario.Tuning = filepath.Join(filepath.Dir(path), scenario.Tuning)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Mode != "" {
		if _, err := turn.ParseMode(s.Mode); err != nil {
			return err
		}
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *FlowStep) error {
	kinds := 0
	if len(step.Rolls) > 0 {
		kinds++
	}
	if step.Notation != "" {
		kinds++
	}
	if step.Invalid > 0 {
		kinds++
	}
	if step.Idle > 0 {
		kinds++
	}
	if !step.Tick.empty() {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("flow[%d]: exactly one of rolls, notation, invalid, idle or a tick is required", index)
	}

	for _, n := range step.Rolls {
		if n < 0 || n > 10 {
			return fmt.Errorf("flow[%d]: roll %d out of range", index, n)
		}
	}
	for _, name := range step.Actions {
		if _, ok := actionNames[name]; !ok {
			return fmt.Errorf("flow[%d]: unknown action %q", index, name)
		}
	}
	if step.Ball != nil {
		if _, err := roll.Zones(step.Ball.Contacts...); err != nil {
			return fmt.Errorf("flow[%d]: %w", index, err)
		}
	}
	if step.Repeat < 0 || step.DTMillis < 0 {
		return fmt.Errorf("flow[%d]: repeat and dt_ms must be non-negative", index)
	}
	return nil
}

func (t *Tick) empty() bool {
	return len(t.Actions) == 0 && t.Player == "" && len(t.Knock) == 0 && len(t.Pins) == 0 &&
		t.Ball == nil && t.DTMillis == 0 && t.Repeat == 0
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertBoard:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for board", index)
		}
	case AssertFrames:
		if len(a.Frames) == 0 || len(a.Frames) > 10 {
			return fmt.Errorf("assertions[%d]: frames must list 1 to 10 frames", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
