package harness

import (
	"github.com/roach88/tenpin/internal/engine"
	"github.com/roach88/tenpin/internal/scoring"
	"github.com/roach88/tenpin/internal/turn"
)

// Trace entry types.
const (
	TraceEvent   = "event"
	TraceCommand = "command"
	TraceError   = "error"
)

// TraceEntry is one event, reset command or ignored input from a tick.
type TraceEntry struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"`
	// Kind is the event kind, reset policy or runtime error code.
	Kind   string `json:"kind"`
	Frame  int    `json:"frame"`
	Roll   int    `json:"roll"`
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Trace lists everything the engine reported, tick by tick.
	Trace []TraceEntry `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Board is the final scoreboard.
	Board scoring.Scoreboard `json:"board"`

	// Mode is the final game mode.
	Mode string `json:"mode"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddReport appends a tick's events, commands and errors to the trace.
func (r *Result) AddReport(rep engine.Report) {
	for _, ev := range rep.Events {
		r.Trace = append(r.Trace, eventEntry(rep.Seq, ev))
	}
	for _, cmd := range rep.Commands {
		r.Trace = append(r.Trace, TraceEntry{Seq: rep.Seq, Type: TraceCommand, Kind: cmd.Policy.String()})
	}
	for _, err := range rep.Errors {
		r.Trace = append(r.Trace, TraceEntry{Seq: rep.Seq, Type: TraceError, Kind: string(err.Code)})
	}
}

func eventEntry(seq int64, ev turn.Event) TraceEntry {
	e := TraceEntry{Seq: seq, Type: TraceEvent, Kind: ev.Kind.String()}
	switch ev.Kind {
	case turn.EventRollRecorded:
		e.Frame, e.Roll = ev.Frame, ev.Roll
		e.Detail = ev.Record.Symbol()
	case turn.EventRollDiscarded:
		e.Frame, e.Roll = ev.Frame, ev.Roll
	case turn.EventGameStarted, turn.EventGameOver:
		e.Detail = ev.GameID
	case turn.EventModeChanged, turn.EventRerack:
		e.Detail = ev.Mode.String()
	}
	return e
}
