// Package roll decides when a physical throw has finished and whether it counts.
//
// The Lifecycle turns noisy per-tick ball samples into one discrete moment:
// the transition to Resolved. It owns two latches and one timer:
//
//   - the lane-touch latch, set the first time the ball touches the lane
//     before crossing the configured lane boundary, reset only by a new throw
//   - the terminal Resolved state, cleared only by Reset, Grab or Release
//   - the settle debounce, a tick-driven delay.Timer
//
// A throw that reaches the ground without ever touching the lane resolves
// invalid immediately. A throw that touched the lane starts the settle debounce
// on gutter or ground contact, and any throw starts it once the ball comes to
// rest, so a ball stuck somewhere unexpected still resolves. A debounce started
// by rest is cancelled as soon as the ball moves again; one started by contact
// runs to completion.
package roll

import (
	"log/slog"
	"time"

	"github.com/roach88/tenpin/internal/delay"
)

// Phase discriminates the lifecycle state variant.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseHeld
	PhaseThrown
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseHeld:
		return "held"
	case PhaseThrown:
		return "thrown"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// State is the tagged lifecycle state. TouchedLane is meaningful for Thrown
// (and carried into Resolved), Valid only for Resolved.
type State struct {
	Phase       Phase
	TouchedLane bool
	Settling    bool
	Valid       bool
}

// Resolved reports whether the state is terminal.
func (s State) Resolved() bool {
	return s.Phase == PhaseResolved
}

// Ball is one tick's worth of ball observation.
type Ball struct {
	Contacts Zone
	// Speed is the linear speed in m/s.
	Speed float64
	// Sleeping is the physics engine's at-rest flag.
	Sleeping bool
	// Distance is how far the ball is down-lane from the foul line, in metres.
	Distance float64
}

// Settings tune a Lifecycle.
type Settings struct {
	// LaneBoundary is the down-lane distance from the foul line past which a
	// lane contact no longer counts as touching the lane.
	LaneBoundary float64
	// SettleDelay is the debounce between the ball finishing and resolution.
	SettleDelay time.Duration
	// RestSpeed is the speed below which the ball counts as at rest even when
	// physics has not put it to sleep.
	RestSpeed float64
}

// DefaultSettings match a regulation lane: 60 ft from foul line to head pin,
// 5 s settle debounce.
func DefaultSettings() Settings {
	return Settings{
		LaneBoundary: 18.29,
		SettleDelay:  5 * time.Second,
		RestSpeed:    0.01,
	}
}

// Lifecycle tracks one throw from release to resolution.
type Lifecycle struct {
	settings Settings
	state    State
	settle   delay.Timer
	// atRest marks a debounce armed by rest rather than by contact.
	atRest bool
	logger *slog.Logger
}

// New creates an idle lifecycle.
func New(settings Settings, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{settings: settings, logger: logger}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return l.state
}

// SettlePending reports whether the settle debounce is armed.
func (l *Lifecycle) SettlePending() bool {
	return l.settle.Pending()
}

// Grab moves to Held and cancels any pending debounce, whatever the phase.
// Callers decide whether a grab is allowed.
func (l *Lifecycle) Grab() {
	l.atRest = false
	if left := l.settle.Remaining(); l.settle.Cancel() {
		l.logger.Debug("settle debounce cancelled by grab", "remaining", left)
	}
	l.state = State{Phase: PhaseHeld}
}

// Release starts a fresh throw, discarding any prior state and timer.
func (l *Lifecycle) Release() {
	l.atRest = false
	l.settle.Cancel()
	l.state = State{Phase: PhaseThrown}
}

// Reset returns to Idle and cancels any pending debounce.
func (l *Lifecycle) Reset() {
	l.atRest = false
	l.settle.Cancel()
	l.state = State{Phase: PhaseIdle}
}

// Observe feeds one tick of ball data. dt is the tick length, used to
// advance the settle debounce. Observations outside a throw are ignored.
func (l *Lifecycle) Observe(b Ball, dt time.Duration) State {
	if l.state.Phase != PhaseThrown {
		if l.state.Phase != PhaseResolved && b.Contacts.Any(ZoneLane|ZoneGutter|ZoneGround) {
			l.logger.Debug("ball contact without an active throw", "phase", l.state.Phase, "contacts", b.Contacts)
		}
		return l.state
	}

	if !l.state.TouchedLane && b.Contacts.Has(ZoneLane) && b.Distance < l.settings.LaneBoundary {
		l.state.TouchedLane = true
		l.logger.Debug("ball touched lane", "distance", b.Distance)
	}

	if !l.state.TouchedLane && b.Contacts.Has(ZoneGround) {
		l.settle.Cancel()
		l.atRest = false
		l.state = State{Phase: PhaseResolved, Valid: false}
		l.logger.Debug("throw invalid: reached ground without touching lane")
		return l.state
	}

	contact := l.state.TouchedLane && b.Contacts.Any(ZoneGutter|ZoneGround)
	resting := l.resting(b)
	if l.atRest && !resting && !contact {
		left := l.settle.Remaining()
		l.settle.Cancel()
		l.atRest = false
		l.state.Settling = false
		l.logger.Debug("settle debounce cancelled: ball moving again", "speed", b.Speed, "remaining", left)
		return l.state
	}

	if l.settle.Advance(dt) {
		l.atRest = false
		l.state = State{Phase: PhaseResolved, TouchedLane: l.state.TouchedLane, Valid: l.state.TouchedLane}
		l.logger.Debug("roll resolved", "valid", l.state.Valid)
		return l.state
	}

	if contact {
		l.atRest = false
	}
	if !l.settle.Pending() && (contact || resting) {
		l.settle.Start(l.settings.SettleDelay)
		l.atRest = !contact
		l.state.Settling = true
		l.logger.Debug("settle debounce started", "delay", l.settings.SettleDelay, "contacts", b.Contacts, "at_rest", l.atRest)
	}
	return l.state
}

func (l *Lifecycle) resting(b Ball) bool {
	return b.Sleeping || b.Speed < l.settings.RestSpeed
}
