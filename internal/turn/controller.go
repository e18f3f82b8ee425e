// Package turn wires the pin set, the roll lifecycle and the scoring session
// into one per-tick state machine.
//
// The Controller exclusively owns the session, the pin set and the lifecycle.
// Collaborators feed it one Input per simulation tick and read back commands,
// events and snapshots; nothing else mutates the game.
//
// In scoring mode a resolved valid throw turns into exactly one RecordRoll
// call followed by one reset command chosen by DecideReset. Freeplay skips
// scoring: grabbing the ball sweeps fallen pins at once and a cleared deck
// re-racks itself after a fixed delay.
package turn

import (
	"log/slog"
	"time"

	"github.com/roach88/tenpin/internal/delay"
	"github.com/roach88/tenpin/internal/pins"
	"github.com/roach88/tenpin/internal/roll"
	"github.com/roach88/tenpin/internal/scoring"
)

// IDSource hands out game session identifiers.
type IDSource interface {
	Generate() string
}

// Settings tune a Controller.
type Settings struct {
	Mode        Mode
	Thresholds  pins.Thresholds
	Lifecycle   roll.Settings
	RerackDelay time.Duration
}

// DefaultSettings start a scored game with regulation tuning.
func DefaultSettings() Settings {
	return Settings{
		Mode:        ModeScoring,
		Thresholds:  pins.DefaultThresholds(),
		Lifecycle:   roll.DefaultSettings(),
		RerackDelay: 5 * time.Second,
	}
}

// Controller is the turn state machine.
type Controller struct {
	settings Settings
	ids      IDSource
	logger   *slog.Logger

	gate       Gate
	pins       *pins.PinSet
	life       *roll.Lifecycle
	session    *scoring.Session
	downBefore int
	rerack     delay.Timer

	out Output
}

// New builds a controller with a full rack. In scoring mode a session is
// started immediately and announced on the first tick.
func New(settings Settings, ids IDSource, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		settings: settings,
		ids:      ids,
		logger:   logger,
		gate:     NewGate(settings.Mode),
		pins:     pins.NewPinSet(settings.Thresholds),
		life:     roll.New(settings.Lifecycle, logger),
	}
	if c.gate.Scoring() {
		c.startSession("")
	}
	return c
}

// Tick applies one tick of input: actions first, in order, then pin
// observations, then the ball sample and timers.
func (c *Controller) Tick(in Input) Output {
	for _, a := range in.Actions {
		c.apply(a)
	}

	for _, o := range in.Pins {
		if _, err := c.pins.Update(o); err != nil {
			c.anomaly(err)
		}
	}

	if c.gate.Scoring() {
		c.observe(in.Ball, in.DT)
	} else {
		c.freeplay(in.DT)
	}

	out := c.out
	out.Fallen = c.pins.FallenIDs()
	c.out = Output{}
	return out
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.gate.Mode() }

// GameID returns the active session id, or "" in freeplay.
func (c *Controller) GameID() string {
	if c.session == nil {
		return ""
	}
	return c.session.ID()
}

// Board snapshots the active session. Freeplay yields an empty board.
func (c *Controller) Board() scoring.Scoreboard {
	if c.session == nil {
		return scoring.Scoreboard{}
	}
	return c.session.Board()
}

// BallState returns the lifecycle state.
func (c *Controller) BallState() roll.State { return c.life.State() }

// SettlePending reports whether the turn-completion debounce is armed.
func (c *Controller) SettlePending() bool { return c.life.SettlePending() }

// RerackPending reports whether the freeplay re-rack timer is armed.
func (c *Controller) RerackPending() bool { return c.rerack.Pending() }

// Standing returns the ids of pins still standing on the deck.
func (c *Controller) Standing() []int { return c.pins.Standing() }

// PinsDownBefore is the baseline the next valid throw is measured against.
func (c *Controller) PinsDownBefore() int { return c.downBefore }

func (c *Controller) apply(a Action) {
	switch a.Kind {
	case ActionRelease:
		c.release()
	case ActionGrab:
		c.grab()
	case ActionModeChange:
		c.switchMode(a.Mode)
	case ActionReset:
		c.explicitReset()
	case ActionNewGame:
		c.newGame(a.Player)
	default:
		c.anomaly(fmtSequence("unknown action %d", a.Kind))
	}
}

func (c *Controller) release() {
	if !c.gate.Scoring() {
		return
	}
	if c.session.GameOver() {
		c.anomaly(wrapSequence("release ignored", scoring.ErrGameOver))
		return
	}
	c.life.Release()
	c.logger.Debug("throw released", "game", c.session.ID(), "frame", c.session.FrameIndex()+1, "roll", c.session.RollIndex()+1)
}

func (c *Controller) grab() {
	if !c.gate.Scoring() {
		if cleared := c.pins.ClearFallen(); len(cleared) > 0 {
			c.command(Command{Policy: ClearFallenOnly, Cleared: cleared})
		}
		return
	}
	if !c.gate.AllowGrab(c.life.State()) {
		c.anomaly(fmtSequence("grab rejected while the ball is on the lane"))
		return
	}
	c.life.Grab()
}

func (c *Controller) switchMode(m Mode) {
	if !c.gate.Set(m) {
		return
	}
	c.logger.Info("mode changed", "mode", m)
	c.emit(Event{Kind: EventModeChanged, Mode: m})
	c.cancelRerack()
	c.life.Reset()
	if m == ModeScoring {
		c.startSession("")
	} else {
		c.session = nil
	}
	c.reset(FullRack)
}

func (c *Controller) newGame(player string) {
	if c.gate.Set(ModeScoring) {
		c.logger.Info("mode changed", "mode", ModeScoring)
		c.emit(Event{Kind: EventModeChanged, Mode: ModeScoring})
	}
	c.cancelRerack()
	c.life.Reset()
	c.startSession(player)
	c.reset(FullRack)
}

// explicitReset discards the in-flight throw and restores the deck the
// current ball expects.
func (c *Controller) explicitReset() {
	c.cancelRerack()
	c.life.Reset()
	if c.gate.Scoring() && !c.session.FreshRack() {
		c.reset(ClearFallenOnly)
		return
	}
	c.reset(FullRack)
}

func (c *Controller) startSession(player string) {
	c.session = scoring.NewSession(c.ids.Generate())
	c.downBefore = 0
	c.logger.Info("game started", "game", c.session.ID(), "player", player)
	c.emit(Event{Kind: EventGameStarted, GameID: c.session.ID(), Mode: ModeScoring, Player: player})
}

func (c *Controller) observe(b roll.Ball, dt time.Duration) {
	st := c.life.Observe(b, dt)
	if st.Resolved() {
		c.resolve(st)
	}
}

func (c *Controller) resolve(st roll.State) {
	frame, rollIdx := c.session.FrameIndex(), c.session.RollIndex()
	c.life.Reset()

	if !st.Valid {
		c.logger.Info("throw discarded", "game", c.session.ID(), "frame", frame+1, "roll", rollIdx+1)
		c.emit(Event{Kind: EventRollDiscarded, GameID: c.session.ID(), Frame: frame, Roll: rollIdx})
		c.reset(DecideReset(frame, rollIdx, Outcome{}))
		return
	}

	delta := c.pins.DownCount() - c.downBefore
	if delta < 0 {
		delta = 0
	}
	rec, err := c.session.RecordRoll(delta)
	if err != nil {
		c.anomaly(err)
		c.reset(RespotBallOnly)
		return
	}

	over := c.session.GameOver()
	c.logger.Info("roll recorded", "game", c.session.ID(), "frame", frame+1, "roll", rollIdx+1, "result", rec, "total", c.session.Total())
	c.emit(Event{Kind: EventRollRecorded, GameID: c.session.ID(), Frame: frame, Roll: rollIdx, Record: rec})
	c.reset(DecideReset(frame, rollIdx, Outcome{Valid: true, Roll: rec, GameOver: over}))

	if over {
		c.logger.Info("game over", "game", c.session.ID(), "total", c.session.Total())
		c.emit(Event{Kind: EventGameOver, GameID: c.session.ID()})
	}
}

// freeplay advances the re-rack timer before arming it, so a deck that is
// still empty after a re-rack fires cannot re-arm within the same tick.
func (c *Controller) freeplay(dt time.Duration) {
	if c.rerack.Advance(dt) {
		c.logger.Debug("freeplay re-rack")
		c.emit(Event{Kind: EventRerack, Mode: ModeFreeplay})
		c.reset(FullRack)
	}
	if !c.rerack.Pending() && c.pins.AllDown() {
		c.rerack.Start(c.settings.RerackDelay)
		c.logger.Debug("all pins down, re-rack armed", "delay", c.settings.RerackDelay)
	}
}

func (c *Controller) cancelRerack() {
	if left := c.rerack.Remaining(); c.rerack.Cancel() {
		c.logger.Debug("freeplay re-rack cancelled", "remaining", left)
	}
}

func (c *Controller) reset(p ResetPolicy) {
	cmd := Command{Policy: p}
	switch p {
	case FullRack:
		cmd.Spots = c.pins.Rack(pins.MaxPins)
	case ClearFallenOnly:
		cmd.Cleared = c.pins.ClearFallen()
	}
	// The next ball is measured from the deck as it is now, so pins felled by
	// a discarded or aborted throw are never credited to it.
	c.downBefore = c.pins.DownCount()
	c.command(cmd)
}

func (c *Controller) command(cmd Command) {
	c.out.Commands = append(c.out.Commands, cmd)
}

func (c *Controller) emit(e Event) {
	c.out.Events = append(c.out.Events, e)
}

func (c *Controller) anomaly(err error) {
	c.logger.Debug("input ignored", "error", err)
	c.out.Anomalies = append(c.out.Anomalies, err)
}
