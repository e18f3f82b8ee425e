package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/tenpin/internal/canonical"
	"github.com/roach88/tenpin/internal/scoring"
	"github.com/roach88/tenpin/internal/store"
	"github.com/roach88/tenpin/internal/turn"
)

// DefaultTickRate is the simulation rate used when none is configured.
const DefaultTickRate = 60

// IDGenerator generates game session ids.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// Recorder receives the journal stream. *store.Store satisfies it.
type Recorder interface {
	WriteGame(ctx context.Context, g store.Game) error
	WriteRoll(ctx context.Context, r store.Roll) error
	WriteEvent(ctx context.Context, e store.Event) error
	WriteResult(ctx context.Context, r store.Result) error
}

// Source supplies one tick of input at a time. ok=false ends Run.
type Source interface {
	Next() (in turn.Input, ok bool)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (turn.Input, bool)

// Next calls f.
func (f SourceFunc) Next() (turn.Input, bool) { return f() }

// Report is everything one tick produced.
type Report struct {
	Seq      int64
	Commands []turn.Command
	Events   []turn.Event
	Fallen   []int
	Board    scoring.Scoreboard
	Errors   []*RuntimeError
}

// Engine drives a turn.Controller one fixed step at a time.
//
// All game state lives in the controller and is touched only from Tick.
// Actions may be submitted from any goroutine with Enqueue; they are applied
// at the start of the next tick, ahead of that tick's own actions.
//
// Thread-safety model:
//   - Enqueue(), Snapshot(), Stop(): safe from any goroutine
//   - Tick() and Run(): one goroutine at a time
type Engine struct {
	mu       sync.Mutex
	ctrl     *turn.Controller
	clock    *Clock
	queue    *actionQueue
	recorder Recorder
	logger   *slog.Logger
	tickRate int

	// pins per journaled game, for the result digest.
	rolls map[string][]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder journals games, rolls, events and results.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithClock continues numbering from an existing clock.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger replaces slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithTickRate sets the fixed step to 1/hz seconds. Non-positive rates are
// ignored.
func WithTickRate(hz int) Option {
	return func(e *Engine) {
		if hz > 0 {
			e.tickRate = hz
		}
	}
}

// New creates an engine with a fresh controller.
func New(settings turn.Settings, ids IDGenerator, opts ...Option) *Engine {
	e := &Engine{
		clock:    NewClock(),
		queue:    newActionQueue(),
		logger:   slog.Default(),
		tickRate: DefaultTickRate,
		rolls:    make(map[string][]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ctrl = turn.New(settings, ids, e.logger)
	return e
}

// Step is the fixed tick length.
func (e *Engine) Step() time.Duration {
	return time.Second / time.Duration(e.tickRate)
}

// Enqueue submits an action for the next tick.
// Returns an ENGINE_STOPPED RuntimeError after Stop.
func (e *Engine) Enqueue(a turn.Action) error {
	if !e.queue.Enqueue(a) {
		return NewStoppedError(a)
	}
	return nil
}

// Stop makes Run return and rejects further actions.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Snapshot returns the current scoreboard.
func (e *Engine) Snapshot() scoring.Scoreboard {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Board()
}

// Standing returns the ids of pins still standing.
func (e *Engine) Standing() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Standing()
}

// Mode returns the active game mode.
func (e *Engine) Mode() turn.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Mode()
}

// Tick runs one step. A zero in.DT is replaced by the fixed step.
//
// ERROR HANDLING: ignored inputs come back as Report.Errors and journal
// failures are logged; neither stops the tick. Retrying would make the
// journal diverge from the live game.
func (e *Engine) Tick(ctx context.Context, in turn.Input) Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	seq := e.clock.Next()
	if queued := e.queue.Drain(); len(queued) > 0 {
		in.Actions = append(queued, in.Actions...)
	}
	if in.DT == 0 {
		in.DT = e.Step()
	}

	out := e.ctrl.Tick(in)
	rep := Report{
		Seq:      seq,
		Commands: out.Commands,
		Events:   out.Events,
		Fallen:   out.Fallen,
		Board:    e.ctrl.Board(),
	}
	for _, err := range out.Anomalies {
		rep.Errors = append(rep.Errors, classify(err, e.ctrl.GameID(), seq))
	}

	if e.recorder != nil {
		for _, ev := range out.Events {
			if err := e.record(ctx, seq, ev, rep.Board); err != nil {
				e.logger.Error("journal write failed",
					"seq", seq,
					"event", ev.Kind,
					"game", ev.GameID,
					"error", err,
				)
			}
		}
	}
	return rep
}

// Run ticks at the configured rate, pulling input from src and handing each
// report to sink, until src runs dry, Stop is called or ctx is cancelled.
func (e *Engine) Run(ctx context.Context, src Source, sink func(Report)) error {
	e.logger.Info("engine starting", "tick_hz", e.tickRate)

	ticker := time.NewTicker(e.Step())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Done():
			e.logger.Info("engine stopping: stopped")
			return nil

		case <-ticker.C:
			in, ok := src.Next()
			if !ok {
				e.logger.Info("engine stopping: source exhausted", "seq", e.clock.Current())
				return nil
			}
			rep := e.Tick(ctx, in)
			if sink != nil {
				sink(rep)
			}
		}
	}
}

func (e *Engine) record(ctx context.Context, seq int64, ev turn.Event, board scoring.Scoreboard) error {
	switch ev.Kind {
	case turn.EventGameStarted:
		// One game is live at a time; a new one abandons any unfinished game.
		clear(e.rolls)
		e.rolls[ev.GameID] = nil
		return e.recorder.WriteGame(ctx, store.Game{ID: ev.GameID, Player: ev.Player, StartedSeq: seq})

	case turn.EventRollRecorded:
		e.rolls[ev.GameID] = append(e.rolls[ev.GameID], ev.Record.Pins)
		return e.recorder.WriteRoll(ctx, store.Roll{
			GameID: ev.GameID,
			Frame:  ev.Frame,
			Roll:   ev.Roll,
			Pins:   ev.Record.Pins,
			Mark:   ev.Record.Symbol(),
			Seq:    seq,
		})

	case turn.EventGameOver:
		if err := e.recorder.WriteEvent(ctx, store.Event{GameID: ev.GameID, Seq: seq, Kind: ev.Kind.String()}); err != nil {
			return err
		}
		return e.writeResult(ctx, seq, ev.GameID, board)

	default:
		rec := store.Event{GameID: ev.GameID, Seq: seq, Kind: ev.Kind.String(), Frame: ev.Frame, Roll: ev.Roll}
		if ev.Kind == turn.EventModeChanged || ev.Kind == turn.EventRerack {
			rec.Detail = ev.Mode.String()
		}
		if ev.Kind == turn.EventModeChanged && ev.Mode == turn.ModeFreeplay {
			clear(e.rolls)
		}
		return e.recorder.WriteEvent(ctx, rec)
	}
}

func (e *Engine) writeResult(ctx context.Context, seq int64, gameID string, board scoring.Scoreboard) error {
	data, digest, err := canonical.Board(board)
	if err != nil {
		return err
	}
	rollsDigest, err := canonical.Rolls(gameID, e.rolls[gameID])
	if err != nil {
		return err
	}
	delete(e.rolls, gameID)

	e.logger.Info("game result journaled", "game", gameID, "total", board.Total, "digest", digest)
	return e.recorder.WriteResult(ctx, store.Result{
		GameID:      gameID,
		Seq:         seq,
		Total:       board.Total,
		Board:       data,
		Digest:      digest,
		RollsDigest: rollsDigest,
	})
}
