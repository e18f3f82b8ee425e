package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/tenpin/internal/config"
	"github.com/roach88/tenpin/internal/engine"
	"github.com/roach88/tenpin/internal/pins"
	"github.com/roach88/tenpin/internal/roll"
	"github.com/roach88/tenpin/internal/scoring"
	"github.com/roach88/tenpin/internal/store"
	"github.com/roach88/tenpin/internal/testutil"
	"github.com/roach88/tenpin/internal/turn"
)

// Harness executes one scenario against a live engine.
type Harness struct {
	engine *engine.Engine
	tuning config.Tuning
	logger *slog.Logger
}

// Option configures Run.
type Option func(*options)

type options struct {
	store  *store.Store
	ids    engine.IDGenerator
	logger *slog.Logger
}

// WithStore journals into st instead of a throwaway in-memory journal.
// The caller keeps ownership of st.
func WithStore(st *store.Store) Option {
	return func(o *options) {
		o.store = st
	}
}

// WithIDs replaces the sequential "game-N" ids.
func WithIDs(ids engine.IDGenerator) Option {
	return func(o *options) {
		o.ids = ids
	}
}

// WithLogger routes engine and harness logs to l. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Load tuning and open the journal
// 2. Build an engine with deterministic game ids
// 3. Execute flow steps tick by tick, tracing every report
// 4. Cross-check the journaled result against the final board
// 5. Evaluate assertions
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{
		ids:    testutil.NewSequentialIDs("game"),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	tuning := config.Default()
	if scenario.Tuning != "" {
		var err error
		tuning, err = config.Load(scenario.Tuning, config.WithEnvironment(map[string]string{}))
		if err != nil {
			return nil, fmt.Errorf("failed to load tuning: %w", err)
		}
	}

	mode := turn.ModeScoring
	if scenario.Mode != "" {
		var err error
		if mode, err = turn.ParseMode(scenario.Mode); err != nil {
			return nil, err
		}
	}

	st := o.store
	if st == nil {
		var err error
		st, err = store.Open(store.Memory)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
	}

	h := &Harness{
		engine: engine.New(tuning.Settings(mode), o.ids,
			engine.WithRecorder(st),
			engine.WithLogger(o.logger),
			engine.WithTickRate(tuning.TickHz),
		),
		tuning: tuning,
		logger: o.logger,
	}

	ctx := context.Background()
	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}
	result.Board = h.engine.Snapshot()
	result.Mode = h.engine.Mode().String()

	if err := checkJournal(ctx, st, result.Board); err != nil {
		result.AddError(err.Error())
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"total", result.Board.Total,
	)
	return result, nil
}

// executeFlow runs each step through the engine and traces the reports.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		var err error
		switch {
		case len(step.Rolls) > 0:
			err = h.throwAll(ctx, step.Rolls, result)
		case step.Notation != "":
			var counts []int
			counts, err = scoring.ParseRolls(strings.Fields(step.Notation)...)
			if err == nil {
				err = h.throwAll(ctx, counts, result)
			}
		case step.Invalid > 0:
			for n := 0; n < step.Invalid; n++ {
				h.feed(ctx, testutil.InvalidThrow(), result)
			}
		case step.Idle > 0:
			h.feed(ctx, testutil.Idle(step.Idle), result)
		default:
			var inputs []turn.Input
			inputs, err = buildTick(step.Tick)
			if err == nil {
				h.feed(ctx, inputs, result)
			}
		}
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		h.logger.Debug("flow step completed", "step", i, "trace", len(result.Trace))
	}
	return nil
}

// throwAll scripts one valid throw per count, knocking down the first count
// pins still standing when the throw starts.
func (h *Harness) throwAll(ctx context.Context, counts []int, result *Result) error {
	for _, n := range counts {
		standing := h.engine.Standing()
		if n > len(standing) {
			return fmt.Errorf("roll of %d with only %d pins standing", n, len(standing))
		}
		h.feed(ctx, testutil.Throw(h.tuning.SettleDelay(), standing[:n]...), result)
	}
	return nil
}

func (h *Harness) feed(ctx context.Context, inputs []turn.Input, result *Result) {
	for _, in := range inputs {
		result.AddReport(h.engine.Tick(ctx, in))
	}
}

// buildTick expands an explicit tick into its repeated inputs. A zero dt_ms
// leaves the engine's fixed step in place.
func buildTick(t Tick) ([]turn.Input, error) {
	var actions []turn.Action
	for _, name := range t.Actions {
		actions = append(actions, actionNames[name](t.Player))
	}

	var obs []pins.Observation
	obs = append(obs, testutil.Knock(t.Knock...)...)
	for _, p := range t.Pins {
		obs = append(obs, pins.Observation{
			ID:     p.ID,
			Up:     pins.Vec3{X: p.Up[0], Y: p.Up[1], Z: p.Up[2]},
			Height: p.Height,
		})
	}

	ball := roll.Ball{Speed: 1}
	if t.Ball != nil {
		contacts, err := roll.Zones(t.Ball.Contacts...)
		if err != nil {
			return nil, err
		}
		ball = roll.Ball{
			Contacts: contacts,
			Speed:    t.Ball.Speed,
			Distance: t.Ball.Distance,
			Sleeping: t.Ball.Sleeping,
		}
	}

	repeat := max(t.Repeat, 1)
	inputs := make([]turn.Input, repeat)
	for i := range inputs {
		inputs[i] = turn.Input{
			Pins: obs,
			Ball: ball,
			DT:   time.Duration(t.DTMillis) * time.Millisecond,
		}
	}
	inputs[0].Actions = actions
	return inputs, nil
}

// checkJournal verifies a finished game's journaled result against the board.
func checkJournal(ctx context.Context, st *store.Store, board scoring.Scoreboard) error {
	if !board.GameOver {
		return nil
	}
	res, err := st.ReadResult(ctx, board.GameID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("journal: no result for finished game %s", board.GameID)
	}
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if res.Total != board.Total {
		return fmt.Errorf("journal: result total %d, board total %d", res.Total, board.Total)
	}
	return nil
}
