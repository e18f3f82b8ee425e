package roll

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = time.Second

func newLifecycle() *Lifecycle {
	return New(DefaultSettings(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var (
	rolling  = Ball{Speed: 6, Distance: 2}
	onLane   = Ball{Contacts: ZoneLane, Speed: 6, Distance: 3}
	inGutter = Ball{Contacts: ZoneGutter, Speed: 4, Distance: 12}
	onGround = Ball{Contacts: ZoneGround, Speed: 2, Distance: 20}
)

func TestZone_SetOperations(t *testing.T) {
	c, err := Zones("lane", "pin")
	require.NoError(t, err)
	assert.True(t, c.Has(ZoneLane))
	assert.True(t, c.Has(ZoneLane|ZonePin))
	assert.False(t, c.Has(ZoneLane|ZoneGutter))
	assert.True(t, c.Any(ZoneGutter|ZonePin))
	assert.False(t, ZoneNone.Has(ZoneNone))
	assert.Equal(t, "lane|pin", c.String())
	assert.Equal(t, "none", ZoneNone.String())

	_, err = Zones("lane", "moon")
	assert.Error(t, err)
}

func TestLifecycle_StartsIdleAndIgnoresObservations(t *testing.T) {
	l := newLifecycle()
	assert.Equal(t, PhaseIdle, l.State().Phase)

	st := l.Observe(onGround, tick)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.False(t, l.SettlePending())
}

func TestLifecycle_ReleaseStartsThrow(t *testing.T) {
	l := newLifecycle()
	l.Grab()
	assert.Equal(t, PhaseHeld, l.State().Phase)

	l.Release()
	assert.Equal(t, State{Phase: PhaseThrown}, l.State())
}

func TestLifecycle_LaneTouchLatch(t *testing.T) {
	l := newLifecycle()
	l.Release()

	st := l.Observe(rolling, tick)
	assert.False(t, st.TouchedLane)

	st = l.Observe(onLane, tick)
	assert.True(t, st.TouchedLane)

	// Leaving the lane does not clear the latch.
	st = l.Observe(rolling, tick)
	assert.True(t, st.TouchedLane)
}

func TestLifecycle_LaneContactPastBoundaryDoesNotCount(t *testing.T) {
	l := newLifecycle()
	l.Release()

	st := l.Observe(Ball{Contacts: ZoneLane, Speed: 5, Distance: 19}, tick)
	assert.False(t, st.TouchedLane)

	st = l.Observe(Ball{Contacts: ZoneLane, Speed: 5, Distance: DefaultSettings().LaneBoundary}, tick)
	assert.False(t, st.TouchedLane, "boundary itself is already past the lane")
}

func TestLifecycle_GroundBeforeLaneIsInvalid(t *testing.T) {
	l := newLifecycle()
	l.Release()
	l.Observe(rolling, tick)

	st := l.Observe(onGround, tick)
	assert.Equal(t, State{Phase: PhaseResolved, Valid: false}, st)
	assert.False(t, l.SettlePending())

	// Terminal until reset.
	st = l.Observe(onLane, tick)
	assert.True(t, st.Resolved())
}

func TestLifecycle_GutterAfterLaneSettlesAfterDebounce(t *testing.T) {
	l := newLifecycle()
	l.Release()
	l.Observe(onLane, tick)

	st := l.Observe(inGutter, tick)
	assert.True(t, st.Settling)
	assert.True(t, l.SettlePending())

	for i := 0; i < 4; i++ {
		st = l.Observe(inGutter, tick)
		require.Equal(t, PhaseThrown, st.Phase, "tick %d", i+1)
	}

	st = l.Observe(inGutter, tick)
	assert.Equal(t, PhaseResolved, st.Phase)
	assert.True(t, st.Valid)
	assert.True(t, st.TouchedLane)
}

func TestLifecycle_GroundAfterLaneStartsDebounceNotInvalid(t *testing.T) {
	l := newLifecycle()
	l.Release()
	l.Observe(onLane, tick)

	st := l.Observe(onGround, tick)
	assert.Equal(t, PhaseThrown, st.Phase)
	assert.True(t, l.SettlePending())
}

func TestLifecycle_RestingBallSettles(t *testing.T) {
	l := newLifecycle()
	l.Release()
	l.Observe(onLane, tick)

	st := l.Observe(Ball{Contacts: ZoneLane, Sleeping: true, Distance: 10}, tick)
	assert.True(t, st.Settling)

	for i := 0; i < 5; i++ {
		st = l.Observe(Ball{Contacts: ZoneLane, Sleeping: true, Distance: 10}, tick)
	}
	assert.True(t, st.Resolved())
	assert.True(t, st.Valid)
}

func TestLifecycle_StuckBallWithoutLaneTouchResolvesInvalid(t *testing.T) {
	l := newLifecycle()
	l.Release()

	// Ball stops somewhere unexpected: never touched the lane, never hit ground.
	var st State
	for i := 0; i < 6; i++ {
		st = l.Observe(Ball{Speed: 0}, tick)
	}
	assert.True(t, st.Resolved())
	assert.False(t, st.Valid)
}

func TestLifecycle_OnlyOneDebouncePending(t *testing.T) {
	l := newLifecycle()
	l.Release()
	l.Observe(onLane, tick)
	l.Observe(inGutter, tick) // armed, 5s

	// Repeated finish signals must not restart the countdown.
	for i := 0; i < 4; i++ {
		l.Observe(Ball{Contacts: ZoneGutter | ZoneGround, Sleeping: true}, tick)
	}
	st := l.Observe(inGutter, tick)
	assert.True(t, st.Resolved())
}

func TestLifecycle_GrabCancelsDebounce(t *testing.T) {
	l := newLifecycle()
	l.Release()
	l.Observe(onLane, tick)
	l.Observe(inGutter, tick)
	require.True(t, l.SettlePending())

	l.Grab()
	assert.False(t, l.SettlePending())
	assert.Equal(t, State{Phase: PhaseHeld}, l.State())

	for i := 0; i < 10; i++ {
		l.Observe(inGutter, tick)
	}
	assert.Equal(t, PhaseHeld, l.State().Phase)
}

func TestLifecycle_ReleaseDiscardsPriorThrow(t *testing.T) {
	l := newLifecycle()
	l.Release()
	l.Observe(onLane, tick)
	l.Observe(inGutter, tick)

	l.Release()
	assert.Equal(t, State{Phase: PhaseThrown}, l.State())
	assert.False(t, l.SettlePending())
}

func TestLifecycle_ResetReturnsToIdle(t *testing.T) {
	l := newLifecycle()
	l.Release()
	l.Observe(onGround, tick)
	require.True(t, l.State().Resolved())

	l.Reset()
	assert.Equal(t, State{Phase: PhaseIdle}, l.State())
}

func TestLifecycle_StillBallAtReleaseDoesNotResolveRollingThrow(t *testing.T) {
	l := newLifecycle()
	l.Release()

	// Physics has not moved the ball yet on the release tick.
	l.Observe(Ball{}, tick)
	require.True(t, l.SettlePending())

	st := l.Observe(onLane, tick)
	assert.False(t, l.SettlePending(), "motion cancels a debounce armed by rest")
	assert.False(t, st.Settling)

	for i := 0; i < 10; i++ {
		st = l.Observe(Ball{Contacts: ZoneLane, Speed: 6, Distance: 3 + float64(i)}, tick)
		require.Equal(t, PhaseThrown, st.Phase, "tick %d", i)
	}
	assert.False(t, l.SettlePending())

	l.Observe(inGutter, tick)
	for i := 0; i < 4; i++ {
		st = l.Observe(inGutter, tick)
		require.False(t, st.Resolved())
	}
	st = l.Observe(inGutter, tick)
	assert.True(t, st.Resolved())
	assert.True(t, st.Valid)
}

func TestLifecycle_ContactDebounceSurvivesMotion(t *testing.T) {
	l := newLifecycle()
	l.Release()
	l.Observe(onLane, tick)
	l.Observe(inGutter, tick)

	// The ball keeps rolling in the gutter after the debounce is armed.
	var st State
	for i := 0; i < 4; i++ {
		st = l.Observe(Ball{Speed: 3, Distance: 15}, tick)
		require.True(t, l.SettlePending())
	}
	st = l.Observe(Ball{Speed: 3, Distance: 18}, tick)
	assert.True(t, st.Resolved())
	assert.True(t, st.Valid)
}

func TestLifecycle_RestDebounceUpgradedByContact(t *testing.T) {
	l := newLifecycle()
	l.Release()
	l.Observe(onLane, tick)
	l.Observe(Ball{Contacts: ZoneLane, Sleeping: true, Distance: 10}, tick)
	require.True(t, l.SettlePending())

	// Gutter contact takes over the pending debounce; later motion no longer cancels it.
	l.Observe(Ball{Contacts: ZoneGutter, Sleeping: true, Distance: 10}, tick)
	l.Observe(rolling, tick)
	assert.True(t, l.SettlePending())
}
