// Package testutil builds deterministic inputs for engine and controller tests.
package testutil

import (
	"time"

	"github.com/roach88/tenpin/internal/pins"
	"github.com/roach88/tenpin/internal/roll"
	"github.com/roach88/tenpin/internal/turn"
)

// Step is the tick length used by scripted throws.
const Step = 100 * time.Millisecond

// Pin reference heights above the lane for a standing and a lying pin.
const (
	StandingHeight = 0.19
	LyingHeight    = 0.06
)

// Upright is an observation of a standing pin.
func Upright(id int) pins.Observation {
	return pins.Observation{ID: id, Up: pins.Vec3{Y: 1}, Height: StandingHeight}
}

// Knocked is an observation of a pin lying on its side.
func Knocked(id int) pins.Observation {
	return pins.Observation{ID: id, Up: pins.Vec3{X: 1}, Height: LyingHeight}
}

// Knock returns Knocked observations for every id.
func Knock(ids ...int) []pins.Observation {
	obs := make([]pins.Observation, len(ids))
	for i, id := range ids {
		obs[i] = Knocked(id)
	}
	return obs
}

// Rolling is a ball moving down the lane at distance d.
func Rolling(contacts roll.Zone, d float64) roll.Ball {
	return roll.Ball{Contacts: contacts, Speed: 6, Distance: d}
}

// Resting is a ball asleep with no contacts.
func Resting() roll.Ball {
	return roll.Ball{Sleeping: true}
}

// Throw scripts a valid throw: release onto the lane, the pins in knocked go
// down at the deck, the ball drops into the gutter, then enough resting ticks
// for a settle delay of settle. The last input is the one that resolves.
func Throw(settle time.Duration, knocked ...int) []turn.Input {
	in := []turn.Input{
		{Actions: []turn.Action{turn.Release()}, Ball: Rolling(roll.ZoneLane, 1), DT: Step},
		{Ball: Rolling(roll.ZoneLane, 10), DT: Step},
		{Ball: Rolling(roll.ZoneLane|roll.ZonePin, 18.4), Pins: Knock(knocked...), DT: Step},
		{Ball: Rolling(roll.ZoneGutter, 19.5), DT: Step},
	}
	return append(in, Settle(settle)...)
}

// InvalidThrow scripts a ball released straight onto the ground. It resolves
// on its second input.
func InvalidThrow() []turn.Input {
	return []turn.Input{
		{Actions: []turn.Action{turn.Release()}, Ball: roll.Ball{Speed: 3}, DT: Step},
		{Ball: roll.Ball{Contacts: roll.ZoneGround, Speed: 2}, DT: Step},
	}
}

// Settle returns the resting ticks that run a settle debounce of d to
// completion.
func Settle(d time.Duration) []turn.Input {
	n := int((d + Step - 1) / Step)
	in := make([]turn.Input, n)
	for i := range in {
		in[i] = turn.Input{Ball: Resting(), DT: Step}
	}
	return in
}

// Idle returns n ticks with nothing happening.
func Idle(n int) []turn.Input {
	in := make([]turn.Input, n)
	for i := range in {
		in[i] = turn.Input{Ball: Resting(), DT: Step}
	}
	return in
}
