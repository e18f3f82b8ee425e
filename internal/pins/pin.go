package pins

import (
	"errors"
	"math"
)

// MaxPins is the size of a full rack.
const MaxPins = 10

// DefaultTiltDegrees is the tipped-over boundary measured from vertical.
const DefaultTiltDegrees = 5.0

var (
	// ErrUnknownPin is returned for observations naming a pin that is not in
	// the active rack (never racked, or already cleared away).
	ErrUnknownPin = errors.New("unknown pin id")

	// ErrInvalidObservation is returned when an observation carries NaN or
	// infinite values.
	ErrInvalidObservation = errors.New("invalid pin observation")
)

// Vec3 is a plain 3-component vector in lane space (+Y up, +Z down-lane).
type Vec3 struct {
	X, Y, Z float64
}

// Len returns the Euclidean length.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vec3) finite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Observation is one physics sample for one pin.
type Observation struct {
	ID int
	// Up is the pin's local up axis in lane space. It need not be normalized.
	Up Vec3
	// Height is the pin reference point's height above the current lane surface.
	Height float64
}

func (o Observation) valid() bool {
	return o.Up.finite() && !math.IsNaN(o.Height) && !math.IsInf(o.Height, 0)
}

// Thresholds decide when an observation counts as a fallen pin.
type Thresholds struct {
	TiltDegrees float64
}

// DefaultThresholds returns the 5° tilt boundary.
func DefaultThresholds() Thresholds {
	return Thresholds{TiltDegrees: DefaultTiltDegrees}
}

// Toppled evaluates both fall conditions for one observation: the up axis
// leaning past the tilt boundary, or the reference point below the lane
// surface. A zero-length up vector cannot be judged for tilt, so only the
// height check applies to it.
func (th Thresholds) Toppled(o Observation) bool {
	if o.Height < 0 {
		return true
	}
	n := o.Up.Len()
	if n == 0 {
		return false
	}
	return o.Up.Y/n < math.Cos(th.TiltDegrees*math.Pi/180)
}

// Pin is one pin of the active rack.
type Pin struct {
	Spot   Spot
	fallen Latch
}

// ID returns the pin id (0 is the head pin).
func (p *Pin) ID() int {
	return p.Spot.ID
}

// Fallen reports the sticky fallen state.
func (p *Pin) Fallen() bool {
	return p.fallen.Tripped()
}
