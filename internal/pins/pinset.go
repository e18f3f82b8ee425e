// Package pins tracks the standing/fallen state of the pins in the active rack.
//
// Physics is an external collaborator: every tick it hands the set one
// Observation per pin and the set latches any pin whose observation meets the
// fall conditions. Fallen state is sticky for the life of the rack.
//
// Two kinds of "down" pins exist within a rack:
//   - fallen pins still lying on the deck (present, latched fallen)
//   - retired pins, removed by ClearFallen between balls of the same rack
//
// FallenIDs reports both, so the count of pins down since the rack was built
// never decreases until the next Rack.
package pins

import (
	"fmt"
	"slices"

	"github.com/kamstrup/intmap"
)

// PinSet owns the pins of the active rack.
type PinSet struct {
	thresholds Thresholds
	present    *intmap.Map[int, *Pin]
	retired    []int
}

// NewPinSet builds a full rack using the given thresholds.
func NewPinSet(th Thresholds) *PinSet {
	s := &PinSet{
		thresholds: th,
		present:    intmap.New[int, *Pin](MaxPins),
	}
	s.Rack(MaxPins)
	return s
}

// Rack discards every pin and stands a fresh triangular layout of count pins
// (clamped to 1..MaxPins). This is the only operation that clears fallen state.
func (s *PinSet) Rack(count int) []Spot {
	spots := Layout(count)
	s.present.Clear()
	s.retired = s.retired[:0]
	for _, spot := range spots {
		s.present.Put(spot.ID, &Pin{Spot: spot})
	}
	return spots
}

// Update applies one observation. Returns true when this observation is the
// one that knocked the pin down. Observations for pins that are already fallen
// are accepted and ignored.
func (s *PinSet) Update(o Observation) (bool, error) {
	pin, ok := s.present.Get(o.ID)
	if !ok {
		return false, fmt.Errorf("pin %d: %w", o.ID, ErrUnknownPin)
	}
	if !o.valid() {
		return false, fmt.Errorf("pin %d: %w", o.ID, ErrInvalidObservation)
	}
	if pin.Fallen() {
		return false, nil
	}
	if !s.thresholds.Toppled(o) {
		return false, nil
	}
	return pin.fallen.Trip(), nil
}

// FallenIDs returns every pin of the current rack that has gone down,
// whether it still lies on the deck or was already cleared away. Sorted.
func (s *PinSet) FallenIDs() []int {
	ids := slices.Clone(s.retired)
	s.present.ForEach(func(id int, p *Pin) bool {
		if p.Fallen() {
			ids = append(ids, id)
		}
		return true
	})
	slices.Sort(ids)
	return ids
}

// DownCount is len(FallenIDs()) without the allocation.
func (s *PinSet) DownCount() int {
	n := len(s.retired)
	s.present.ForEach(func(_ int, p *Pin) bool {
		if p.Fallen() {
			n++
		}
		return true
	})
	return n
}

// Standing returns the ids of present pins that have not fallen. Sorted.
func (s *PinSet) Standing() []int {
	var ids []int
	s.present.ForEach(func(id int, p *Pin) bool {
		if !p.Fallen() {
			ids = append(ids, id)
		}
		return true
	})
	slices.Sort(ids)
	return ids
}

// onDeck returns the ids of pins physically on the deck. Sorted.
func (s *PinSet) onDeck() []int {
	ids := make([]int, 0, s.present.Len())
	s.present.ForEach(func(id int, _ *Pin) bool {
		ids = append(ids, id)
		return true
	})
	slices.Sort(ids)
	return ids
}

// AllDown reports whether no standing pin remains on the deck.
func (s *PinSet) AllDown() bool {
	standing := false
	s.present.ForEach(func(_ int, p *Pin) bool {
		if !p.Fallen() {
			standing = true
			return false
		}
		return true
	})
	return !standing
}

// ClearFallen removes the fallen pins from the deck without touching standing
// pins. The removed pins stay counted as down until the next Rack. Returns the
// ids removed by this call, sorted.
func (s *PinSet) ClearFallen() []int {
	var cleared []int
	s.present.ForEach(func(id int, p *Pin) bool {
		if p.Fallen() {
			cleared = append(cleared, id)
		}
		return true
	})
	for _, id := range cleared {
		s.present.Del(id)
	}
	slices.Sort(cleared)
	s.retired = append(s.retired, cleared...)
	return cleared
}
