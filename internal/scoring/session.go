// Package scoring implements ten-pin frame bookkeeping and cumulative scoring.
//
// A Session is a plain owned value: the ten frames, the current frame and roll
// indices, the pins already down in the current rack, and the game-over latch.
// Nothing here is global, so any number of games can be simulated side by side.
//
// RecordRoll is the only mutator. It appends one RollRecord, advances the
// indices and then recomputes every frame's cumulative score from scratch.
package scoring

import (
	"errors"
	"fmt"
)

// FrameCount is the number of frames in a game.
const FrameCount = 10

// lastFrame is the index of the tenth frame.
const lastFrame = FrameCount - 1

// ErrGameOver is returned by RecordRoll once the game has ended. The call is a
// no-op: the session is left untouched.
var ErrGameOver = errors.New("game is over")

// Frame is one frame of the score sheet.
type Frame struct {
	Rolls []RollRecord
	// Cumulative is the running total through this frame. Only meaningful when
	// Scored is true; a frame stays unscored until every roll it depends on
	// has been recorded.
	Cumulative int
	Scored     bool
}

// Session is the state of one game.
type Session struct {
	id       string
	frames   [FrameCount]Frame
	frame    int
	roll     int
	pinsDown int
	fresh    bool
	over     bool
}

// NewSession starts a game at frame 0, roll 0 with a fresh rack.
func NewSession(id string) *Session {
	return &Session{id: id, fresh: true}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// FrameIndex is the current frame (0..9).
func (s *Session) FrameIndex() int { return s.frame }

// RollIndex is the current roll within the frame (0..1, or 0..2 in the tenth).
func (s *Session) RollIndex() int { return s.roll }

// PinsDownBefore is how many pins of the current rack were already down before
// the next roll.
func (s *Session) PinsDownBefore() int { return s.pinsDown }

// FreshRack reports whether the next roll faces a full rack.
func (s *Session) FreshRack() bool { return s.fresh }

// GameOver reports the terminal latch.
func (s *Session) GameOver() bool { return s.over }

// Frame returns a copy of frame i.
func (s *Session) Frame(i int) Frame {
	f := s.frames[i]
	f.Rolls = append([]RollRecord(nil), f.Rolls...)
	return f
}

// Total returns the cumulative score of the last scored frame.
func (s *Session) Total() int {
	total := 0
	for _, f := range s.frames {
		if !f.Scored {
			break
		}
		total = f.Cumulative
	}
	return total
}

// RecordRoll records a ball that knocked down pins newly fallen pins since the
// previous roll of this rack. Out-of-range counts are clamped to what the rack
// can still give. Returns the recorded roll, or ErrGameOver.
//
// In the tenth frame a strike or spare earns a fresh rack. After a strike and
// a non-strike the bonus ball is thrown at the pins still standing, so it is
// judged against them: X 7 3 records as "X 7 /", not as a count of 3.
func (s *Session) RecordRoll(pins int) (RollRecord, error) {
	if s.over {
		return RollRecord{}, ErrGameOver
	}

	if pins < 0 {
		pins = 0
	}
	if max := 10 - s.pinsDown; pins > max {
		pins = max
	}

	rec := s.classify(pins)
	f := &s.frames[s.frame]
	f.Rolls = append(f.Rolls, rec)

	if s.frame < lastFrame {
		s.advanceOpenFrame(rec, pins)
	} else {
		s.advanceTenth(rec, pins)
	}

	s.recompute()
	return rec, nil
}

// classify applies the 10-pins-down rule relative to the current rack: a full
// fresh rack cleared by one ball is a strike, a rack finished by a second ball
// is a spare.
func (s *Session) classify(pins int) RollRecord {
	if s.pinsDown+pins < 10 {
		return Count(pins)
	}
	if s.fresh {
		return Strike()
	}
	return Spare(pins)
}

func (s *Session) advanceOpenFrame(rec RollRecord, pins int) {
	if s.roll == 0 && rec.Mark != MarkStrike {
		s.roll = 1
		s.pinsDown = pins
		s.fresh = false
		return
	}
	s.frame++
	s.roll = 0
	s.pinsDown = 0
	s.fresh = true
}

func (s *Session) advanceTenth(rec RollRecord, pins int) {
	rolled := s.roll
	switch {
	case rolled == 2:
		s.finish()
		return
	case rec.Mark == MarkStrike || rec.Mark == MarkSpare:
		s.pinsDown = 0
		s.fresh = true
	case rolled == 1 && s.frames[lastFrame].Rolls[0].Mark != MarkStrike:
		// Open tenth: two balls and done.
		s.finish()
		return
	default:
		s.pinsDown += pins
		s.fresh = false
	}
	s.roll++
}

func (s *Session) finish() {
	s.over = true
	s.pinsDown = 0
	s.fresh = true
}

// recompute rescores every frame. Bonus balls are looked up in the flat roll
// sequence following each frame, which naturally reaches two frames ahead
// after a double and into the tenth frame's rolls from the ninth.
func (s *Session) recompute() {
	var flat []int
	starts := make([]int, FrameCount)
	for i, f := range s.frames {
		starts[i] = len(flat)
		for _, r := range f.Rolls {
			flat = append(flat, r.Pins)
		}
	}

	running := 0
	broken := false
	for i := range s.frames {
		f := &s.frames[i]
		value, ok := s.frameValue(i, flat, starts[i])
		if broken || !ok {
			broken = true
			f.Scored = false
			f.Cumulative = 0
			continue
		}
		running += value
		f.Scored = true
		f.Cumulative = running
	}
}

func (s *Session) frameValue(i int, flat []int, start int) (int, bool) {
	rolls := s.frames[i].Rolls
	if i == lastFrame {
		return tenthValue(rolls)
	}
	if len(rolls) == 0 {
		return 0, false
	}

	bonus := 0
	switch rolls[0].Mark {
	case MarkStrike:
		bonus = 2
	default:
		if len(rolls) < 2 {
			return 0, false
		}
		if rolls[1].Mark == MarkSpare {
			bonus = 1
		}
	}

	own := len(rolls)
	if start+own+bonus > len(flat) {
		return 0, false
	}
	sum := 0
	for _, p := range flat[start : start+own+bonus] {
		sum += p
	}
	return sum, true
}

func tenthValue(rolls []RollRecord) (int, bool) {
	need := 2
	if len(rolls) > 0 && rolls[0].Mark == MarkStrike {
		need = 3
	}
	if len(rolls) > 1 && rolls[1].Mark == MarkSpare {
		need = 3
	}
	if len(rolls) < need {
		return 0, false
	}
	sum := 0
	for _, r := range rolls {
		sum += r.Pins
	}
	return sum, true
}

func (s *Session) String() string {
	return fmt.Sprintf("session %s frame=%d roll=%d over=%v total=%d", s.id, s.frame+1, s.roll, s.over, s.Total())
}
