package turn

import (
	"github.com/roach88/tenpin/internal/scoring"
)

// ResetPolicy tells the scene collaborator how to prepare the deck for the
// next ball. Every policy also respots the ball.
type ResetPolicy uint8

const (
	// FullRack rebuilds a complete standing rack.
	FullRack ResetPolicy = iota + 1
	// ClearFallenOnly sweeps fallen pins and leaves standing pins where they are.
	ClearFallenOnly
	// RespotBallOnly leaves the deck untouched.
	RespotBallOnly
)

func (p ResetPolicy) String() string {
	switch p {
	case FullRack:
		return "full_rack"
	case ClearFallenOnly:
		return "clear_fallen_only"
	case RespotBallOnly:
		return "respot_ball_only"
	default:
		return "none"
	}
}

// Outcome is what a resolved throw produced, as seen by the reset decision.
type Outcome struct {
	Valid bool
	// Roll is the recorded roll. Ignored for invalid throws.
	Roll scoring.RollRecord
	// GameOver is the session latch after the roll was recorded.
	GameOver bool
}

// DecideReset picks the reset policy after a throw resolved. frame and roll
// are the indices the throw was played at, before recording.
//
// A full rack follows any strike or spare, the last ball of frames 0..8 and
// the last ball of the game. The first ball of an open frame, and the second
// ball of a strike-opened tenth that left pins standing, only sweep the fallen
// pins. Invalid throws never touch the deck.
func DecideReset(frame, roll int, o Outcome) ResetPolicy {
	if !o.Valid {
		return RespotBallOnly
	}
	if o.GameOver {
		return FullRack
	}
	switch o.Roll.Mark {
	case scoring.MarkStrike, scoring.MarkSpare:
		return FullRack
	}
	if frame < scoring.FrameCount-1 && roll == 1 {
		return FullRack
	}
	return ClearFallenOnly
}
