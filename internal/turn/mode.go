package turn

import (
	"fmt"
	"strings"

	"github.com/roach88/tenpin/internal/roll"
)

// Mode selects between casual play and a scored game.
type Mode uint8

const (
	// ModeFreeplay bypasses scoring entirely.
	ModeFreeplay Mode = iota
	// ModeScoring runs the full turn pipeline.
	ModeScoring
)

func (m Mode) String() string {
	if m == ModeScoring {
		return "scoring"
	}
	return "freeplay"
}

// ParseMode accepts "freeplay" or "scoring", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "freeplay", "free":
		return ModeFreeplay, nil
	case "scoring", "score":
		return ModeScoring, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// Gate holds the active mode and answers the mode-dependent questions.
type Gate struct {
	mode Mode
}

// NewGate starts in the given mode.
func NewGate(m Mode) Gate {
	return Gate{mode: m}
}

// Mode returns the active mode.
func (g Gate) Mode() Mode { return g.mode }

// Scoring reports whether the scoring pipeline is active.
func (g Gate) Scoring() bool { return g.mode == ModeScoring }

// Set switches mode. Returns false when m is already active.
func (g *Gate) Set(m Mode) bool {
	if g.mode == m {
		return false
	}
	g.mode = m
	return true
}

// AllowGrab reports whether the player may pick the ball up. In scoring mode
// the ball is out of reach from the moment it touches the lane until the
// throw resolves.
func (g Gate) AllowGrab(s roll.State) bool {
	if !g.Scoring() {
		return true
	}
	return !(s.Phase == roll.PhaseThrown && s.TouchedLane)
}
