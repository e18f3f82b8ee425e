package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRolls converts score-sheet notation into per-ball pin counts.
// Accepted tokens: "X" (strike), "/" (spare), "-" (gutter) and 0..10.
// Tokens may also be packed without spaces, e.g. "X7/9-".
func ParseRolls(tokens ...string) ([]int, error) {
	var pins []int
	s := NewSession("parse")
	for _, tok := range splitTokens(tokens) {
		var n int
		switch strings.ToUpper(tok) {
		case "X":
			if !s.FreshRack() {
				return nil, fmt.Errorf("strike %q after a ball in the same rack", tok)
			}
			n = 10
		case "/":
			if s.FreshRack() {
				return nil, fmt.Errorf("spare %q on a fresh rack", tok)
			}
			n = 10 - s.PinsDownBefore()
		case "-":
			n = 0
		default:
			v, err := strconv.Atoi(tok)
			if err != nil || v < 0 || v > 10 {
				return nil, fmt.Errorf("invalid roll %q", tok)
			}
			if s.PinsDownBefore()+v > 10 {
				return nil, fmt.Errorf("roll %q knocks down more pins than are standing", tok)
			}
			n = v
		}
		if _, err := s.RecordRoll(n); err != nil {
			return nil, fmt.Errorf("roll %q: %w", tok, err)
		}
		pins = append(pins, n)
	}
	return pins, nil
}

// splitTokens expands packed notation like "X7/9-" into single tokens while
// keeping "10" whole.
func splitTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		for _, field := range strings.Fields(t) {
			if _, err := strconv.Atoi(field); err == nil {
				out = append(out, field)
				continue
			}
			for _, r := range field {
				out = append(out, string(r))
			}
		}
	}
	return out
}

// Replay records pins into a fresh session.
func Replay(id string, pins []int) (*Session, error) {
	s := NewSession(id)
	for i, p := range pins {
		if _, err := s.RecordRoll(p); err != nil {
			return s, fmt.Errorf("roll %d: %w", i+1, err)
		}
	}
	return s, nil
}
