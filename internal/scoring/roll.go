package scoring

import (
	"fmt"
	"strconv"
)

// Mark is the kind of a recorded roll.
type Mark uint8

const (
	MarkCount Mark = iota
	MarkStrike
	MarkSpare
)

func (m Mark) String() string {
	switch m {
	case MarkStrike:
		return "strike"
	case MarkSpare:
		return "spare"
	default:
		return "count"
	}
}

// RollRecord is one roll's symbolic result. Pins is the number of pins this
// ball knocked down: 10 for a strike, the remainder for a spare, n for Count(n).
type RollRecord struct {
	Mark Mark
	Pins int
}

// Strike is a ball that knocked down a full fresh rack.
func Strike() RollRecord { return RollRecord{Mark: MarkStrike, Pins: 10} }

// Spare is a ball that cleared the pins left standing by the previous ball.
func Spare(pins int) RollRecord { return RollRecord{Mark: MarkSpare, Pins: pins} }

// Count is an ordinary ball that left pins standing.
func Count(n int) RollRecord { return RollRecord{Mark: MarkCount, Pins: n} }

// Symbol renders the roll for a scoreboard: "X", "/" or a digit.
func (r RollRecord) Symbol() string {
	switch r.Mark {
	case MarkStrike:
		return "X"
	case MarkSpare:
		return "/"
	default:
		return strconv.Itoa(r.Pins)
	}
}

func (r RollRecord) String() string {
	if r.Mark == MarkCount {
		return fmt.Sprintf("Count(%d)", r.Pins)
	}
	return r.Mark.String()
}
