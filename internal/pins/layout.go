package pins

import "math"

// PinSpacing is the centre-to-centre distance between neighbouring pins (12 in).
const PinSpacing = 0.3048

// Spot is a pin position on the deck, relative to the head pin spot.
// X runs across the lane, Z runs away from the foul line.
type Spot struct {
	ID  int
	Row int
	X   float64
	Z   float64
}

// Layout returns the standard triangular rack: rows of 1, 2, 3 and 4 pins
// counted from the foul line, ids assigned row by row left to right.
// count is clamped to 1..MaxPins and takes the first count spots.
func Layout(count int) []Spot {
	if count < 1 {
		count = 1
	}
	if count > MaxPins {
		count = MaxPins
	}

	rowDepth := PinSpacing * math.Sin(math.Pi/3)
	spots := make([]Spot, 0, count)
	id := 0
	for row := 0; row < 4 && id < count; row++ {
		for i := 0; i <= row && id < count; i++ {
			spots = append(spots, Spot{
				ID:  id,
				Row: row,
				X:   (float64(i) - float64(row)/2) * PinSpacing,
				Z:   float64(row) * rowDepth,
			})
			id++
		}
	}
	return spots
}
