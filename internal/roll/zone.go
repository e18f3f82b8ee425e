package roll

import (
	"fmt"
	"strings"
)

// Zone is a set of contact zone tags reported for the ball.
type Zone uint8

const (
	ZoneLane Zone = 1 << iota
	ZoneGutter
	ZoneGround
	ZonePin
	ZoneInHand
)

// ZoneNone is the empty contact set.
const ZoneNone Zone = 0

var zoneNames = []struct {
	zone Zone
	name string
}{
	{ZoneLane, "lane"},
	{ZoneGutter, "gutter"},
	{ZoneGround, "ground"},
	{ZonePin, "pin"},
	{ZoneInHand, "in-hand"},
}

// Has reports whether every tag in z is present.
func (c Zone) Has(z Zone) bool {
	return z != 0 && c&z == z
}

// Any reports whether at least one tag in z is present.
func (c Zone) Any(z Zone) bool {
	return c&z != 0
}

func (c Zone) String() string {
	if c == ZoneNone {
		return "none"
	}
	var parts []string
	for _, zn := range zoneNames {
		if c&zn.zone != 0 {
			parts = append(parts, zn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseZone maps a tag name to its zone.
func ParseZone(name string) (Zone, error) {
	for _, zn := range zoneNames {
		if zn.name == name {
			return zn.zone, nil
		}
	}
	return ZoneNone, fmt.Errorf("unknown contact zone %q", name)
}

// Zones builds a contact set from tag names.
func Zones(names ...string) (Zone, error) {
	var c Zone
	for _, n := range names {
		z, err := ParseZone(n)
		if err != nil {
			return ZoneNone, err
		}
		c |= z
	}
	return c, nil
}
