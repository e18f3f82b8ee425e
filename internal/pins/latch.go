package pins

// Latch is a one-way standing→fallen switch.
//
// There is no method that moves a tripped latch back to standing. The only way
// to get a standing pin again is to build a new rack, which allocates fresh
// latches. Keeping the transition structural means a pin that is jostled back
// upright after tipping can never flap between states within one rack.
type Latch struct {
	tripped bool
}

// Trip marks the latch fallen. Returns true only on the call that changed it.
func (l *Latch) Trip() bool {
	if l.tripped {
		return false
	}
	l.tripped = true
	return true
}

// Tripped reports whether the latch has ever been tripped.
func (l Latch) Tripped() bool {
	return l.tripped
}
