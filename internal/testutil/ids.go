package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs hands out "<prefix>-1", "<prefix>-2", ... in order.
//
// Unlike engine.FixedGenerator it never runs out, so a scenario can start as
// many games as it likes and still produce byte-identical output.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix defaults to "game".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "game"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
