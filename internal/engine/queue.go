package engine

import (
	"sync"

	"github.com/roach88/tenpin/internal/turn"
)

// actionQueue buffers discrete actions submitted between ticks.
//
// UI and input goroutines enqueue; the tick goroutine drains everything at
// the start of the next tick, in submission order. Draining never blocks.
type actionQueue struct {
	mu      sync.Mutex
	actions []turn.Action
	closed  bool
	done    chan struct{}
}

func newActionQueue() *actionQueue {
	return &actionQueue{
		actions: make([]turn.Action, 0, 8),
		done:    make(chan struct{}),
	}
}

// Enqueue appends an action. Returns false once the queue is closed.
func (q *actionQueue) Enqueue(a turn.Action) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.actions = append(q.actions, a)
	return true
}

// Drain removes and returns every pending action.
func (q *actionQueue) Drain() []turn.Action {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.actions) == 0 {
		return nil
	}
	out := q.actions
	q.actions = make([]turn.Action, 0, cap(out))
	return out
}

// Close rejects further actions and wakes anyone waiting on Done.
func (q *actionQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Done is closed when the queue is closed.
func (q *actionQueue) Done() <-chan struct{} {
	return q.done
}
