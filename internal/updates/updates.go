// Package updates carries task output to the compositor.
//
// Every producer (scheduled tasks, PTY apps, the keyboard) sends Batches
// into a Queue; the compositor is the only consumer.
package updates

import (
	"context"
	"sync"
)

// Reserved ids that never name a task.
const (
	System  = "system"
	Console = "console"
)

// Control text understood on the reserved ids. The escapes are literal
// backslash sequences, not control characters.
const (
	Shutdown  = `\u001bQ`
	Redraw    = `\u001bL`
	ClearLine = `\u001bU`
	Backspace = `\h`
	Execute   = "\n"
)

// Batch maps a task id to the full text that task last produced.
type Batch map[string]string

// One returns a batch holding a single entry.
func One(id, text string) Batch {
	return Batch{id: text}
}

// Sink accepts batches without blocking.
type Sink interface {
	Send(b Batch)
}

// Source yields batches until it is closed or ctx ends. ok is false once
// no more batches will arrive.
type Source interface {
	Next(ctx context.Context) (b Batch, ok bool)
}

// Queue is an unbounded FIFO of batches. Send never blocks, so a slow
// screen cannot stall a task.
type Queue struct {
	mu     sync.Mutex
	items  []Batch
	closed bool
	signal chan struct{}
}

// NewQueue returns an empty, open queue.
func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// Send appends b. Sends after Close are dropped.
func (q *Queue) Send(b Batch) {
	if len(b) == 0 {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, b)
	q.mu.Unlock()
	q.wake()
}

// Next blocks until a batch is available. Batches sent before Close are
// still delivered; after that ok is false.
func (q *Queue) Next(ctx context.Context) (Batch, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			b := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return b, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false
		}

		select {
		case <-ctx.Done():
			return nil, false
		case <-q.signal:
		}
	}
}

// Len returns the number of queued batches.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops accepting batches.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *Queue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
