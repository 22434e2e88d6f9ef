package persist

import (
	"context"
	"sync"
)

// writeQueue runs at most one write at a time for a slice. Schedule calls
// that arrive while a write is in flight collapse into a single follow-up
// write, which reads the latest state when it starts.
type writeQueue struct {
	write func(context.Context)

	mu      sync.Mutex
	paused  bool
	pending bool
	running bool
	idle    chan struct{}
}

func newWriteQueue(write func(context.Context), paused bool) *writeQueue {
	return &writeQueue{write: write, paused: paused}
}

// Schedule requests a write.
func (q *writeQueue) Schedule() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = true
	q.startLocked()
}

// Resume lets a paused queue run, flushing any write requested meanwhile.
func (q *writeQueue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paused = false
	q.startLocked()
}

// Wait blocks until no write is running or ctx is done.
func (q *writeQueue) Wait(ctx context.Context) error {
	for {
		q.mu.Lock()
		if !q.running {
			q.mu.Unlock()
			return nil
		}
		idle := q.idle
		q.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *writeQueue) startLocked() {
	if q.paused || q.running || !q.pending {
		return
	}
	q.running = true
	q.idle = make(chan struct{})
	go q.run()
}

func (q *writeQueue) run() {
	for {
		q.mu.Lock()
		if !q.pending || q.paused {
			q.running = false
			close(q.idle)
			q.mu.Unlock()
			return
		}
		q.pending = false
		q.mu.Unlock()

		q.write(context.Background())
	}
}
