// Package frontier holds the crawl frontier: the FIFO queue of pending
// targets and the visited set keyed by URL fingerprint.
package frontier

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrEmpty is returned when dequeuing from an empty frontier.
	ErrEmpty = errors.New("frontier is empty")
	// ErrClosed is returned when operating on a closed frontier.
	ErrClosed = errors.New("frontier is closed")
)

// Target is a pending unit of crawl work.
type Target struct {
	URL       string    `json:"url"`
	Depth     int       `json:"depth"`
	ParentURL string    `json:"parent_url,omitempty"`
	Enqueued  time.Time `json:"enqueued"`
}

// Queue is a thread-safe FIFO queue of crawl targets. FIFO order is what
// makes the crawl breadth-first: all depth-n targets drain before any
// depth-n+1 target, because enqueuing at n+1 happens while n is draining.
type Queue struct {
	mu     sync.RWMutex
	items  []*Target
	inSet  map[string]struct{}
	closed bool
}

// NewQueue creates an empty frontier queue.
func NewQueue() *Queue {
	return &Queue{
		inSet: make(map[string]struct{}),
	}
}

// Push appends a target. Targets whose URL is already queued are silently
// ignored.
func (q *Queue) Push(t *Target) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if _, exists := q.inSet[t.URL]; exists {
		return nil
	}
	if t.Enqueued.IsZero() {
		t.Enqueued = time.Now()
	}
	q.inSet[t.URL] = struct{}{}
	q.items = append(q.items, t)
	return nil
}

// Pop removes and returns the oldest target.
func (q *Queue) Pop() (*Target, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrClosed
	}
	if len(q.items) == 0 {
		return nil, ErrEmpty
	}

	t := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	delete(q.inSet, t.URL)
	return t, nil
}

// Len returns the number of pending targets.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// IsEmpty reports whether the queue has no pending targets.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Contains reports whether a URL is currently queued.
func (q *Queue) Contains(url string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	_, exists := q.inSet[url]
	return exists
}

// Targets returns a snapshot of all pending targets in FIFO order.
func (q *Queue) Targets() []Target {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]Target, 0, len(q.items))
	for _, t := range q.items {
		out = append(out, *t)
	}
	return out
}

// Close marks the queue closed; further pushes and pops fail.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
