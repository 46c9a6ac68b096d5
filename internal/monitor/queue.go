package monitor

import (
	"sync"

	"github.com/starwatch-app/starwatch/internal/model"
)

// eventQueue is a thread-safe FIFO of extracted events. The producer loop is
// the only writer and the consumer loop the only reader, but engine-state
// reads happen from other goroutines, so every access takes the lock.
type eventQueue struct {
	mu    sync.Mutex
	items []model.Event
}

func (q *eventQueue) Enqueue(ev model.Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
}

func (q *eventQueue) Dequeue() (model.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	ev := q.items[0]
	q.items[0] = nil // release for GC
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return ev, true
}

func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *eventQueue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
