package engine

import (
	"sync"

	"github.com/pkovacs/cloudkeeper/internal/scan"
)

// WorkQueue is an unbounded concurrent FIFO of source items. The driver is
// the single producer during the enqueue phase; workers are the consumers.
// TryDequeue never blocks, so a worker can interleave dequeue attempts with
// stop-signal checks.
type WorkQueue struct {
	mu    sync.Mutex
	items []*scan.SourceItem
	head  int
}

// NewWorkQueue creates an empty queue.
func NewWorkQueue() *WorkQueue {
	return &WorkQueue{}
}

// Enqueue appends an item to the tail of the queue.
func (q *WorkQueue) Enqueue(item *scan.SourceItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// TryDequeue removes and returns the head of the queue, or (nil, false) when
// the queue is currently empty.
func (q *WorkQueue) TryDequeue() (*scan.SourceItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.items) {
		return nil, false
	}

	item := q.items[q.head]
	q.items[q.head] = nil // release the reference for GC
	q.head++

	// Reclaim the backing array once everything has been consumed
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}

	return item, true
}

// Len returns the number of items currently waiting in the queue.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items) - q.head
}
