package bridge

import "github.com/eapache/queue"

// Queue is the FIFO of messages received from the client while the
// upstream connection is still being established. A limit of zero means
// unbounded.
type Queue struct {
	items *queue.Queue
	limit int
}

// NewQueue returns an empty queue holding at most limit messages.
func NewQueue(limit int) *Queue {
	if limit < 0 {
		limit = 0
	}
	return &Queue{items: queue.New(), limit: limit}
}

// Push appends msg. It reports false and leaves the queue unchanged when
// the limit is reached.
func (q *Queue) Push(msg Message) bool {
	if q.limit > 0 && q.items.Length() >= q.limit {
		return false
	}
	q.items.Add(msg)
	return true
}

// Drain removes every message in arrival order and passes it to fn. The
// queue is empty when Drain returns, even if fn reports errors.
func (q *Queue) Drain(fn func(Message)) int {
	n := 0
	for q.items.Length() > 0 {
		msg := q.items.Remove().(Message)
		fn(msg)
		n++
	}
	return n
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	return q.items.Length()
}

// Clear discards all queued messages.
func (q *Queue) Clear() {
	if q.items.Length() == 0 {
		return
	}
	q.items = queue.New()
}
