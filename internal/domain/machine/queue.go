package machine

import "github.com/Nadrieril/rustorio/internal/domain/catalog"

// QueueEntry is one task waiting for a pool's output capacity.
type QueueEntry struct {
	TaskID   string
	Recipe   *catalog.Recipe
	Runs     int
	Quantity int // output units the waiter asked for
}

// ProducerQueue is the FIFO of tasks waiting on one machine pool. Insertion
// order is wake order; only the front entry may claim freed capacity.
type ProducerQueue struct {
	entries []QueueEntry
}

// Enqueue appends a waiter. Re-enqueueing a task already in the queue keeps
// its original position.
func (q *ProducerQueue) Enqueue(e QueueEntry) {
	for _, existing := range q.entries {
		if existing.TaskID == e.TaskID {
			return
		}
	}
	q.entries = append(q.entries, e)
}

// Front returns the first waiter without removing it.
func (q *ProducerQueue) Front() (QueueEntry, bool) {
	if len(q.entries) == 0 {
		return QueueEntry{}, false
	}
	return q.entries[0], true
}

// Remove drops a waiter wherever it sits (cancellation).
func (q *ProducerQueue) Remove(taskID string) {
	for i, e := range q.entries {
		if e.TaskID == taskID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// Contains reports whether the task is waiting in this queue.
func (q *ProducerQueue) Contains(taskID string) bool {
	for _, e := range q.entries {
		if e.TaskID == taskID {
			return true
		}
	}
	return false
}

// Len returns the queue depth.
func (q *ProducerQueue) Len() int { return len(q.entries) }
