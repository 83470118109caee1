package core

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// =============================================================================
// idQueue: FIFO of task ids, consumed from the front until empty
// =============================================================================

// idQueue is not safe for concurrent use. Appending while a drain loop pops
// from the front is supported: the drain sees the appended ids.
type idQueue struct {
	ids []TaskID
}

func newIDQueue() idQueue {
	return idQueue{ids: make([]TaskID, 0, defaultQueueCap)}
}

func (q *idQueue) push(id TaskID) {
	q.ids = append(q.ids, id)
}

func (q *idQueue) popFront() (TaskID, bool) {
	if len(q.ids) == 0 {
		return 0, false
	}

	id := q.ids[0]
	q.ids[0] = 0
	q.ids = q.ids[1:]
	q.maybeCompact()

	return id, true
}

// remove deletes id if it is still queued, keeping the order of the rest.
func (q *idQueue) remove(id TaskID) bool {
	for i, v := range q.ids {
		if v != id {
			continue
		}
		copy(q.ids[i:], q.ids[i+1:])
		q.ids[len(q.ids)-1] = 0
		q.ids = q.ids[:len(q.ids)-1]
		q.maybeCompact()
		return true
	}
	return false
}

func (q *idQueue) len() int {
	return len(q.ids)
}

func (q *idQueue) maybeCompact() {
	n := len(q.ids)
	c := cap(q.ids)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.ids = make([]TaskID, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]TaskID, n, newCap)
	copy(newSlice, q.ids)
	q.ids = newSlice
}
