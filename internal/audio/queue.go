package audio

import "sync"

// Queue is the single-producer/single-consumer hand-off between the capture
// stream and the engine loop. Push never blocks; DrainAll atomically removes
// and returns everything pushed before the call, in arrival order.
type Queue struct {
	mu     sync.Mutex
	chunks [][]byte
}

// NewQueue returns an empty chunk queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends one chunk to the pending set.
func (q *Queue) Push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	q.mu.Lock()
	q.chunks = append(q.chunks, chunk)
	q.mu.Unlock()
}

// DrainAll removes and returns all pending chunks as one consistent snapshot.
func (q *Queue) DrainAll() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.chunks) == 0 {
		return nil
	}
	out := q.chunks
	q.chunks = nil
	return out
}

// Len reports the number of pending chunks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chunks)
}
