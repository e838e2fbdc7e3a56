package store

// Queue collects keys for end-of-tick processing. Keys queued twice before
// a flush are delivered once.
type Queue[K comparable] struct {
	keys   []K
	queued map[K]struct{}
}

func NewQueue[K comparable](capacity int) *Queue[K] {
	return &Queue[K]{
		keys:   make([]K, 0, capacity),
		queued: make(map[K]struct{}, capacity),
	}
}

func (q *Queue[K]) Push(key K) {
	if _, ok := q.queued[key]; ok {
		return
	}
	q.queued[key] = struct{}{}
	q.keys = append(q.keys, key)
}

func (q *Queue[K]) Len() int { return len(q.keys) }

// Flush calls fn for every queued key in push order and empties the queue.
func (q *Queue[K]) Flush(fn func(K)) {
	for _, k := range q.keys {
		fn(k)
	}
	q.keys = q.keys[:0]
	clear(q.queued)
}
