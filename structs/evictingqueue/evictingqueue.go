package evictingqueue

import "sync"

//
// EvictingQueue is a thread-safe queue that keeps at most a fixed number of elements by evicting
// the oldest one whenever a new element is added at capacity.
//
type EvictingQueue[T any] struct {
	mu    sync.Mutex
	size  int
	queue []T
}

//
// New instantiates a new evicting queue with the specified maximum size. Sizes below one are
// raised to one.
//
func New[T any](maxSize int) *EvictingQueue[T] {
	if maxSize < 1 {
		maxSize = 1
	}

	return &EvictingQueue[T]{
		size:  maxSize,
		queue: make([]T, 0, maxSize),
	}
}

//
// Add appends e and evicts the oldest element if the queue was full. It reports whether an element
// was evicted.
//
func (o *EvictingQueue[T]) Add(e T) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	evicted := len(o.queue) == o.size
	if evicted {
		o.queue = append(o.queue[:0], o.queue[1:]...)
	}

	o.queue = append(o.queue, e)

	return evicted
}

//
// Get returns the element at index (zero is the oldest) and a true sentinel, or the zero value and
// a false sentinel if the index is out of range.
//
func (o *EvictingQueue[T]) Get(index int) (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if index < 0 || index >= len(o.queue) {
		var zero T
		return zero, false
	}

	return o.queue[index], true
}

//
// Values returns a copy of the queue, oldest first.
//
func (o *EvictingQueue[T]) Values() []T {
	o.mu.Lock()
	defer o.mu.Unlock()

	values := make([]T, len(o.queue))
	copy(values, o.queue)

	return values
}

func (o *EvictingQueue[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.queue)
}

func (o *EvictingQueue[T]) Full() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.queue) == o.size
}
