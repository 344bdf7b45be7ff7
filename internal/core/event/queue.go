package event

// Queue is a typed single-tick event queue. Producers Emit during their
// phase; the consuming system Drains later in the same tick. Anything left
// undrained is dropped at the next Emit cycle's Drain, never carried across
// ticks implicitly.
type Queue[T any] struct {
	events []T
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{events: make([]T, 0, 32)}
}

func (q *Queue[T]) Emit(ev T) {
	q.events = append(q.events, ev)
}

// Drain calls fn for every queued event, then clears the queue. Events
// emitted by fn itself are processed in the same pass.
func (q *Queue[T]) Drain(fn func(T)) {
	for i := 0; i < len(q.events); i++ {
		fn(q.events[i])
	}
	q.events = q.events[:0]
}

func (q *Queue[T]) Len() int { return len(q.events) }
