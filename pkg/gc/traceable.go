package gc

// Tracing capability
//
// A payload type declares its outgoing GC edges by implementing Traceable:
// Trace pushes one weak handle per referenced object onto the queue. The
// collector calls Trace during the mark phase, under its own lock, so
// implementations must not call back into any collector method and must
// not block. A payload with no outgoing edges uses an empty body.
//
// The queue only borrows the pushed handles for the duration of the call;
// ownership stays with the payload.

// Traceable is the capability a payload type provides so the collector
// can walk its outgoing references.
type Traceable[T any] interface {
	Trace(q *RefQueue[T])
}

// Finalizer is an optional hook on payload types. Finalize runs exactly
// once, when the payload is destroyed: on the final strong drop, or when
// the collector sweeps the object. It runs under the collector lock when
// invoked from a sweep, so it must not call collector methods. A payload
// that holds handles whose counts matter should drop them here.
type Finalizer interface {
	Finalize()
}

// RefQueue accumulates the weak handles a payload reports from Trace.
type RefQueue[T any] struct {
	refs []Weak[T]
}

// Push appends one outgoing reference.
func (q *RefQueue[T]) Push(w Weak[T]) {
	q.refs = append(q.refs, w)
}

// Len returns the number of references pushed so far.
func (q *RefQueue[T]) Len() int {
	return len(q.refs)
}

func (q *RefQueue[T]) reset() {
	q.refs = q.refs[:0]
}
