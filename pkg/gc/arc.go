package gc

// Strong and weak handles
//
// Strong owns a share of the payload; Weak owns a share of the control
// block only and can attempt to upgrade. All count updates are lock-free
// per-block atomics, so handles are freely shareable across goroutines.
//
// Go has no destructors: every handle must be released with an explicit
// Drop, exactly once. Dropping the last Strong destroys the payload;
// dropping the last handle of either kind lets the block go. Misuse -
// dropping a Strong whose count is already zero, access through a
// released payload - is a logic bug and panics. A second Drop of the same
// handle while other strong handles exist is not detected.

// Strong is an owning handle to a managed payload.
type Strong[T any] struct {
	obj *heapedObject[T]
}

// Weak is a non-owning handle to a managed payload's control block.
type Weak[T any] struct {
	obj *heapedObject[T]
}

// NewStrong moves value onto the managed heap and returns the first
// strong handle to it.
func NewStrong[T any](value T) Strong[T] {
	return Strong[T]{obj: newHeapedObject(value)}
}

func (s Strong[T]) block() *heapedObject[T] {
	if s.obj == nil {
		panic("gc: use of zero-value Strong handle")
	}
	return s.obj
}

// Clone returns an additional strong handle to the same payload.
func (s Strong[T]) Clone() Strong[T] {
	s.block().strong.Add(1)
	return Strong[T]{obj: s.obj}
}

// Drop releases this strong handle. The final drop destroys the payload
// and releases the implicit weak slot.
func (s Strong[T]) Drop() {
	h := s.block()
	if h.strong.Load() == 0 {
		panic("gc: drop of a Strong with 0 strong references")
	}
	if h.strong.Add(-1) == 0 {
		h.dropValue()
		h.decWeak()
	}
}

// Value returns the payload. Valid for as long as this handle is held.
func (s Strong[T]) Value() *T {
	return s.block().valueRef()
}

// TryMut returns the payload for exclusive use iff this is the only
// handle of any kind to it. Otherwise it reports false.
func (s Strong[T]) TryMut() (*T, bool) {
	h := s.block()
	if h.strong.Load() == 1 && h.weak.Load() == 1 {
		return h.valueRef(), true
	}
	return nil, false
}

// Mut is TryMut for callers that know the handle is unique; it panics on
// a non-unique handle to surface the logic bug.
func (s Strong[T]) Mut() *T {
	v, ok := s.TryMut()
	if !ok {
		panic("gc: Mut on a non-unique Strong handle")
	}
	return v
}

// Downgrade returns a weak handle to the same payload.
func (s Strong[T]) Downgrade() Weak[T] {
	s.block().weak.Add(1)
	return Weak[T]{obj: s.obj}
}

// StrongCount loads the current strong count.
func (s Strong[T]) StrongCount() int {
	return s.block().strongCount()
}

// WeakCount loads the current user-visible weak count.
func (s Strong[T]) WeakCount() int {
	return s.block().weakCount()
}

// Same reports whether both handles refer to the same payload identity.
func (s Strong[T]) Same(other Strong[T]) bool {
	return s.obj == other.obj
}

func (w Weak[T]) block() *heapedObject[T] {
	if w.obj == nil {
		panic("gc: use of zero-value Weak handle")
	}
	return w.obj
}

// Clone returns an additional weak handle to the same control block.
func (w Weak[T]) Clone() Weak[T] {
	w.block().weak.Add(1)
	return Weak[T]{obj: w.obj}
}

// Drop releases this weak handle.
func (w Weak[T]) Drop() {
	w.block().decWeak()
}

// Upgrade attempts to obtain a strong handle. It succeeds iff the payload
// is still alive, and is linearizable against concurrent final drops: the
// strong count is raised with a compare-and-swap from a nonzero value, so
// it can never resurrect a destroyed payload.
func (w Weak[T]) Upgrade() (Strong[T], bool) {
	h := w.block()
	for {
		n := h.strong.Load()
		if n == 0 {
			return Strong[T]{}, false
		}
		if h.strong.CompareAndSwap(n, n+1) {
			return Strong[T]{obj: h}, true
		}
	}
}

// IsValid is a non-authoritative liveness snapshot: true if the payload
// was alive at the instant of the load. Use Upgrade to act on it.
func (w Weak[T]) IsValid() bool {
	return w.block().strong.Load() > 0
}
