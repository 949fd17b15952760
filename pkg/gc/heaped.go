package gc

import (
	"sync/atomic"
	"unsafe"
)

// Heaped object - the shared control block behind every managed value
//
// One block per payload. It carries:
//   - strong: owning references. Reaches zero -> the payload is destroyed.
//   - weak: non-owning references, plus one implicit slot held on behalf of
//     all strong handles while strong > 0. Reaches zero -> the block itself
//     is dead (nothing left can reach it).
//   - marked: scratch bit for the collector's mark phase.
//   - dropped: guards against touching a destroyed payload.
//
// The implicit weak slot means a weak handle never races payload
// destruction while inspecting the block: the block outlives the payload
// for as long as any handle of either kind exists.
type heapedObject[T any] struct {
	value   *T
	strong  atomic.Int64
	weak    atomic.Int64
	marked  atomic.Bool
	dropped atomic.Bool
	size    int64
}

func newHeapedObject[T any](value T) *heapedObject[T] {
	h := &heapedObject[T]{
		value: &value,
		size:  int64(unsafe.Sizeof(value)),
	}
	h.strong.Store(1)
	h.weak.Store(1) // implicit slot for the strong side
	return h
}

// dropValue destroys the payload exactly once. Runs the payload's
// Finalize hook, if any, before clearing it.
func (h *heapedObject[T]) dropValue() {
	if !h.dropped.CompareAndSwap(false, true) {
		return
	}
	if f, ok := any(h.value).(Finalizer); ok {
		f.Finalize()
	}
	h.value = nil
}

// decWeak releases one weak slot. When the last slot goes, the block is
// unreachable and the runtime reclaims it.
func (h *heapedObject[T]) decWeak() {
	if h.weak.Load() == 0 {
		panic("gc: weak count underflow")
	}
	h.weak.Add(-1)
}

// valueRef returns the payload pointer, panicking if the payload has
// already been destroyed.
func (h *heapedObject[T]) valueRef() *T {
	if h.dropped.Load() {
		panic("gc: access to a destroyed payload")
	}
	return h.value
}

func (h *heapedObject[T]) strongCount() int {
	return int(h.strong.Load())
}

// weakCount reports the user-visible weak count: the implicit slot held
// by the strong side is subtracted while the payload is alive.
func (h *heapedObject[T]) weakCount() int {
	w := h.weak.Load()
	if h.strong.Load() > 0 {
		w--
	}
	if w < 0 {
		w = 0
	}
	return int(w)
}
