package gc

import (
	"sync"
)

// Collector - registry plus mark-and-sweep
//
// The collector keeps exactly one strong handle per tracked object, keyed
// by control-block identity. That one reference makes roots cheap to spot:
// any tracked object whose strong count exceeds one is held somewhere
// outside the collector. A pass marks everything reachable from those
// roots through the payloads' Trace edges, then sweeps the rest - which is
// precisely the cyclic garbage plain reference counting can never reclaim.
//
// All collector state lives behind one mutex. A pass runs to completion
// under it; handle operations never take it. Trace and Finalize run under
// it, so they must not call back into the collector.

// DefaultPercentage is the attach-trigger percentage used by NewCollector.
const DefaultPercentage = 20

const thresholdDisabled = -1

// Collector tracks objects of payload type T and reclaims the ones whose
// only remaining strong references are its own.
type Collector[T Traceable[T]] struct {
	mu          sync.Mutex
	objects     map[*heapedObject[T]]Strong[T]
	attachCount int64
	allocated   int64
	percentage  int64
	memLimit    int64
	stats       CollectorStats
}

// NewCollector returns a collector with the default percentage trigger
// and no memory trigger.
func NewCollector[T Traceable[T]]() *Collector[T] {
	return NewCollectorWithThresholds[T](DefaultPercentage, thresholdDisabled)
}

// NewCollectorWithPercentage returns a collector whose only trigger is the
// percentage heuristic.
func NewCollectorWithPercentage[T Traceable[T]](percentage int) *Collector[T] {
	return NewCollectorWithThresholds[T](percentage, thresholdDisabled)
}

// NewCollectorWithMemoryLimit returns a collector whose only trigger is
// the allocated-memory limit, in bytes.
func NewCollectorWithMemoryLimit[T Traceable[T]](limit int64) *Collector[T] {
	return NewCollectorWithThresholds[T](thresholdDisabled, limit)
}

// NewCollectorWithThresholds returns a collector with both triggers set.
// A negative value disables that trigger.
func NewCollectorWithThresholds[T Traceable[T]](percentage int, limit int64) *Collector[T] {
	if percentage < 0 {
		percentage = thresholdDisabled
	}
	if limit < 0 {
		limit = thresholdDisabled
	}
	return &Collector[T]{
		objects:    make(map[*heapedObject[T]]Strong[T]),
		percentage: int64(percentage),
		memLimit:   limit,
	}
}

// Attach registers the object behind h. The collector keeps its own clone
// of the handle. Attaching an already-tracked object is idempotent: the
// registry and the memory tally are unchanged, though the attach counter
// still advances. Attach may run a collection pass before returning.
func (c *Collector[T]) Attach(h Strong[T]) {
	key := h.block()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attachCount++
	c.stats.Attaches++
	if _, ok := c.objects[key]; !ok {
		c.objects[key] = h.Clone()
		c.allocated += key.size
	}
	c.maybeCollectLocked()
}

// Create wraps value in a strong handle, attaches it, and returns the
// handle to the caller.
func (c *Collector[T]) Create(value T) Strong[T] {
	h := NewStrong(value)
	c.Attach(h)
	return h
}

// Detach removes the object behind h from the registry and reports
// whether it was tracked. It never runs a collection pass.
func (c *Collector[T]) Detach(h Strong[T]) bool {
	key := h.block()
	c.mu.Lock()
	defer c.mu.Unlock()

	own, ok := c.objects[key]
	if !ok {
		return false
	}
	delete(c.objects, key)
	c.allocated -= key.size
	c.stats.Detaches++
	own.Drop()
	return true
}

// Collect runs one unconditional mark-and-sweep pass.
func (c *Collector[T]) Collect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collectLocked()
}

// ObjectCount returns the number of tracked objects.
func (c *Collector[T]) ObjectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

// AllocatedMemory returns the summed payload sizes of tracked objects.
func (c *Collector[T]) AllocatedMemory() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocated
}

// MemoryThreshold returns the memory trigger limit, and whether one is set.
func (c *Collector[T]) MemoryThreshold() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.memLimit == thresholdDisabled {
		return 0, false
	}
	return c.memLimit, true
}

// SetMemoryThreshold replaces the memory trigger limit. A negative value
// disables the trigger.
func (c *Collector[T]) SetMemoryThreshold(limit int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if limit < 0 {
		limit = thresholdDisabled
	}
	c.memLimit = limit
}

// GetAll returns a snapshot of clones of every tracked object's strong
// handle, taken under the collector lock. The caller owns the clones and
// must drop them.
func (c *Collector[T]) GetAll() []Strong[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := make([]Strong[T], 0, len(c.objects))
	for _, own := range c.objects {
		all = append(all, own.Clone())
	}
	return all
}

// Close drops every collector-held handle and empties the registry.
// Objects not externally referenced die here. The collector remains
// usable afterwards.
func (c *Collector[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, own := range c.objects {
		delete(c.objects, key)
		own.Drop()
	}
	c.allocated = 0
	c.attachCount = 0
}

// maybeCollectLocked evaluates the attach triggers. Either firing alone
// starts a pass; an empty registry never collects.
func (c *Collector[T]) maybeCollectLocked() {
	if len(c.objects) == 0 {
		return
	}
	if c.percentage != thresholdDisabled &&
		c.attachCount*100 >= int64(len(c.objects))*c.percentage {
		c.collectLocked()
		return
	}
	if c.memLimit != thresholdDisabled && c.allocated >= c.memLimit {
		c.collectLocked()
	}
}

// collectLocked is one stop-the-world mark-and-sweep pass.
//
// Roots are tracked objects with strong count > 1: the collector accounts
// for one reference itself, so anything above that is an external holder.
// Marking walks Trace edges, upgrading each reported weak handle; an
// upgrade that lands on a tracked, unmarked block marks and enqueues it.
// The temporary strong from the upgrade is dropped as soon as the block
// is enqueued so it cannot inflate a later root scan. Unmarked entries
// are swept: removing them drops the collector's handle, the last strong
// reference they have, which destroys their payloads.
func (c *Collector[T]) collectLocked() {
	c.attachCount = 0
	if len(c.objects) == 0 {
		return
	}
	c.stats.Collections++

	for h := range c.objects {
		h.marked.Store(false)
	}

	var work []*heapedObject[T]
	for h := range c.objects {
		if h.strong.Load() > 1 {
			h.marked.Store(true)
			work = append(work, h)
		}
	}

	var queue RefQueue[T]
	for len(work) > 0 {
		h := work[len(work)-1]
		work = work[:len(work)-1]

		queue.reset()
		(*h.valueRef()).Trace(&queue)
		for _, w := range queue.refs {
			s, ok := w.Upgrade()
			if !ok {
				continue
			}
			target := s.obj
			if _, tracked := c.objects[target]; tracked && !target.marked.Load() {
				target.marked.Store(true)
				work = append(work, target)
			}
			s.Drop()
		}
	}

	for h, own := range c.objects {
		if h.marked.Load() {
			continue
		}
		delete(c.objects, h)
		c.allocated -= h.size
		own.Drop()
		c.stats.ObjectsCollected++
	}
}
