package gc

import (
	"fmt"

	"github.com/inhies/go-bytesize"
)

// CollectorStats is a point-in-time snapshot of a collector's counters.
type CollectorStats struct {
	Attaches         int64 // attach calls over the collector's lifetime
	Detaches         int64 // successful detach calls
	Collections      int64 // mark-and-sweep passes run
	ObjectsCollected int64 // objects reclaimed by sweeps
	LiveObjects      int   // currently tracked objects
	AllocatedMemory  int64 // summed payload bytes of tracked objects
}

// String renders the snapshot with a human-readable memory figure.
func (s CollectorStats) String() string {
	return fmt.Sprintf("objects=%d allocated=%s attaches=%d detaches=%d collections=%d collected=%d",
		s.LiveObjects,
		bytesize.New(float64(s.AllocatedMemory)),
		s.Attaches, s.Detaches, s.Collections, s.ObjectsCollected)
}

// Stats returns a snapshot of the collector's counters.
func (c *Collector[T]) Stats() CollectorStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.LiveObjects = len(c.objects)
	s.AllocatedMemory = c.allocated
	return s
}

// SetMemoryThresholdString sets the memory trigger from a human-readable
// size such as "4KB" or "1.5MB".
func (c *Collector[T]) SetMemoryThresholdString(limit string) error {
	b, err := bytesize.Parse(limit)
	if err != nil {
		return fmt.Errorf("invalid memory threshold %q: %v", limit, err)
	}
	c.SetMemoryThreshold(int64(b))
	return nil
}
