package gc

import "testing"

// ============ Handle Benchmarks ============

func BenchmarkStrong_CloneDrop(b *testing.B) {
	s := NewStrong(intPayload{value: 1})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Clone().Drop()
	}
	b.StopTimer()
	s.Drop()
}

func BenchmarkWeak_Upgrade(b *testing.B) {
	s := NewStrong(intPayload{value: 1})
	w := s.Downgrade()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		up, _ := w.Upgrade()
		up.Drop()
	}
	b.StopTimer()
	w.Drop()
	s.Drop()
}

// ============ Collector Benchmarks ============

func BenchmarkCollector_AttachDetach(b *testing.B) {
	c := NewCollectorWithThresholds[node](-1, -1)
	h := NewStrong(node{value: 1})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Attach(h)
		c.Detach(h)
	}
	b.StopTimer()
	h.Drop()
}

func BenchmarkCollector_CollectRootedGraph(b *testing.B) {
	c := NewCollectorWithThresholds[node](-1, -1)
	handles := make([]Strong[node], 100)
	for i := range handles {
		handles[i] = c.Create(node{value: i})
	}
	for i := range handles {
		link(handles[i], handles[(i+1)%len(handles)])
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Collect()
	}
	b.StopTimer()
	for _, h := range handles {
		h.Drop()
	}
}

func BenchmarkCollector_CycleCreationAndCollect(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c := NewCollectorWithThresholds[node](-1, -1)

		// 100-node cycle with no external roots.
		nodes := make([]Strong[node], 100)
		for j := range nodes {
			nodes[j] = c.Create(node{value: j})
		}
		for j := range nodes {
			link(nodes[j], nodes[(j+1)%len(nodes)])
		}
		for _, h := range nodes {
			h.Drop()
		}

		c.Collect()
	}
}
