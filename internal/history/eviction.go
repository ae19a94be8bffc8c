package history

// EvictOver removes unpinned entries, oldest first, until the list fits max,
// and returns how many it removed. A max of zero or less means unlimited.
//
// The loop runs to convergence rather than removing one entry per call: a
// single poll tick can insert both a text and an image entry, and a
// single-step policy would let the count drift past the limit. When every
// remaining entry is pinned the limit is soft and eviction stops.
func (s *Store) EvictOver(max int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if max <= 0 {
		return 0
	}
	removed := 0
	for len(s.entries) > max {
		idx := -1
		for i := len(s.entries) - 1; i >= 0; i-- {
			if !s.entries[i].Pinned {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		victim := s.entries[idx]
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
		s.releaseImageLocked(victim)
		removed++
	}
	if removed > 0 {
		s.persistLocked()
	}
	return removed
}
