package reader

import "sync"

// TagStat aggregates the read events observed for one tag.
type TagStat struct {
	// Count increments once per observed read event.
	Count int `json:"count"`
	// History holds the most recent strength samples in arrival order,
	// bounded by the store's history limit with FIFO eviction. A nil
	// entry is a read that never got a strength sample; the gap is kept,
	// not dropped.
	History []*float64 `json:"history"`
	// Min and Max are running extrema over all non-nil samples ever
	// seen, not just the retained history.
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// TagStore maps tag identifiers to aggregated read statistics. Writes
// come from a single session loop; snapshot reads may come from any
// goroutine.
type TagStore struct {
	mu    sync.RWMutex
	limit int
	tags  map[string]*TagStat
}

// NewTagStore creates a store keeping at most limit strength samples
// per tag.
func NewTagStore(limit int) *TagStore {
	if limit <= 0 {
		limit = 500
	}
	return &TagStore{
		limit: limit,
		tags:  make(map[string]*TagStat),
	}
}

// Observe records a read event for a tag: the count increments and a
// nil placeholder joins the history, evicting the oldest sample when
// the limit is exceeded. It returns the new count.
func (s *TagStore) Observe(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.tags[id]
	if st == nil {
		st = &TagStat{}
		s.tags[id] = st
	}
	st.Count++
	st.History = append(st.History, nil)
	if len(st.History) > s.limit {
		st.History = st.History[len(st.History)-s.limit:]
	}
	return st.Count
}

// Resolve fills the latest unresolved placeholder of a tag with a
// strength sample and updates the running extrema. Calls for unknown
// tags, or when the latest read already has a sample, are no-ops.
func (s *TagStore) Resolve(id string, strength float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.tags[id]
	if st == nil || len(st.History) == 0 {
		return
	}
	last := len(st.History) - 1
	if st.History[last] != nil {
		return
	}
	v := strength
	st.History[last] = &v

	if st.Min == nil || v < *st.Min {
		m := v
		st.Min = &m
	}
	if st.Max == nil || v > *st.Max {
		m := v
		st.Max = &m
	}
}

// Len returns the number of distinct tags seen.
func (s *TagStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tags)
}

// Snapshot returns a deep copy of all aggregates.
func (s *TagStore) Snapshot() map[string]TagStat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]TagStat, len(s.tags))
	for id, st := range s.tags {
		cp := TagStat{Count: st.Count}
		cp.History = make([]*float64, len(st.History))
		copy(cp.History, st.History)
		if st.Min != nil {
			m := *st.Min
			cp.Min = &m
		}
		if st.Max != nil {
			m := *st.Max
			cp.Max = &m
		}
		out[id] = cp
	}
	return out
}

// Clear drops every aggregate. This is the only way tags are ever
// deleted; it backs the manual reset operation.
func (s *TagStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = make(map[string]*TagStat)
}
