package reader

import "sync"

// State is the shared aggregate state fed by the payload decoders:
// version fields, battery fields and the tag store. Writes happen only
// on the session loop; readers take snapshots.
type State struct {
	mu      sync.RWMutex
	version map[string]string
	battery map[string]string

	// Tags aggregates inventory read events.
	Tags *TagStore
}

// NewState creates empty aggregate state with the given per-tag history
// limit.
func NewState(historyLimit int) *State {
	return &State{
		version: make(map[string]string),
		battery: make(map[string]string),
		Tags:    NewTagStore(historyLimit),
	}
}

// SetVersion stores a version field under its display label.
func (s *State) SetVersion(label, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version[label] = value
}

// SetBattery stores a battery field under its display label.
func (s *State) SetBattery(label, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battery[label] = value
}

// Version returns a copy of the version fields. The map persists across
// reconnects; it is never cleared automatically.
func (s *State) Version() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.version)
}

// Battery returns a copy of the battery fields.
func (s *State) Battery() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.battery)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
