package template

import "sync"

// Remapper records which new identifier each source record was copied to.
// Safe for concurrent use.
type Remapper struct {
	mu  sync.RWMutex
	ids map[string]string
}

func NewRemapper() *Remapper {
	return &Remapper{ids: make(map[string]string)}
}

// Record maps oldID to newID, replacing any earlier mapping.
func (m *Remapper) Record(oldID, newID string) {
	m.mu.Lock()
	m.ids[oldID] = newID
	m.mu.Unlock()
}

// Resolve returns the new identifier recorded for oldID.
func (m *Remapper) Resolve(oldID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.ids[oldID]
	return id, ok
}

// ResolveParent translates a parent reference. Unset and unknown parents
// both resolve to nil, which makes the child a root.
func (m *Remapper) ResolveParent(oldParent *string) *string {
	if oldParent == nil {
		return nil
	}
	id, ok := m.Resolve(*oldParent)
	if !ok {
		return nil
	}
	return &id
}

func (m *Remapper) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}
