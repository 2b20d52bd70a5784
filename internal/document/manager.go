package document

import (
	"sync"
)

// Manager tracks the editor sessions currently open, one Store per
// session key. A session key is the post id as a string, or any opaque
// token for a post that has not been persisted yet.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Store
}

// NewManager returns an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Store)}
}

// Open returns the store for the session key, creating it when absent.
// The second result reports whether the session was newly created.
func (m *Manager) Open(key string) (*Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s, false
	}
	s := NewStore()
	m.sessions[key] = s
	return s, true
}

// Get returns the store for the session key if one is open.
func (m *Manager) Get(key string) (*Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Discard drops the session, abandoning any unpublished edits.
func (m *Manager) Discard(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
