package reorder

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period between the last local reorder
// and the persistence write.
const DefaultDebounce = 500 * time.Millisecond

// PersistFunc writes the final order for one post type.
type PersistFunc func(ctx context.Context, postType string, ids []int64) error

// Manager holds the optimistic in-memory order for one post type.
// Local moves apply immediately; persistence is debounced so a burst of
// drags collapses into one write carrying only the final arrangement.
// On write failure the local order rolls back to the last snapshot
// fetched from the server, with no retry.
//
// Rollback targets the server snapshot while HasUnsavedChanges compares
// against the last successfully saved order; the two can diverge when a
// save succeeds without a subsequent refetch.
type Manager struct {
	mu          sync.Mutex
	postType    string
	local       []int64
	lastSaved   []int64
	serverOrder []int64
	timer       *time.Timer
	debounce    time.Duration
	persist     PersistFunc
	stopped     bool
}

// NewManager returns a manager for one post type. A debounce of 0
// selects DefaultDebounce.
func NewManager(postType string, debounce time.Duration, persist PersistFunc) *Manager {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Manager{
		postType: postType,
		debounce: debounce,
		persist:  persist,
	}
}

// SetServerOrder installs a fresh snapshot fetched from storage. It
// resets local and last-saved state, discarding any pending edits, and
// cancels a scheduled write.
func (m *Manager) SetServerOrder(ids []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTimerLocked()
	m.serverOrder = append([]int64(nil), ids...)
	m.local = append([]int64(nil), ids...)
	m.lastSaved = append([]int64(nil), ids...)
}

// Move removes the element at from and reinserts it at to, then
// schedules a debounced write. Out-of-range indexes are ignored.
func (m *Manager) Move(from, to int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.local)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}
	id := m.local[from]
	m.local = append(m.local[:from], m.local[from+1:]...)
	m.local = append(m.local[:to], append([]int64{id}, m.local[to:]...)...)
	m.scheduleLocked()
}

// SetOrder replaces the whole local order and schedules a debounced
// write.
func (m *Manager) SetOrder(ids []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.local = append([]int64(nil), ids...)
	m.scheduleLocked()
}

// Order returns a copy of the current local order.
func (m *Manager) Order() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.local...)
}

// HasUnsavedChanges reports whether the local order differs from the
// last successfully saved one.
func (m *Manager) HasUnsavedChanges() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !equalOrder(m.local, m.lastSaved)
}

// Flush cancels any pending timer and persists immediately. Returns the
// persistence error, after rollback has been applied.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.Lock()
	m.cancelTimerLocked()
	m.mu.Unlock()
	return m.fire(ctx)
}

// Stop cancels any pending write without persisting.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTimerLocked()
	m.stopped = true
}

// scheduleLocked (re)arms the debounce timer. Caller must hold the lock.
func (m *Manager) scheduleLocked() {
	if m.stopped {
		return
	}
	m.cancelTimerLocked()
	m.timer = time.AfterFunc(m.debounce, func() {
		if err := m.fire(context.Background()); err != nil {
			log.Printf("reorder persist failed for type %s: %v", m.postType, err)
		}
	})
}

func (m *Manager) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// fire snapshots the local order, persists it outside the lock, then
// promotes the snapshot on success or rolls local back to the server
// snapshot on failure.
func (m *Manager) fire(ctx context.Context) error {
	m.mu.Lock()
	snapshot := append([]int64(nil), m.local...)
	persist := m.persist
	m.mu.Unlock()

	if persist == nil || len(snapshot) == 0 {
		return nil
	}

	err := persist(ctx, m.postType, snapshot)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.local = append([]int64(nil), m.serverOrder...)
		return err
	}
	m.lastSaved = snapshot
	return nil
}

func equalOrder(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Registry hands out one Manager per post type.
type Registry struct {
	mu       sync.Mutex
	managers map[string]*Manager
	debounce time.Duration
	persist  PersistFunc
}

// NewRegistry returns a registry whose managers share the debounce
// interval and persistence function.
func NewRegistry(debounce time.Duration, persist PersistFunc) *Registry {
	return &Registry{
		managers: make(map[string]*Manager),
		debounce: debounce,
		persist:  persist,
	}
}

// ForType returns the manager for a post type, creating it when absent.
// The second result reports whether it was newly created.
func (r *Registry) ForType(postType string) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.managers[postType]; ok {
		return m, false
	}
	m := NewManager(postType, r.debounce, r.persist)
	r.managers[postType] = m
	return m, true
}

// StopAll cancels pending writes on every manager.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.managers {
		m.Stop()
	}
}
