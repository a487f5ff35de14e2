package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is a concurrency-safe collection of sessions keyed by an opaque
// per-identity UUID, so one process can hold several authenticated accounts
// at once. All operations are linearized behind a single lock; none of them
// performs I/O.
//
// Most callers want DefaultRegistry. Tests and embedders that need isolation
// construct their own with NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*UserSession
}

// NewRegistry returns an empty, independent registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*UserSession)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide shared registry, creating it on
// first use. It lives for the lifetime of the process; RemoveAll is its
// explicit teardown.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register inserts the session under key, overwriting any existing entry.
func (r *Registry) Register(key uuid.UUID, s *UserSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[key] = s
}

// Session returns the session registered under key, or (nil, false) when
// the key is absent.
func (r *Registry) Session(key uuid.UUID) (*UserSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Contains reports whether a session is registered under key.
func (r *Registry) Contains(key uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[key]
	return ok
}

// Update replaces the session under key only when one is already
// registered. It returns false, without creating an entry, when the key is
// absent: callers treat "nothing to update" as a normal branch, not an
// error.
func (r *Registry) Update(key uuid.UUID, s *UserSession) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[key]; !ok {
		return false
	}
	r.sessions[key] = s
	return true
}

// Remove deletes the entry under key. Removing an absent key is a no-op.
func (r *Registry) Remove(key uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}

// RemoveAll empties the registry.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[uuid.UUID]*UserSession)
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
