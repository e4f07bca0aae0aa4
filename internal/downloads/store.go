package downloads

import "sync"

// Store is the session table: id → session. It is injected rather than
// module-global so tests can instantiate isolated stores.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the session for id, if present.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Put registers a session, replacing any prior entry for the same id.
// The prior entry, if any, is returned so the caller can tear it down.
func (st *Store) Put(s *Session) (prior *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	prior = st.sessions[s.ID]
	st.sessions[s.ID] = s
	return prior
}

// Delete removes the session for id if it is still the given session.
// A stale delete must not remove a newer session registered under the
// same id.
func (st *Store) Delete(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if cur, ok := st.sessions[s.ID]; ok && cur == s {
		delete(st.sessions, s.ID)
	}
}

// Len returns the number of registered sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
