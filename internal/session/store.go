// Package session is the single source of truth for the bearer credential.
//
// Every other component reads the credential through the Store interface:
// the route guard on each evaluation, the API gateway on each request, and
// the login/logout flows are the only writers. Centralizing the read path
// here keeps access-control code testable by substitution.
package session

import "sync"

// Store holds the current bearer credential for one principal.
//
// Implementations are last-writer-wins: concurrent writers (for example two
// browser tabs sharing a cookie) simply overwrite each other, and no
// cross-writer invalidation broadcast is attempted. Clear does not revoke
// anything retroactively; already-rendered authorized views go stale and
// are caught by the route guard on its next evaluation.
type Store interface {
	// Get returns the current credential, or ("", false) when none is set.
	// It has no side effects.
	Get() (string, bool)
	// Set persists the credential so subsequent Get calls reflect it
	// immediately.
	Set(token string) error
	// Clear removes the credential. Clearing an empty store is a no-op.
	Clear() error
}

// MemStore is an in-process Store. It backs tests and short-lived CLI
// invocations that were handed a token directly.
type MemStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Get implements Store.
func (s *MemStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set implements Store.
func (s *MemStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear implements Store.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
