package accounts

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PendingRegistration is a partially attributed account verified by an
// external collaborator, parked while the completion form collects the
// missing attributes. Identity is set for provider logins, AuthSourceID for
// directory logins; the rest are whatever the collaborator released.
type PendingRegistration struct {
	Login        string
	Name         string
	Email        string
	Identity     string
	AuthSourceID string
}

// PendingStore stashes pending registrations that arrived without enough
// attributes to create a user. Each payload is keyed by a correlation token
// handed to the completion form; entries expire after a fixed TTL rather than
// riding on ambient session lifetime. Expired entries are dropped on access.
type PendingStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]pendingEntry

	// Overridable for tests.
	now func() time.Time
}

type pendingEntry struct {
	reg     PendingRegistration
	expires time.Time
}

// NewPendingStore creates a stash with the given entry lifetime.
func NewPendingStore(ttl time.Duration) *PendingStore {
	return &PendingStore{
		ttl:     ttl,
		entries: map[string]pendingEntry{},
		now:     time.Now,
	}
}

// Put stashes a payload and returns the correlation key for the completion
// submission.
func (s *PendingStore) Put(reg PendingRegistration) string {
	key := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.entries[key] = pendingEntry{reg: reg, expires: s.now().Add(s.ttl)}
	return key
}

// Take removes and returns the payload for a correlation key. Returns false
// when the key is unknown or the entry has expired.
func (s *PendingStore) Take(key string) (PendingRegistration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	e, ok := s.entries[key]
	if !ok {
		return PendingRegistration{}, false
	}
	delete(s.entries, key)
	return e.reg, true
}

// Peek returns the payload without consuming it, for re-rendering the
// completion form.
func (s *PendingStore) Peek(key string) (PendingRegistration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	e, ok := s.entries[key]
	return e.reg, ok
}

// Len returns the number of live entries.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	return len(s.entries)
}

// Caller must hold mu.
func (s *PendingStore) prune() {
	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
}
