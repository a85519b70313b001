// Package session tracks process-local identification session state: the
// bounded attempt counter and the dual-verification agreement cache. Sessions
// are never persisted.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strataworks/lithos/internal/verify"
	"github.com/strataworks/lithos/pkg/cache"
)

// Session is the state of one camera-to-result identification flow.
type Session struct {
	mu          sync.Mutex
	id          uuid.UUID
	attempts    int
	verifyCache *verify.Cache
	verifyTTL   time.Duration
}

func newSession(verifyTTL time.Duration) *Session {
	return &Session{
		id:          uuid.New(),
		verifyCache: verify.NewCache(verifyTTL),
		verifyTTL:   verifyTTL,
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// NextAttempt increments and returns the 1-based attempt counter.
func (s *Session) NextAttempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	return s.attempts
}

// Attempts returns the number of attempts made so far.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// VerifyCache returns the session's dual-verification agreement cache.
func (s *Session) VerifyCache() *verify.Cache {
	return s.verifyCache
}

// Reset clears the attempt counter and agreement cache and assigns a fresh
// session identifier. In-flight collaborator calls are unaffected; their
// results are simply discarded by the caller.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.New()
	s.attempts = 0
	s.verifyCache.Clear()
}

// DefaultIdleTTL is how long an untouched session stays registered. A
// camera-to-result flow spans minutes at most; idle entries past this age
// only hold memory.
const DefaultIdleTTL = 30 * time.Minute

// Manager is the in-process session registry. Sessions idle longer than the
// idle TTL are dropped lazily on access, so abandoned flows do not
// accumulate for the life of the process.
type Manager struct {
	mu        sync.Mutex
	sessions  *cache.Expiring[uuid.UUID, *Session]
	verifyTTL time.Duration
}

// NewManager creates a Manager whose sessions use the given dual-verify TTL
// and are evicted after idleTTL without activity.
func NewManager(verifyTTL, idleTTL time.Duration) *Manager {
	return &Manager{
		sessions:  cache.New[uuid.UUID, *Session](idleTTL, 0),
		verifyTTL: verifyTTL,
	}
}

// SetClock overrides the registry time source. Intended for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions.SetClock(now)
}

// Acquire returns the session with the given id, or a newly registered
// session when id is uuid.Nil, unknown, or expired. Acquiring a live
// session refreshes its idle clock.
func (m *Manager) Acquire(id uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != uuid.Nil {
		if s, ok := m.sessions.Get(id); ok {
			m.sessions.Put(id, s)
			return s
		}
	}

	s := newSession(m.verifyTTL)
	m.sessions.Put(s.ID(), s)
	return s
}

// Reset resets the session with the given id and re-registers it under its
// fresh identifier. Returns the session, or nil when the id is unknown.
func (m *Manager) Reset(id uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions.Get(id)
	if !ok {
		return nil
	}

	m.sessions.Delete(id)
	s.Reset()
	m.sessions.Put(s.ID(), s)
	return s
}
