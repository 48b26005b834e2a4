package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered uint64
	LoginSuccesses  uint64
	LoginFailures   uint64
	AuthSuccesses   uint64
	AuthCacheHits   uint64
	AuthFailures    map[string]uint64
	ContactsCreated uint64
	ContactsUpdated uint64
	ContactsDeleted uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered uint64
	loginSuccesses  uint64
	loginFailures   uint64
	authSuccesses   uint64
	authCacheHits   uint64
	contactsCreated uint64
	contactsUpdated uint64
	contactsDeleted uint64

	mu           sync.Mutex
	authFailures map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		authFailures: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	failures := make(map[string]uint64, len(m.authFailures))
	for reason, count := range m.authFailures {
		failures[reason] = count
	}
	m.mu.Unlock()

	return Snapshot{
		UsersRegistered: atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:  atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:   atomic.LoadUint64(&m.loginFailures),
		AuthSuccesses:   atomic.LoadUint64(&m.authSuccesses),
		AuthCacheHits:   atomic.LoadUint64(&m.authCacheHits),
		AuthFailures:    failures,
		ContactsCreated: atomic.LoadUint64(&m.contactsCreated),
		ContactsUpdated: atomic.LoadUint64(&m.contactsUpdated),
		ContactsDeleted: atomic.LoadUint64(&m.contactsDeleted),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncAuthSuccess increments the resolver success counter.
func (m *InMemoryRecorder) IncAuthSuccess(cacheHit bool) {
	atomic.AddUint64(&m.authSuccesses, 1)
	if cacheHit {
		atomic.AddUint64(&m.authCacheHits, 1)
	}
}

// IncAuthFailure increments the resolver failure counter for the reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	m.mu.Lock()
	m.authFailures[reason]++
	m.mu.Unlock()
}

// IncContactCreated increments the contact created counter.
func (m *InMemoryRecorder) IncContactCreated() {
	atomic.AddUint64(&m.contactsCreated, 1)
}

// IncContactUpdated increments the contact updated counter.
func (m *InMemoryRecorder) IncContactUpdated() {
	atomic.AddUint64(&m.contactsUpdated, 1)
}

// IncContactDeleted increments the contact deleted counter.
func (m *InMemoryRecorder) IncContactDeleted() {
	atomic.AddUint64(&m.contactsDeleted, 1)
}
