package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered      uint64
	LoginSuccesses       uint64
	LoginFailures        uint64
	AuthSuccesses        uint64
	AuthCacheHits        uint64
	AuthFailuresMissing  uint64
	AuthFailuresInvalid  uint64
	AuthFailuresUnknown  uint64
	AuthFailuresStore    uint64
	SubscriptionsCreated uint64
	SubscriptionsUpdated uint64
	SubscriptionsDeleted uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered      uint64
	loginSuccesses       uint64
	loginFailures        uint64
	authSuccesses        uint64
	authCacheHits        uint64
	authFailuresMissing  uint64
	authFailuresInvalid  uint64
	authFailuresUnknown  uint64
	authFailuresStore    uint64
	subscriptionsCreated uint64
	subscriptionsUpdated uint64
	subscriptionsDeleted uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:      atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:       atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:        atomic.LoadUint64(&m.loginFailures),
		AuthSuccesses:        atomic.LoadUint64(&m.authSuccesses),
		AuthCacheHits:        atomic.LoadUint64(&m.authCacheHits),
		AuthFailuresMissing:  atomic.LoadUint64(&m.authFailuresMissing),
		AuthFailuresInvalid:  atomic.LoadUint64(&m.authFailuresInvalid),
		AuthFailuresUnknown:  atomic.LoadUint64(&m.authFailuresUnknown),
		AuthFailuresStore:    atomic.LoadUint64(&m.authFailuresStore),
		SubscriptionsCreated: atomic.LoadUint64(&m.subscriptionsCreated),
		SubscriptionsUpdated: atomic.LoadUint64(&m.subscriptionsUpdated),
		SubscriptionsDeleted: atomic.LoadUint64(&m.subscriptionsDeleted),
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

// IncAuthSuccess increments the auth success counter.
func (m *InMemoryRecorder) IncAuthSuccess(cacheHit bool) {
	atomic.AddUint64(&m.authSuccesses, 1)
	if cacheHit {
		atomic.AddUint64(&m.authCacheHits, 1)
	}
}

// IncAuthFailure increments the auth failure counter for the reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	switch reason {
	case "missing_token":
		atomic.AddUint64(&m.authFailuresMissing, 1)
	case "unknown_user":
		atomic.AddUint64(&m.authFailuresUnknown, 1)
	case "store_error":
		atomic.AddUint64(&m.authFailuresStore, 1)
	default:
		atomic.AddUint64(&m.authFailuresInvalid, 1)
	}
}

// IncSubscriptionCreated increments the subscription created counter.
func (m *InMemoryRecorder) IncSubscriptionCreated() {
	atomic.AddUint64(&m.subscriptionsCreated, 1)
}

// IncSubscriptionUpdated increments the subscription updated counter.
func (m *InMemoryRecorder) IncSubscriptionUpdated() {
	atomic.AddUint64(&m.subscriptionsUpdated, 1)
}

// IncSubscriptionDeleted increments the subscription deleted counter.
func (m *InMemoryRecorder) IncSubscriptionDeleted() {
	atomic.AddUint64(&m.subscriptionsDeleted, 1)
}
