// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLoginSuccess()
	IncLoginFailure()

	// Auth gate metrics
	IncAuthSuccess(cacheHit bool)
	IncAuthFailure(reason string) // reason: "missing_token", "invalid_token", "unknown_user", "store_error"

	// Subscription management metrics
	IncSubscriptionCreated()
	IncSubscriptionUpdated()
	IncSubscriptionDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
