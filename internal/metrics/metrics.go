// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLoginSuccess()
	IncLoginFailure()

	// Auth resolver metrics
	IncAuthSuccess(cacheHit bool)
	IncAuthFailure(reason string) // reason: token verify status or "user_not_found"

	// Contact management metrics
	IncContactCreated()
	IncContactUpdated()
	IncContactDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
