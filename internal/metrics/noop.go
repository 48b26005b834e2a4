package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncAuthSuccess is a no-op.
func (n *NoopRecorder) IncAuthSuccess(cacheHit bool) {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure(reason string) {}

// IncContactCreated is a no-op.
func (n *NoopRecorder) IncContactCreated() {}

// IncContactUpdated is a no-op.
func (n *NoopRecorder) IncContactUpdated() {}

// IncContactDeleted is a no-op.
func (n *NoopRecorder) IncContactDeleted() {}
