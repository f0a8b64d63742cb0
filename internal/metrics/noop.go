package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncIngestAccepted is a no-op.
func (n *NoopRecorder) IncIngestAccepted() {}

// IncIngestRejected is a no-op.
func (n *NoopRecorder) IncIngestRejected(reason string) {}

// ObserveIngestBatchSize is a no-op.
func (n *NoopRecorder) ObserveIngestBatchSize(size int) {}

// ObserveIngestDuration is a no-op.
func (n *NoopRecorder) ObserveIngestDuration(duration time.Duration) {}

// IncKeyLookupCacheHit is a no-op.
func (n *NoopRecorder) IncKeyLookupCacheHit() {}

// IncKeyLookupCacheMiss is a no-op.
func (n *NoopRecorder) IncKeyLookupCacheMiss() {}

// IncForwardResult is a no-op.
func (n *NoopRecorder) IncForwardResult(status string) {}
