// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Ingestion pipeline metrics
	IncIngestAccepted()
	IncIngestRejected(reason string) // reason: "user_not_found", "invalid_payload", "store_failed"
	ObserveIngestBatchSize(size int)
	ObserveIngestDuration(duration time.Duration)

	// Key resolution metrics
	IncKeyLookupCacheHit()
	IncKeyLookupCacheMiss()

	// Outbound forward metrics
	IncForwardResult(status string) // status: "success", "failed", "disabled"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
