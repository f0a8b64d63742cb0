package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	IngestAccepted        uint64
	IngestRejected        map[string]uint64
	IngestBatchCount      uint64
	IngestBatchTotal      uint64
	IngestDurationCount   uint64
	IngestDurationTotalNs int64
	KeyLookupCacheHits    uint64
	KeyLookupCacheMisses  uint64
	ForwardResults        map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	ingestAccepted        uint64
	ingestBatchCount      uint64
	ingestBatchTotal      uint64
	ingestDurationCount   uint64
	ingestDurationTotalNs int64
	keyLookupCacheHits    uint64
	keyLookupCacheMisses  uint64

	mu             sync.Mutex
	ingestRejected map[string]uint64
	forwardResults map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		ingestRejected: make(map[string]uint64),
		forwardResults: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	rejected := make(map[string]uint64, len(m.ingestRejected))
	for k, v := range m.ingestRejected {
		rejected[k] = v
	}
	forwards := make(map[string]uint64, len(m.forwardResults))
	for k, v := range m.forwardResults {
		forwards[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		IngestAccepted:        atomic.LoadUint64(&m.ingestAccepted),
		IngestRejected:        rejected,
		IngestBatchCount:      atomic.LoadUint64(&m.ingestBatchCount),
		IngestBatchTotal:      atomic.LoadUint64(&m.ingestBatchTotal),
		IngestDurationCount:   atomic.LoadUint64(&m.ingestDurationCount),
		IngestDurationTotalNs: atomic.LoadInt64(&m.ingestDurationTotalNs),
		KeyLookupCacheHits:    atomic.LoadUint64(&m.keyLookupCacheHits),
		KeyLookupCacheMisses:  atomic.LoadUint64(&m.keyLookupCacheMisses),
		ForwardResults:        forwards,
	}
}

// IncIngestAccepted increments the accepted delivery counter.
func (m *InMemoryRecorder) IncIngestAccepted() {
	atomic.AddUint64(&m.ingestAccepted, 1)
}

// IncIngestRejected increments the rejected delivery counter for reason.
func (m *InMemoryRecorder) IncIngestRejected(reason string) {
	m.mu.Lock()
	m.ingestRejected[reason]++
	m.mu.Unlock()
}

// ObserveIngestBatchSize records the size of one upserted batch.
func (m *InMemoryRecorder) ObserveIngestBatchSize(size int) {
	atomic.AddUint64(&m.ingestBatchCount, 1)
	atomic.AddUint64(&m.ingestBatchTotal, uint64(size))
}

// ObserveIngestDuration records end-to-end ingestion duration.
func (m *InMemoryRecorder) ObserveIngestDuration(duration time.Duration) {
	atomic.AddUint64(&m.ingestDurationCount, 1)
	atomic.AddInt64(&m.ingestDurationTotalNs, duration.Nanoseconds())
}

// IncKeyLookupCacheHit increments the key cache hit counter.
func (m *InMemoryRecorder) IncKeyLookupCacheHit() {
	atomic.AddUint64(&m.keyLookupCacheHits, 1)
}

// IncKeyLookupCacheMiss increments the key cache miss counter.
func (m *InMemoryRecorder) IncKeyLookupCacheMiss() {
	atomic.AddUint64(&m.keyLookupCacheMisses, 1)
}

// IncForwardResult increments the forward outcome counter for status.
func (m *InMemoryRecorder) IncForwardResult(status string) {
	m.mu.Lock()
	m.forwardResults[status]++
	m.mu.Unlock()
}
