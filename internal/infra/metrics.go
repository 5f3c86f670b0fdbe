package infra

import (
	"sync/atomic"
	"time"
)

// Metrics counts fetches and computations.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	fetchesTotal  atomic.Uint64
	fetchFailures atomic.Uint64
	parseFailures atomic.Uint64
	retriesTotal  atomic.Uint64
	computations  atomic.Uint64
	computeErrors atomic.Uint64

	// Fetch latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64
}

// GlobalMetrics is the process-wide metrics instance.
var GlobalMetrics = &Metrics{}

// RecordFetch records a completed fetch attempt with its latency.
func (m *Metrics) RecordFetch(latency time.Duration) {
	m.fetchesTotal.Add(1)
	m.latencySumNs.Add(latency.Nanoseconds())
	m.latencyCount.Add(1)
}

// RecordFetchFailure records a request that failed or returned a non-success status.
func (m *Metrics) RecordFetchFailure() {
	m.fetchFailures.Add(1)
}

// RecordParseFailure records a response body that could not be parsed.
func (m *Metrics) RecordParseFailure() {
	m.parseFailures.Add(1)
}

// RecordRetry records a retried fetch.
func (m *Metrics) RecordRetry() {
	m.retriesTotal.Add(1)
}

// RecordComputation records a finished geohash computation.
func (m *Metrics) RecordComputation(err error) {
	if err != nil {
		m.computeErrors.Add(1)
		return
	}
	m.computations.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	FetchesTotal  uint64
	FetchFailures uint64
	ParseFailures uint64
	RetriesTotal  uint64
	Computations  uint64
	ComputeErrors uint64
	AvgLatencyNs  int64
	Timestamp     time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		FetchesTotal:  m.fetchesTotal.Load(),
		FetchFailures: m.fetchFailures.Load(),
		ParseFailures: m.parseFailures.Load(),
		RetriesTotal:  m.retriesTotal.Load(),
		Computations:  m.computations.Load(),
		ComputeErrors: m.computeErrors.Load(),
		AvgLatencyNs:  avgLatency,
		Timestamp:     time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.fetchesTotal.Store(0)
	m.fetchFailures.Store(0)
	m.parseFailures.Store(0)
	m.retriesTotal.Store(0)
	m.computations.Store(0)
	m.computeErrors.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
}
