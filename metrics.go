package authgate

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricRegisterSuccess counts successful registrations.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterDuplicate counts registrations rejected for an existing username.
	MetricRegisterDuplicate
	// MetricLoginSuccess counts successful credential authentications.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected credential authentications.
	MetricLoginFailure
	// MetricAuthenticateSuccess counts tokens accepted by Authenticate.
	MetricAuthenticateSuccess
	// MetricAuthenticateFailure counts tokens rejected as malformed or badly signed.
	MetricAuthenticateFailure
	// MetricTokenExpired counts tokens rejected for a lapsed exp claim.
	MetricTokenExpired
	// MetricSessionMissing counts valid tokens with no tracked session.
	MetricSessionMissing
	// MetricSessionCreated counts session records written at login.
	MetricSessionCreated
	// MetricSessionSwept counts session records removed by lazy expiry sweeps.
	MetricSessionSwept
	// MetricLogout counts explicit logouts that removed a session record.
	MetricLogout
	// MetricAuthenticateLatency is the Authenticate latency histogram.
	MetricAuthenticateLatency

	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds atomic counters and an optional latency histogram. When
// disabled, all operations are no-ops.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig].
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether metric collection is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter identified by id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only [MetricAuthenticateLatency] carries
// a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricAuthenticateLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of a counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histogram buckets.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthenticateLatency].buckets[i])
		}
		s.Histograms[MetricAuthenticateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
