package accountant

import "sync/atomic"

// MetricID identifies a counter in the in-process metrics set.
type MetricID int

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected logins (unknown user, bad
	// password, inactive account).
	MetricLoginFailure
	// MetricSessionCreated counts sessions persisted by Login.
	MetricSessionCreated
	// MetricSessionInvalidated counts sessions removed by Logout or
	// InvalidateAllForUser.
	MetricSessionInvalidated
	// MetricGateForwarded counts requests the gate let through.
	MetricGateForwarded
	// MetricGateRejected counts requests the gate answered with 401.
	MetricGateRejected

	metricIDCount
)

// Metrics holds atomic counters for the authentication subsystem. A nil
// or disabled Metrics is safe to use; all operations become no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics creates a [Metrics] instance. When enabled is false all
// operations are no-ops.
func NewMetrics(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id < 0 || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the current value of the counter for id.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id < 0 || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	LoginSuccess       uint64
	LoginFailure       uint64
	SessionCreated     uint64
	SessionInvalidated uint64
	GateForwarded      uint64
	GateRejected       uint64
}

// Snapshot returns a deep copy of the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		LoginSuccess:       m.Get(MetricLoginSuccess),
		LoginFailure:       m.Get(MetricLoginFailure),
		SessionCreated:     m.Get(MetricSessionCreated),
		SessionInvalidated: m.Get(MetricSessionInvalidated),
		GateForwarded:      m.Get(MetricGateForwarded),
		GateRejected:       m.Get(MetricGateRejected),
	}
}
