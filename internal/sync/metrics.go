package sync

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors updated by the syncer.
type Metrics struct {
	cycles   *prometheus.CounterVec
	merged   prometheus.Counter
	duration prometheus.Histogram
}

// NewMetrics creates the sync collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quotesync",
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Sync cycles by outcome.",
		}, []string{"outcome"}),
		merged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quotesync",
			Name:      "quotes_merged_total",
			Help:      "Server quotes appended to the local collection.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quotesync",
			Subsystem: "sync",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of sync cycles that were not coalesced.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.cycles, m.merged, m.duration)
	}
	return m
}

func (m *Metrics) observe(r CycleResult) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(string(r.Outcome)).Inc()
	if r.Outcome == OutcomeCoalesced {
		return
	}
	m.merged.Add(float64(r.Added))
	m.duration.Observe(r.Duration.Seconds())
}
