package retention

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK      = "ok"
	outcomePartial = "partial"
	outcomeFailed  = "failed"
)

type Metrics struct {
	messagesDeleted prometheus.Counter
	cycles          *prometheus.CounterVec
	skipped         prometheus.Counter
	duration        prometheus.Histogram
}

// NewMetrics builds the retention collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messagesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courier_retention_messages_deleted_total",
			Help: "Messages hard-deleted by retention purges.",
		}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_retention_cycles_total",
			Help: "Completed retention cycles by outcome.",
		}, []string{"outcome"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courier_retention_cycle_skipped_total",
			Help: "Ticks skipped because the previous cycle was still running.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courier_retention_cycle_duration_seconds",
			Help:    "Wall time of a full retention cycle.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.messagesDeleted, m.cycles, m.skipped, m.duration)
	}
	return m
}
