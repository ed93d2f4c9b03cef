package service

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	messagesAppended *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	fanoutFailures   *prometheus.CounterVec
}

// NewMetrics builds the service collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messagesAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_messages_appended_total",
			Help: "Messages committed to threads, by message type.",
		}, []string{"type"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_support_transitions_total",
			Help: "Committed support case transitions.",
		}, []string{"transition"}),
		fanoutFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_fanout_failures_total",
			Help: "Post-commit side effects that failed and were swallowed.",
		}, []string{"step"}),
	}

	if reg != nil {
		reg.MustRegister(m.messagesAppended, m.transitions, m.fanoutFailures)
	}
	return m
}
