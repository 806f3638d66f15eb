package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for the appointment workflow. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	pushDispatch  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "care",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Appointment transition requests by action and result",
		}, []string{"action", "result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "care",
			Subsystem: "notifications",
			Name:      "inserts_total",
			Help:      "Notification inserts by source (inline or relay) and result",
		}, []string{"source", "result"}),
		pushDispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "care",
			Subsystem: "push",
			Name:      "dispatch_total",
			Help:      "Push dispatches by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitions, m.notifications, m.pushDispatch)
	return m
}

func (m *Metrics) ObserveTransition(action, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, result).Inc()
}

func (m *Metrics) ObserveNotification(source, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(source, result).Inc()
}

func (m *Metrics) ObservePush(result string) {
	if m == nil {
		return
	}
	m.pushDispatch.WithLabelValues(result).Inc()
}
