package metrics

import "github.com/prometheus/client_golang/prometheus"

// EventMetrics counts owner analytics events.
type EventMetrics struct {
	events *prometheus.CounterVec
}

// NewEventMetrics registers analytics_events_total on reg.
func NewEventMetrics(reg prometheus.Registerer) *EventMetrics {
	if reg == nil {
		return &EventMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_events_total",
		Help: "Owner analytics events by type.",
	}, []string{"event"})
	reg.MustRegister(events)
	return &EventMetrics{events: events}
}

func (e *EventMetrics) Inc(event string) {
	if e == nil || e.events == nil {
		return
	}
	e.events.WithLabelValues(normalizeLabel(event)).Inc()
}
