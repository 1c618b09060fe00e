package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yigit/transcriptledger/internal/ledger"
)

type busMetrics struct {
	eventsTotal    *prometheus.CounterVec
	droppedTotal   *prometheus.CounterVec
	deliveryErrors *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
}

func newBusMetrics(reg prometheus.Registerer) *busMetrics {
	m := &busMetrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "events_total",
			Help:      "Events published by type",
		}, []string{"type"}),
		droppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "dropped_total",
			Help:      "Events dropped because a subscriber buffer was full",
		}, []string{"type"}),
		deliveryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "delivery_errors_total",
			Help:      "Failed deliveries by type and subscriber kind",
		}, []string{"type", "kind"}),
		subscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "eventbus",
			Name:      "subscribers",
			Help:      "Active subscribers by type and kind",
		}, []string{"type", "kind"}),
	}
	reg.MustRegister(m.eventsTotal, m.droppedTotal, m.deliveryErrors, m.subscribers)
	return m
}

func (m *busMetrics) published(t ledger.EventType) {
	if m != nil {
		m.eventsTotal.WithLabelValues(string(t)).Inc()
	}
}

func (m *busMetrics) dropped(t ledger.EventType) {
	if m != nil {
		m.droppedTotal.WithLabelValues(string(t)).Inc()
	}
}

func (m *busMetrics) deliveryError(t ledger.EventType, kind string) {
	if m != nil {
		m.deliveryErrors.WithLabelValues(string(t), kind).Inc()
	}
}

func (m *busMetrics) subscribed(t ledger.EventType, kind string, delta float64) {
	if m != nil {
		m.subscribers.WithLabelValues(string(t), kind).Add(delta)
	}
}

func (m *busMetrics) reset() {
	if m != nil {
		m.subscribers.Reset()
	}
}
