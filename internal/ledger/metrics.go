package ledger

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	operations  *prometheus.CounterVec
	journalHead prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "operations_total",
			Help:      "Ledger write operations by kind and result",
		}, []string{"operation", "result"}),
		journalHead: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledger",
			Name:      "journal_head_seq",
			Help:      "Sequence number of the last committed journal entry",
		}),
	}
	reg.MustRegister(m.operations, m.journalHead)
	return m
}

func (m *metrics) observe(op EventType, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.operations.WithLabelValues(string(op), result).Inc()
}

func (m *metrics) setHead(seq uint64) {
	if m == nil {
		return
	}
	m.journalHead.Set(float64(seq))
}
