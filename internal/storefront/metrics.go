package storefront

import (
	"github.com/prometheus/client_golang/prometheus"
)

type domainMetrics struct {
	cartOps       *prometheus.CounterVec
	catalogErrors *prometheus.CounterVec
	chatReplies   *prometheus.CounterVec
}

// newDomainMetrics registers on reg when it is non-nil; the counters work
// unregistered too.
func newDomainMetrics(reg prometheus.Registerer) *domainMetrics {
	m := &domainMetrics{
		cartOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_operations_total",
				Help: "Cart mutations by operation and result",
			},
			[]string{"op", "result"},
		),
		catalogErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_fetch_errors_total",
				Help: "Failed catalog reads",
			},
			[]string{"call"},
		),
		chatReplies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_replies_total",
				Help: "Chatbot replies by topic",
			},
			[]string{"topic"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.cartOps, m.catalogErrors, m.chatReplies)
	}
	return m
}

func (m *domainMetrics) cartOp(op, result string) {
	m.cartOps.WithLabelValues(op, result).Inc()
}

func (m *domainMetrics) catalogError(call string) {
	m.catalogErrors.WithLabelValues(call).Inc()
}

func (m *domainMetrics) chatReply(topic string) {
	if topic == "" {
		topic = "default"
	}
	m.chatReplies.WithLabelValues(topic).Inc()
}
