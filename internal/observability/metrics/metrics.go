package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the /chat flow.
type ChatMetrics struct {
	outcomes       *prometheus.CounterVec
	intents        *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	replyAudit     *prometheus.CounterVec
	orderIntents   prometheus.Counter
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "commerce_chat",
			Subsystem: "chat",
			Name:      "responses_total",
			Help:      "Chat responses by outcome (ok, degraded) and degrade reason",
		}, []string{"outcome", "reason"}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "commerce_chat",
			Subsystem: "chat",
			Name:      "intents_total",
			Help:      "Parsed intents; labels outside the persona vocabulary collapse to 'other'",
		}, []string{"intent"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "commerce_chat",
			Subsystem: "chat",
			Name:      "backend_latency_seconds",
			Help:      "Latency of language backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		replyAudit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "commerce_chat",
			Subsystem: "chat",
			Name:      "reply_audit_hits_total",
			Help:      "Replies that matched a leak signal",
		}, []string{"reason"}),
		orderIntents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "commerce_chat",
			Subsystem: "chat",
			Name:      "order_intents_total",
			Help:      "Messages classified as order placement",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.outcomes, m.intents, m.backendLatency, m.replyAudit, m.orderIntents)
	return m
}

func (m *ChatMetrics) ObserveOutcome(outcome, reason string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome, reason).Inc()
}

func (m *ChatMetrics) ObserveIntent(intent string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(intent).Inc()
}

func (m *ChatMetrics) ObserveBackendLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.backendLatency.WithLabelValues(status).Observe(seconds)
}

func (m *ChatMetrics) ObserveReplyAudit(reason string) {
	if m == nil {
		return
	}
	m.replyAudit.WithLabelValues(reason).Inc()
}

func (m *ChatMetrics) ObserveOrderIntent() {
	if m == nil {
		return
	}
	m.orderIntents.Inc()
}

// ShippingMetrics exposes counters/histograms for carrier quote calls.
type ShippingMetrics struct {
	quotes       *prometheus.CounterVec
	quoteLatency prometheus.Histogram
}

func NewShippingMetrics(reg prometheus.Registerer) *ShippingMetrics {
	m := &ShippingMetrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "commerce_chat",
			Subsystem: "shipping",
			Name:      "quotes_total",
			Help:      "Rate quote requests by result (ok, invalid, unconfigured, carrier_error, transport_error)",
		}, []string{"result"}),
		quoteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "commerce_chat",
			Subsystem: "shipping",
			Name:      "carrier_latency_seconds",
			Help:      "Latency of carrier quote calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.quotes, m.quoteLatency)
	return m
}

func (m *ShippingMetrics) ObserveQuote(result string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(result).Inc()
}

func (m *ShippingMetrics) ObserveCarrierLatency(seconds float64) {
	if m == nil {
		return
	}
	m.quoteLatency.Observe(seconds)
}
