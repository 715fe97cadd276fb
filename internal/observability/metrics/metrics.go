package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the SMS booking flow.
type BookingMetrics struct {
	inboundTotal   *prometheus.CounterVec
	outcomeTotal   *prometheus.CounterVec
	parserTotal    *prometheus.CounterVec
	outboundTotal  *prometheus.CounterVec
	writeRetries   prometheus.Counter
	webhookLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue",
			Subsystem: "booking",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound SMS gateway webhooks",
		}, []string{"event_type", "status"}),
		outcomeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue",
			Subsystem: "booking",
			Name:      "outcome_total",
			Help:      "Booking requests by outcome and deciding layer",
		}, []string{"kind", "layer"}),
		parserTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue",
			Subsystem: "booking",
			Name:      "parser_strategy_total",
			Help:      "Intent parses by the strategy that succeeded",
		}, []string{"strategy"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue",
			Subsystem: "booking",
			Name:      "outbound_total",
			Help:      "Total outbound SMS sends",
		}, []string{"status"}),
		writeRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "venue",
			Subsystem: "booking",
			Name:      "table_race_retries_total",
			Help:      "Reservation writes retried on another table after losing a race",
		}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "venue",
			Subsystem: "booking",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of SMS webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outcomeTotal, m.parserTotal, m.outboundTotal, m.writeRetries, m.webhookLatency)
	return m
}

func (m *BookingMetrics) ObserveInbound(eventType, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(eventType, status).Inc()
}

func (m *BookingMetrics) ObserveOutcome(kind, layer string) {
	if m == nil {
		return
	}
	m.outcomeTotal.WithLabelValues(kind, layer).Inc()
}

func (m *BookingMetrics) ObserveParser(strategy string) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "none"
	}
	m.parserTotal.WithLabelValues(strategy).Inc()
}

func (m *BookingMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveWriteRetry() {
	if m == nil {
		return
	}
	m.writeRetries.Inc()
}

func (m *BookingMetrics) ObserveWebhookLatency(eventType string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(eventType).Observe(seconds)
}
