package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obsidianstack/alertbridge/pkg/types"
)

const namespace = "alertbridge"

// Call outcomes recorded by CallResult.
const (
	CallPlaced     = "placed"
	CallFailed     = "failed"
	CallSuppressed = "suppressed"
)

// State store operations recorded by StateError.
const (
	OpLoad = "load"
	OpSave = "save"
)

// Metrics holds the counters for one server instance.
type Metrics struct {
	registry    *prometheus.Registry
	received    *prometheus.CounterVec
	chat        *prometheus.CounterVec
	calls       *prometheus.CounterVec
	stateErrors *prometheus.CounterVec
}

// New creates the counters on a fresh registry together with the standard
// Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_received_total",
			Help:      "Inbound alerts by classified source.",
		}, []string{"source"}),
		chat: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_deliveries_total",
			Help:      "Chat message attempts by result.",
		}, []string{"result"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Voice call decisions: placed, failed or suppressed by cooldown.",
		}, []string{"result"}),
		stateErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_errors_total",
			Help:      "Cooldown state store failures by operation.",
		}, []string{"op"}),
	}
	m.registry.MustRegister(
		m.received, m.chat, m.calls, m.stateErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// AlertReceived counts one normalized inbound alert.
func (m *Metrics) AlertReceived(src types.Source) {
	m.received.WithLabelValues(string(src)).Inc()
}

// ChatResult counts one chat delivery attempt.
func (m *Metrics) ChatResult(err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.chat.WithLabelValues(result).Inc()
}

// CallResult counts one call decision; result is one of the Call* constants.
func (m *Metrics) CallResult(result string) {
	m.calls.WithLabelValues(result).Inc()
}

// StateError counts one failed store operation (OpLoad or OpSave).
func (m *Metrics) StateError(op string) {
	m.stateErrors.WithLabelValues(op).Inc()
}
