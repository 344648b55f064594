package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesReceived prometheus.Counter
	signalsMatched   prometheus.Counter
	forwardsTotal    *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	restartsTotal    prometheus.Counter
	connected        prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesReceived: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "signalrelay_messages_received_total",
				Help: "Total messages received from the source chat",
			},
		),
		signalsMatched: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "signalrelay_signals_matched_total",
				Help: "Total messages that matched a signal pattern",
			},
		),
		forwardsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalrelay_forwards_total",
				Help: "Total forward attempts to the target chat",
			},
			[]string{"result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalrelay_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		restartsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "signalrelay_restarts_total",
				Help: "Total supervisor restart cycles",
			},
		),
		connected: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "signalrelay_transport_connected",
				Help: "Whether the transport receive loop is active (1/0)",
			},
		),
	}
}

// RecordMessageReceived records an inbound message from the source chat.
func (r *Recorder) RecordMessageReceived() { r.messagesReceived.Inc() }

// RecordSignalMatched records a pattern match.
func (r *Recorder) RecordSignalMatched() { r.signalsMatched.Inc() }

// RecordForward records a forward attempt by result ("ok" or "error").
func (r *Recorder) RecordForward(result string) { r.forwardsTotal.WithLabelValues(result).Inc() }

// RecordError records an error occurrence by kind.
func (r *Recorder) RecordError(kind string) { r.errorsTotal.WithLabelValues(kind).Inc() }

// RecordRestart records one supervisor restart cycle.
func (r *Recorder) RecordRestart() { r.restartsTotal.Inc() }

// RecordConnected records the transport connection state.
func (r *Recorder) RecordConnected(up bool) {
	if up {
		r.connected.Set(1)
		return
	}
	r.connected.Set(0)
}
