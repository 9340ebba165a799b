package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Settlement outcomes.
const (
	OutcomeSettled  = "settled"
	OutcomeInvalid  = "invalid"
	OutcomeInternal = "internal_error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Settlement metrics
	Settlements            *prometheus.CounterVec
	SettlementParticipants prometheus.Histogram
	SettlementTransfers    prometheus.Histogram
	SettlementsSaved       prometheus.Counter

	// API metrics
	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec
}

// New creates all metrics on a fresh registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Settlements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dongyar_settlements_total",
				Help: "Total number of settlement computations by outcome",
			},
			[]string{"outcome"},
		),
		SettlementParticipants: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dongyar_settlement_participants",
			Help:    "Number of participants per settlement",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 50},
		}),
		SettlementTransfers: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dongyar_settlement_transfers",
			Help:    "Number of transfers emitted per settlement",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 50},
		}),
		SettlementsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "dongyar_settlements_saved_total",
			Help: "Total number of settlements persisted",
		}),

		RPCRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dongyar_rpc_requests_total",
				Help: "Total number of RPC requests",
			},
			[]string{"procedure", "code"},
		),
		RPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dongyar_rpc_duration_seconds",
				Help:    "RPC request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dongyar_auth_failures_total",
				Help: "Total number of rejected bearer tokens",
			},
			[]string{"reason"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordSettlement records the outcome of one settlement computation.
// participants and transfers are only observed for successful runs.
func (m *Metrics) RecordSettlement(outcome string, participants, transfers int) {
	if m == nil {
		return
	}
	m.Settlements.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSettled {
		m.SettlementParticipants.Observe(float64(participants))
		m.SettlementTransfers.Observe(float64(transfers))
	}
}

// RecordSaved counts a persisted settlement.
func (m *Metrics) RecordSaved() {
	if m == nil {
		return
	}
	m.SettlementsSaved.Inc()
}

// RecordAuthFailure counts a rejected request.
func (m *Metrics) RecordAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailures.WithLabelValues(reason).Inc()
}
