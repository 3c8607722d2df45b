// Package metrics exports scan results to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns its own registry so tests and repeated CLI runs never
// collide on the default one.
type Recorder struct {
	reg *prometheus.Registry

	cycles   prometheus.Counter
	outcomes *prometheus.CounterVec
	score    *prometheus.GaugeVec
	level    *prometheus.GaugeVec
	discount *prometheus.GaugeVec
	latency  *prometheus.HistogramVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "sigmaguard_cycles_total",
			Help: "Completed scan cycles",
		}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sigmaguard_tickers_total",
			Help: "Tickers processed, by outcome (scored, no_data, error)",
		}, []string{"outcome"}),
		score: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sigmaguard_risk_score",
			Help: "Final risk score of the latest cycle",
		}, []string{"ticker"}),
		level: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sigmaguard_risk_level",
			Help: "Risk level (1-9) of the latest cycle",
		}, []string{"ticker"}),
		discount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sigmaguard_gate_discount",
			Help: "Discount applied by the trend gate",
		}, []string{"ticker"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sigmaguard_operation_duration_seconds",
			Help:    "Duration of operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (r *Recorder) RecordCycle() { r.cycles.Inc() }

// RecordOutcome counts one ticker result.
func (r *Recorder) RecordOutcome(outcome string) {
	r.outcomes.WithLabelValues(outcome).Inc()
}

// RecordScore publishes a ticker's latest score, level and discount.
func (r *Recorder) RecordScore(ticker string, score float64, level int, discount float64) {
	r.score.WithLabelValues(ticker).Set(score)
	r.level.WithLabelValues(ticker).Set(float64(level))
	r.discount.WithLabelValues(ticker).Set(discount)
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
