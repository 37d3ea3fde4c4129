// Package metrics holds the Prometheus collectors for the prediction
// service. Recording helpers tolerate a nil *Metrics so components can run
// uninstrumented in tests and one-shot tools.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics registers and exposes every collector the service records into.
type Metrics struct {
	RunsStarted prometheus.Counter
	RunDuration prometheus.Histogram
	Verdicts    *prometheus.CounterVec // labels: direction, degraded

	MarketFallbacks   prometheus.Counter
	ReasoningOutcomes *prometheus.CounterVec // labels: model, outcome
	CreditsConsumed   prometheus.Counter
	LiveSessions      prometheus.Gauge
}

// New creates and registers the service collectors. A nil registerer uses
// the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptoomind",
			Name:      "analysis_runs_total",
			Help:      "Analysis runs started",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cryptoomind",
			Name:      "analysis_run_duration_seconds",
			Help:      "Wall time of one analysis run from request to verdict",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90, 120},
		}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cryptoomind",
			Name:      "verdicts_total",
			Help:      "Final verdicts by direction and degraded flag",
		}, []string{"direction", "degraded"}),

		MarketFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptoomind",
			Name:      "market_fallbacks_total",
			Help:      "Runs that degraded to a synthetic candle series",
		}),
		ReasoningOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cryptoomind",
			Name:      "reasoning_outcomes_total",
			Help:      "Reasoning cascade outcomes by the model that served them",
		}, []string{"model", "outcome"}),
		CreditsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptoomind",
			Name:      "credits_consumed_total",
			Help:      "Credits deducted for directional verdicts",
		}),
		LiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cryptoomind",
			Name:      "live_sessions_active",
			Help:      "Currently connected live analysis sessions",
		}),
	}

	reg.MustRegister(
		m.RunsStarted,
		m.RunDuration,
		m.Verdicts,
		m.MarketFallbacks,
		m.ReasoningOutcomes,
		m.CreditsConsumed,
		m.LiveSessions,
	)

	return m
}

// RunStarted counts one accepted analysis request.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.RunsStarted.Inc()
}

// RunFinished records the verdict and the run duration in seconds.
func (m *Metrics) RunFinished(direction string, degraded bool, seconds float64) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(seconds)
	m.Verdicts.WithLabelValues(direction, strconv.FormatBool(degraded)).Inc()
}

// MarketFallback counts a run that had to synthesize its candle series.
func (m *Metrics) MarketFallback() {
	if m == nil {
		return
	}
	m.MarketFallbacks.Inc()
}

// ReasoningOutcome records whether the reasoning cascade produced a
// decision and which model served it. An empty model means no model did.
func (m *Metrics) ReasoningOutcome(model string, ok bool) {
	if m == nil {
		return
	}
	if model == "" {
		model = "none"
	}
	outcome := "exhausted"
	if ok {
		outcome = "ok"
	}
	m.ReasoningOutcomes.WithLabelValues(model, outcome).Inc()
}

// CreditConsumed counts one deducted credit.
func (m *Metrics) CreditConsumed() {
	if m == nil {
		return
	}
	m.CreditsConsumed.Inc()
}

// SessionOpened and SessionClosed track the live session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.LiveSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.LiveSessions.Dec()
}
