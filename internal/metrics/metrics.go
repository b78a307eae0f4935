// Package metrics exposes Prometheus instrumentation for the trading agent.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recall_agent"

// Metrics holds the agent's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	SignalsGenerated *prometheus.CounterVec
	SignalsFiltered  prometheus.Counter
	TradesExecuted   *prometheus.CounterVec
	TradesFailed     *prometheus.CounterVec
	StrategyFaults   *prometheus.CounterVec
	CycleDuration    prometheus.Histogram
	Cycles           prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		SignalsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_generated_total",
			Help:      "Signals produced by strategies.",
		}, []string{"strategy", "action"}),
		SignalsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_filtered_total",
			Help:      "Signals dropped by the global confidence floor.",
		}),
		TradesExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_executed_total",
			Help:      "Trade requests accepted by the venue.",
		}, []string{"token", "action"}),
		TradesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_failed_total",
			Help:      "Trade requests rejected by the venue.",
		}, []string{"token", "action"}),
		StrategyFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_faults_total",
			Help:      "Strategy analysis errors and panics.",
		}, []string{"strategy"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a trading cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed trading cycles.",
		}),
	}

	reg.MustRegister(
		m.SignalsGenerated,
		m.SignalsFiltered,
		m.TradesExecuted,
		m.TradesFailed,
		m.StrategyFaults,
		m.CycleDuration,
		m.Cycles,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// SignalGenerated counts one strategy signal.
func (m *Metrics) SignalGenerated(strategy, action string) {
	if m == nil {
		return
	}
	m.SignalsGenerated.WithLabelValues(strategy, action).Inc()
}

// SignalFiltered counts one signal dropped below the confidence floor.
func (m *Metrics) SignalFiltered() {
	if m == nil {
		return
	}
	m.SignalsFiltered.Inc()
}

// TradeExecuted counts one accepted trade.
func (m *Metrics) TradeExecuted(token, action string) {
	if m == nil {
		return
	}
	m.TradesExecuted.WithLabelValues(token, action).Inc()
}

// TradeFailed counts one rejected trade.
func (m *Metrics) TradeFailed(token, action string) {
	if m == nil {
		return
	}
	m.TradesFailed.WithLabelValues(token, action).Inc()
}

// StrategyFault counts one strategy failure.
func (m *Metrics) StrategyFault(strategy string) {
	if m == nil {
		return
	}
	m.StrategyFaults.WithLabelValues(strategy).Inc()
}

// CycleCompleted records the duration of a finished cycle.
func (m *Metrics) CycleCompleted(d time.Duration) {
	if m == nil {
		return
	}
	m.Cycles.Inc()
	m.CycleDuration.Observe(d.Seconds())
}
