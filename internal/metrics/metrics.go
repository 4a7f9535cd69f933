// Package metrics exposes Prometheus instruments for the stores.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomeNoop   = "noop"
)

// Metrics groups the collectors recorded by the services. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Mutations      *prometheus.CounterVec
	Rollbacks      *prometheus.CounterVec
	PersistErrors  *prometheus.CounterVec
	Transactions   prometheus.Gauge
	SummaryLookups *prometheus.CounterVec
	SummaryCache   prometheus.Gauge
}

// New creates the collectors and registers them with reg when it is non-nil
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "budget_trackr",
			Name:      "mutations_total",
			Help:      "Store mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		Rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "budget_trackr",
			Name:      "rollbacks_total",
			Help:      "Optimistic updates reverted after a failed write.",
		}, []string{"operation"}),
		PersistErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "budget_trackr",
			Name:      "persist_errors_total",
			Help:      "Failed blob store writes by key.",
		}, []string{"key"}),
		Transactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "budget_trackr",
			Name:      "transactions",
			Help:      "Records in the committed transaction list.",
		}),
		SummaryLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "budget_trackr",
			Name:      "summary_lookups_total",
			Help:      "Summary cache lookups by result.",
		}, []string{"result"}),
		SummaryCache: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "budget_trackr",
			Name:      "summary_cache_entries",
			Help:      "Period summaries currently memoized.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Mutations, m.Rollbacks, m.PersistErrors, m.Transactions, m.SummaryLookups, m.SummaryCache)
	}
	return m
}

// Mutation counts one store mutation
func (m *Metrics) Mutation(op, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op, outcome).Inc()
}

// Rollback counts one reverted optimistic update
func (m *Metrics) Rollback(op string) {
	if m == nil {
		return
	}
	m.Rollbacks.WithLabelValues(op).Inc()
}

// PersistError counts one failed write of key
func (m *Metrics) PersistError(key string) {
	if m == nil {
		return
	}
	m.PersistErrors.WithLabelValues(key).Inc()
}

// SetTransactions records the size of the committed list
func (m *Metrics) SetTransactions(n int) {
	if m == nil {
		return
	}
	m.Transactions.Set(float64(n))
}

// SummaryLookup counts a summary cache hit or miss
func (m *Metrics) SummaryLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SummaryLookups.WithLabelValues(result).Inc()
}

// SetSummaryCache records how many summaries are memoized
func (m *Metrics) SetSummaryCache(n int) {
	if m == nil {
		return
	}
	m.SummaryCache.Set(float64(n))
}
