package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's Prometheus metrics.
type Metrics struct {
	AccountsCreated       prometheus.Counter
	TransactionsProcessed *prometheus.CounterVec
	TransactionAmount     prometheus.Histogram
}

// New creates and registers the ledger metrics on the given registerer.
// Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		TransactionsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_transactions_total",
				Help: "Total number of transactions by type and outcome",
			},
			[]string{"type", "status"},
		),
		TransactionAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankledger_transaction_amount",
			Help:    "Transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
	}
}

// RecordTransaction counts a processed transaction by outcome.
func (m *Metrics) RecordTransaction(txType string, ok bool) {
	status := "ok"
	if !ok {
		status = "rejected"
	}
	m.TransactionsProcessed.WithLabelValues(txType, status).Inc()
}
