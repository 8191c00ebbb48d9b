// Package metrics exposes Prometheus instrumentation for the core
// operations of the flight surety state machine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "flightsurety"
	subsystem = "node"
)

var (
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "transactions_total",
		Help:      "Delivered transactions by type.",
	}, []string{"type"})

	TransactionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "transaction_errors_total",
		Help:      "Rejected transactions by type.",
	}, []string{"type"})

	RegisteredAirlines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "registered_airlines",
		Help:      "Airlines currently registered.",
	})

	PoliciesSold = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "policies_sold_total",
		Help:      "Insurance policies sold.",
	})

	OracleReports = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "oracle_reports_total",
		Help:      "Oracle requests settled by consensus.",
	})

	PayoutUnits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "payout_units_total",
		Help:      "Compensation credited, in smallest currency units.",
	})
)
