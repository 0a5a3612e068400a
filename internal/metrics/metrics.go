// Package metrics holds the Prometheus counters of an import run. They live
// on a private registry and are written in the node_exporter
// textfile-collector format once the run is over.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "splitwiser_import"

// ImportMetrics counts what an import run did.
type ImportMetrics struct {
	registry *prometheus.Registry

	RowsRead           prometheus.Counter
	RowsSkipped        prometheus.Counter
	ExpensesCreated    prometheus.Counter
	AllocationsCreated prometheus.Counter
	SplitModes         *prometheus.CounterVec
	Failures           *prometheus.CounterVec
	LastSuccess        prometheus.Gauge
}

// NewImportMetrics creates the counters on a fresh registry.
func NewImportMetrics() *ImportMetrics {
	m := &ImportMetrics{
		registry: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Expense rows read from the ledger export.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Rows dropped because no participant paid.",
		}),
		ExpensesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_created_total",
			Help:      "Expenses built from the export.",
		}),
		AllocationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_created_total",
			Help:      "Expense allocations built from the export.",
		}),
		SplitModes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_by_split_mode_total",
			Help:      "Expenses built, by split mode.",
		}, []string{"split_mode"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Aborted import runs, by stage.",
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful import.",
		}),
	}

	m.registry.MustRegister(
		m.RowsRead,
		m.RowsSkipped,
		m.ExpensesCreated,
		m.AllocationsCreated,
		m.SplitModes,
		m.Failures,
		m.LastSuccess,
	)
	return m
}

// Registry returns the registry the counters are registered on.
func (m *ImportMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path for the textfile collector.
func (m *ImportMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
