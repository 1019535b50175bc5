// Package metrics provides an abstract interface for recording and
// managing various types of metrics within an application. It is designed
// to offer a unified and simple API for common metric operations, such as
// registering and recording standard and labeled metrics.
//
// The Metrics interface defined in this package serves as the foundation
// for implementing specific metrics systems, such as a Prometheus-based
// metrics system.
//
// Key functionalities include:
//   - Register: To define and set up new metrics.
//   - Record: To record values for the standard metrics.
//   - RegisterWithLabels: To create new metrics with associated labels.
//   - RecordWithLabels: To record values for labeled metrics, providing
//     label values dynamically.
//
// Usage Example:
//
//	metricsSystem := metrics.NewPrometheusMetrics()
//	metricsSystem.Register("txnsim_rows_inserted_total", "Counter", "Rows written to the table")
//	metricsSystem.Record("txnsim_rows_inserted_total", 1)
//	metricsSystem.RegisterWithLabels("txnsim_generated_total", "Counter", "Generated transactions", []string{"currency"})
//	metricsSystem.RecordWithLabels("txnsim_generated_total", 1, "GBP")
package metrics

import "time"

type Metrics interface {
	Register(name, metricType, help string)
	Record(name string, value float64)
	RegisterWithLabels(name, metricType, help string, labels []string)
	RecordWithLabels(name string, value float64, labelValues ...string)
}

// Names of the metrics recorded by the simulator.
const (
	GeneratedTotal        = "txnsim_generated_total"
	RowsInsertedTotal     = "txnsim_rows_inserted_total"
	RowsSkippedTotal      = "txnsim_rows_skipped_total"
	CommitsTotal          = "txnsim_commits_total"
	InsertDurationSeconds = "txnsim_insert_duration_seconds"
	CommitDurationSeconds = "txnsim_commit_duration_seconds"
	LastRunRows           = "txnsim_last_run_rows"
	LastRunTimestamp      = "txnsim_last_run_timestamp_seconds"
)

// Values of the outcome label on InsertDurationSeconds.
const (
	OutcomeInserted = "inserted"
	OutcomeSkipped  = "skipped"
	OutcomeError    = "error"
)

// RegisterSimulatorMetrics registers the simulator's metrics on m.
func RegisterSimulatorMetrics(m Metrics) {
	m.RegisterWithLabels(GeneratedTotal, TypeCounter, "Transactions generated, by currency", []string{"currency"})
	m.Register(RowsInsertedTotal, TypeCounter, "Rows inserted into the transactions table")
	m.Register(RowsSkippedTotal, TypeCounter, "Rows skipped because the transaction id already existed")
	m.Register(CommitsTotal, TypeCounter, "Insert transactions committed")
	m.RegisterWithLabels(InsertDurationSeconds, TypeHistogram, "Time taken by a single insert statement, by outcome", []string{"outcome"})
	m.Register(CommitDurationSeconds, TypeHistogram, "Time from begin to commit of one chunk of rows")
	m.RegisterWithLabels(LastRunRows, TypeGauge, "Rows handled by the last run, by result", []string{"result"})
	m.Register(LastRunTimestamp, TypeGauge, "Unix time at which the last run finished writing")
}

// RecordRun publishes the row counts of a finished run.
func RecordRun(m Metrics, attempted, inserted, skipped int, finished time.Time) {
	m.RecordWithLabels(LastRunRows, float64(attempted), "attempted")
	m.RecordWithLabels(LastRunRows, float64(inserted), "inserted")
	m.RecordWithLabels(LastRunRows, float64(skipped), "skipped")
	m.Record(LastRunTimestamp, float64(finished.Unix()))
}
