// Package metrics records pipeline run figures in a Prometheus registry and
// writes them in the textfile format picked up by node_exporter.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run holds the collectors of one pipeline run.
type Run struct {
	registry    *prometheus.Registry
	readings    prometheus.Gauge
	rows        *prometheus.GaugeVec
	invalid     prometheus.Gauge
	unmapped    prometheus.Gauge
	duration    *prometheus.GaugeVec
	lastRun     prometheus.Gauge
	importRows  *prometheus.CounterVec
	importFiles *prometheus.CounterVec
}

// NewRun registers the collectors for a station in a private registry.
func NewRun(station string) *Run {
	labels := prometheus.Labels{"station": station}
	r := &Run{
		registry: prometheus.NewRegistry(),
		readings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "aqi_readings_loaded",
			Help:        "Readings fed into the pipeline.",
			ConstLabels: labels,
		}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "aqi_table_rows",
			Help:        "Rows produced per derived table.",
			ConstLabels: labels,
		}, []string{"table"}),
		invalid: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "aqi_hours_without_index",
			Help:        "Hourly rows where no pollutant was inside its breakpoint table.",
			ConstLabels: labels,
		}),
		unmapped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "aqi_unmapped_wind_rows",
			Help:        "Hourly rows whose wind label is not a compass code.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "aqi_stage_duration_seconds",
			Help:        "Wall time spent per pipeline stage.",
			ConstLabels: labels,
		}, []string{"stage"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "aqi_last_run_timestamp_seconds",
			Help:        "Unix time the pipeline last completed.",
			ConstLabels: labels,
		}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "aqi_import_readings_total",
			Help:        "Readings parsed per file outcome.",
			ConstLabels: labels,
		}, []string{"result"}),
		importFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "aqi_import_files_total",
			Help:        "Reading files processed per outcome.",
			ConstLabels: labels,
		}, []string{"result"}),
	}
	r.registry.MustRegister(r.readings, r.rows, r.invalid, r.unmapped, r.duration, r.lastRun, r.importRows, r.importFiles)
	return r
}

// Registry exposes the underlying registry.
func (r *Run) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveReadings records how many readings were loaded.
func (r *Run) ObserveReadings(n int) {
	r.readings.Set(float64(n))
}

// ObserveTable records the row count of a derived table.
func (r *Run) ObserveTable(table string, rows int) {
	r.rows.WithLabelValues(table).Set(float64(rows))
}

// ObserveStage records the duration of a pipeline stage.
func (r *Run) ObserveStage(stage string, elapsed time.Duration) {
	r.duration.WithLabelValues(stage).Set(elapsed.Seconds())
}

// ObserveQuality records rows without an index and rows without a bucket.
func (r *Run) ObserveQuality(invalidHours, unmappedWind int) {
	r.invalid.Set(float64(invalidHours))
	r.unmapped.Set(float64(unmappedWind))
}

// ObserveImport counts one processed file and its readings under "ok" or
// "failed".
func (r *Run) ObserveImport(result string, readings int) {
	r.importFiles.WithLabelValues(result).Inc()
	r.importRows.WithLabelValues(result).Add(float64(readings))
}

// Complete stamps the completion time.
func (r *Run) Complete(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry to path. An empty path is a no-op.
func (r *Run) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
