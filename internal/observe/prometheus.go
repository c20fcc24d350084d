package observe

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"phetools/pkg/domain"
)

// PrometheusRecorder exposes the import pipeline through Prometheus
// collectors registered on the given registerer.
type PrometheusRecorder struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	imports    *prometheus.CounterVec
	defects    *prometheus.CounterVec
	records    prometheus.Counter
}

// NewPrometheusRecorder constructs and registers the collectors. Passing
// prometheus.DefaultRegisterer wires them into the default scrape handler.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phetools_operations_total",
			Help: "Service operations by name and status.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "phetools_operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phetools_imports_total",
			Help: "Whole-table imports by outcome.",
		}, []string{"outcome"}),
		defects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phetools_validation_defects_total",
			Help: "Validation defects by kind.",
		}, []string{"kind"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "phetools_records_built_total",
			Help: "Records built from accepted rows.",
		}),
	}
	for _, c := range []prometheus.Collector{r.operations, r.durations, r.imports, r.defects, r.records} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveOperation records one service operation outcome.
func (r *PrometheusRecorder) ObserveOperation(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveImport records one whole-table import outcome.
func (r *PrometheusRecorder) ObserveImport(accepted bool, errs []domain.ValidationError, records int) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	r.imports.WithLabelValues(outcome).Inc()
	for _, e := range errs {
		r.defects.WithLabelValues(string(e.Kind)).Inc()
	}
	r.records.Add(float64(records))
}
