// Package observe provides metrics recorders for the import pipeline:
// process-local expvar aggregates and Prometheus collectors for scraped
// deployments.
package observe

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"phetools/pkg/domain"
)

// Recorder receives operation timings and import outcomes.
type Recorder interface {
	// ObserveOperation records one service operation outcome.
	ObserveOperation(ctx context.Context, operation string, success bool, duration time.Duration)
	// ObserveImport records one whole-table import: its acceptance, the
	// defects reported, and the number of records built.
	ObserveImport(accepted bool, errs []domain.ValidationError, records int)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) ObserveOperation(context.Context, string, bool, time.Duration) {}
func (NopRecorder) ObserveImport(bool, []domain.ValidationError, int)             {}

// Combined fans observations out to several recorders.
func Combined(recorders ...Recorder) Recorder { return multiRecorder(recorders) }

type multiRecorder []Recorder

func (m multiRecorder) ObserveOperation(ctx context.Context, op string, success bool, d time.Duration) {
	for _, r := range m {
		r.ObserveOperation(ctx, op, success, d)
	}
}

func (m multiRecorder) ObserveImport(accepted bool, errs []domain.ValidationError, records int) {
	for _, r := range m {
		r.ObserveImport(accepted, errs, records)
	}
}

var expvarSeq uint64

// ExpvarRecorder publishes aggregate timing and result counters via expvar,
// for deployments that prefer process-local metrics without a scraper.
type ExpvarRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
	imports   map[string]int64
	defects   map[domain.ErrorKind]int64
	records   int64
}

// ExpvarSnapshot is a read-only view of the recorded aggregates.
type ExpvarSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	Imports     map[string]int64            `json:"imports_total"`
	Defects     map[domain.ErrorKind]int64  `json:"validation_defects_total"`
	Records     int64                       `json:"records_built_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarRecorder constructs an expvar-backed recorder published under
// name. When name is empty a unique identifier is generated.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		name = fmt.Sprintf("phetools_metrics_%d", atomic.AddUint64(&expvarSeq, 1))
	}
	rec := &ExpvarRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
		imports:   make(map[string]int64),
		defects:   make(map[domain.ErrorKind]int64),
	}
	expvar.Publish(name, expvar.Func(func() any { return rec.Snapshot() }))
	return rec
}

// Name returns the expvar export name.
func (r *ExpvarRecorder) Name() string { return r.name }

// Snapshot returns an immutable copy of the aggregates.
func (r *ExpvarRecorder) Snapshot() ExpvarSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := ExpvarSnapshot{
		DurationsMS: make(map[string]float64, len(r.durations)),
		Results:     make(map[string]map[string]int64, len(r.results)),
		Imports:     make(map[string]int64, len(r.imports)),
		Defects:     make(map[domain.ErrorKind]int64, len(r.defects)),
		Records:     r.records,
		RecordedAt:  time.Now().UTC(),
	}
	for op, total := range r.durations {
		snap.DurationsMS[op] = total
	}
	for op, counts := range r.results {
		cpy := make(map[string]int64, len(counts))
		for status, n := range counts {
			cpy[status] = n
		}
		snap.Results[op] = cpy
	}
	for outcome, n := range r.imports {
		snap.Imports[outcome] = n
	}
	for kind, n := range r.defects {
		snap.Defects[kind] = n
	}
	return snap
}

// ObserveOperation records one service operation outcome.
func (r *ExpvarRecorder) ObserveOperation(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.mu.Lock()
	r.durations[operation] += float64(duration) / float64(time.Millisecond)
	if _, ok := r.results[operation]; !ok {
		r.results[operation] = make(map[string]int64, 2)
	}
	r.results[operation][status]++
	r.mu.Unlock()
}

// ObserveImport records one whole-table import outcome.
func (r *ExpvarRecorder) ObserveImport(accepted bool, errs []domain.ValidationError, records int) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	r.mu.Lock()
	r.imports[outcome]++
	for _, e := range errs {
		r.defects[e.Kind]++
	}
	r.records += int64(records)
	r.mu.Unlock()
}
