// Package metrics exposes Prometheus collectors over validation results.
// Each Metrics owns its registry so batch runs can export a textfile for
// the node exporter without touching the global registry.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/valpere/lyricval/internal"
	"github.com/valpere/lyricval/internal/validator"
)

// Metrics contains Prometheus metrics for validation runs.
type Metrics struct {
	registry *prometheus.Registry

	validations *prometheus.CounterVec
	issues      *prometheus.CounterVec
	// Results carrying at least one issue of a kind; every kind is exported
	flagged     *prometheus.CounterVec

	successRate  prometheus.Histogram
	missingLines prometheus.Histogram

	// Input failures that never reached the validator
	caseErrors prometheus.Counter
}

// New creates a Metrics instance registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,

		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricval_validations_total",
				Help: "Total number of validated responses by terminal status",
			},
			[]string{"status"},
		),

		issues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricval_issues_total",
				Help: "Total number of validation issues raised",
			},
			[]string{"kind", "severity"},
		),

		successRate: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lyricval_success_rate",
				Help:    "Fraction of countable lines translated per response",
				Buckets: []float64{0.1, 0.3, 0.5, 0.7, 0.8, 0.9, 0.95, 1},
			},
		),

		missingLines: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lyricval_missing_lines",
				Help:    "Number of untranslated countable lines per response",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),

		caseErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lyricval_case_errors_total",
				Help: "Total number of batch cases whose inputs could not be read",
			},
		),

		flagged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lyricval_flagged_results_total",
				Help: "Total number of results raising at least one issue of a kind",
			},
			[]string{"kind"},
		),
	}

	for _, k := range internal.IssueKinds {
		m.flagged.WithLabelValues(string(k))
	}
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records one validation result.
func (m *Metrics) Observe(res validator.Result) {
	m.validations.WithLabelValues(res.Status.Name()).Inc()
	seen := make(map[internal.IssueKind]bool, len(res.Issues))
	for _, is := range res.Issues {
		m.issues.WithLabelValues(string(is.Kind), string(is.Severity)).Inc()
		if !seen[is.Kind] {
			seen[is.Kind] = true
			m.flagged.WithLabelValues(string(is.Kind)).Inc()
		}
	}
	m.successRate.Observe(res.SuccessRate())
	m.missingLines.Observe(float64(len(res.MissingLines)))
}

// CaseError records a batch case that failed before validation.
func (m *Metrics) CaseError() {
	m.caseErrors.Inc()
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
