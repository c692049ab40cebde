// Package metrics records what a lint run did as Prometheus metrics.
//
// Every run gets its own registry, so the exported values describe that run
// only. The registry is written in the text exposition format with
// WriteTextfile, ready for the node exporter textfile collector.
//
// Metrics:
//   - rulelint_rules_loaded: Rules in the registry
//   - rulelint_load_errors_total: Load phase errors by code
//   - rulelint_targets_total: Targets evaluated
//   - rulelint_matches_total: Rule and target pairs that matched
//   - rulelint_findings_total: Findings by severity
//   - rulelint_match_errors_total: Targets that could not be evaluated
//   - rulelint_run_duration_seconds: Duration of the run
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/report"
	"github.com/arthur-debert/rulelint/pkg/types"
)

const namespace = "rulelint"

// Recorder holds the metrics of one run
type Recorder struct {
	registry *prometheus.Registry

	rulesLoaded prometheus.Gauge
	loadErrors  *prometheus.CounterVec
	targets     prometheus.Counter
	matches     prometheus.Counter
	findings    *prometheus.CounterVec
	matchErrors prometheus.Counter
	duration    prometheus.Histogram
}

// New creates a recorder with a fresh registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		rulesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rules_loaded",
			Help:      "Number of rules in the registry",
		}),
		loadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Load phase errors by error code",
		}, []string{"code"}),
		targets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "targets_total",
			Help:      "Number of targets evaluated",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Number of rule and target pairs that matched",
		}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Findings by severity",
		}, []string{"severity"}),
		matchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_errors_total",
			Help:      "Targets that could not be evaluated",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a lint run in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms to 16s
		}),
	}

	// Both severities are always exported, even at zero
	for _, s := range []types.Severity{types.SeverityError, types.SeverityInfo} {
		r.findings.WithLabelValues(string(s))
	}

	r.registry.MustRegister(
		r.rulesLoaded,
		r.loadErrors,
		r.targets,
		r.matches,
		r.findings,
		r.matchErrors,
		r.duration,
	)
	return r
}

// Registry exposes the underlying registry for gathering
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveLoad records the outcome of loading the rules directory
func (r *Recorder) ObserveLoad(rules int, errs *errors.List) {
	r.rulesLoaded.Set(float64(rules))
	if errs == nil {
		return
	}
	for _, err := range errs.Errors {
		r.loadErrors.WithLabelValues(string(err.Code)).Inc()
	}
}

// ObserveReport records the counts of a finished report and the run duration
func (r *Recorder) ObserveReport(rep *report.Report, elapsed time.Duration) {
	r.targets.Add(float64(rep.Summary.Targets))
	r.matches.Add(float64(rep.Summary.Matches))
	r.findings.WithLabelValues(string(types.SeverityError)).Add(float64(rep.Summary.Errors))
	r.findings.WithLabelValues(string(types.SeverityInfo)).Add(float64(rep.Summary.Infos))
	r.matchErrors.Add(float64(rep.Summary.MatchErrors))
	r.duration.Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric to path, replacing it atomically
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, fmt.Sprintf("cannot write metrics to %s", path)).
			WithDetail(errors.DetailFile, path)
	}
	return nil
}
