// Package report aggregates findings into a single report grouped by target
// then rule.
package report

import (
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/types"
)

// Report is the aggregated outcome of a run. Targets are sorted by path and
// rules keep dispatch order, so equal inputs give equal reports.
type Report struct {
	Targets     []TargetReport `json:"targets"`
	MatchErrors []MatchError   `json:"matchErrors,omitempty"`
	Summary     Summary        `json:"summary"`
}

// TargetReport holds the findings of one target
type TargetReport struct {
	Path  string       `json:"path"`
	Rules []RuleReport `json:"rules"`
}

// RuleReport holds the findings of one rule on one target
type RuleReport struct {
	Rule     string          `json:"rule"`
	Findings []types.Finding `json:"findings"`
}

// MatchError is a target that could not be evaluated
type MatchError struct {
	Target  string `json:"target"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Summary counts findings by severity
type Summary struct {
	Targets     int `json:"targets"`
	Matches     int `json:"matches"`
	Errors      int `json:"errors"`
	Infos       int `json:"infos"`
	Total       int `json:"total"`
	MatchErrors int `json:"matchErrors"`
}

// String renders the summary line. It always states the finding count.
func (s Summary) String() string {
	out := fmt.Sprintf("%d %s", s.Total, plural(s.Total, "finding", "findings"))
	if s.Total > 0 {
		out += fmt.Sprintf(" (%d %s, %d %s)",
			s.Errors, plural(s.Errors, "error", "errors"),
			s.Infos, plural(s.Infos, "info", "infos"))
	}
	out += fmt.Sprintf(" in %d %s", s.Targets, plural(s.Targets, "target", "targets"))
	if s.MatchErrors > 0 {
		out += fmt.Sprintf(", %d %s could not be read", s.MatchErrors, plural(s.MatchErrors, "target", "targets"))
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// HasErrors reports whether any error finding was produced
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

// Findings returns every finding in report order
func (r *Report) Findings() []types.Finding {
	var out []types.Finding
	for _, t := range r.Targets {
		for _, rr := range t.Rules {
			out = append(out, rr.Findings...)
		}
	}
	return out
}

// Build aggregates match results. targets lists every evaluated target,
// including those no rule matched. Results of one target must be in dispatch
// order, results of different targets may be interleaved. Matched results
// without findings count as matches but are not listed.
func Build(targets []string, results []types.MatchResult, matchErrs []error) *Report {
	r := &Report{Targets: []TargetReport{}}
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		seen[t] = true
	}
	byTarget := make(map[string]int)

	for _, res := range results {
		seen[res.Target] = true
		if !res.Matched {
			continue
		}
		r.Summary.Matches++
		if len(res.Findings) == 0 {
			continue
		}

		idx, ok := byTarget[res.Target]
		if !ok {
			idx = len(r.Targets)
			byTarget[res.Target] = idx
			r.Targets = append(r.Targets, TargetReport{Path: res.Target})
		}
		r.Targets[idx].Rules = append(r.Targets[idx].Rules, RuleReport{Rule: res.Rule, Findings: res.Findings})

		errs := res.Errors()
		r.Summary.Errors += errs
		r.Summary.Infos += len(res.Findings) - errs
		r.Summary.Total += len(res.Findings)
	}

	for _, err := range matchErrs {
		me := matchError(err)
		seen[me.Target] = true
		r.MatchErrors = append(r.MatchErrors, me)
	}

	sort.SliceStable(r.Targets, func(i, j int) bool {
		return r.Targets[i].Path < r.Targets[j].Path
	})
	sort.SliceStable(r.MatchErrors, func(i, j int) bool {
		return r.MatchErrors[i].Target < r.MatchErrors[j].Target
	})
	r.Summary.Targets = len(seen)
	r.Summary.MatchErrors = len(r.MatchErrors)
	return r
}

func matchError(err error) MatchError {
	var le *errors.LintError
	if !stderrors.As(err, &le) {
		return MatchError{Code: string(errors.ErrUnknown), Message: err.Error()}
	}
	msg := le.Message
	if le.Wrapped != nil {
		msg += ": " + le.Wrapped.Error()
	}
	return MatchError{Target: le.File(), Code: string(le.Code), Message: msg}
}
