// Package verify reconciles locally computed window metrics with the result
// stream the DSMS produced over the same data.
//
// Mismatches are the comparator's output, not failures: the run always
// completes and reports every window. Callers decide what a non-empty report
// means for the process exit status.
package verify

import (
	"fmt"

	"github.com/dqbench/dqbench/internal/model"
)

// DefaultTolerance admits the DSMS's two-decimal output formatting: values
// that agree to two decimal places differ by less than 0.009.
const DefaultTolerance = 0.009

// Metric names used in reports.
const (
	MetricAccuracy     = "accuracy"
	MetricCompleteness = "completeness"
	MetricTimeliness   = "timeliness"
)

// Options configures a comparison.
type Options struct {
	// Tolerance is the maximum |local - dsms| admitted per metric.
	Tolerance float64

	// MatchByKey matches windows on (first,last) value_id when true, by
	// ordinal position otherwise. Key matching is used when the DSMS
	// emits boundary ids.
	MatchByKey bool
}

// MissingWindowError reports a window present in one metric source but not
// the other. Reported, never fatal.
type MissingWindowError struct {
	Key model.WindowKey

	// MissingFrom names the side that lacks the window: "local" or "dsms".
	MissingFrom string
}

func (e *MissingWindowError) Error() string {
	return fmt.Sprintf("verify: window %d (ids %d-%d) missing from %s output",
		e.Key.Ordinal, e.Key.FirstValueID, e.Key.LastValueID, e.MissingFrom)
}

// MetricMismatchError reports one metric of one window exceeding tolerance.
type MetricMismatchError struct {
	Key    model.WindowKey
	Metric string
	Local  float64
	DSMS   float64
}

func (e *MetricMismatchError) Error() string {
	return fmt.Sprintf("verify: window %d (ids %d-%d) %s mismatch: local=%.6f dsms=%.6f",
		e.Key.Ordinal, e.Key.FirstValueID, e.Key.LastValueID, e.Metric, e.Local, e.DSMS)
}

// Report summarizes a comparison run.
type Report struct {
	WindowsCompared int
	WindowsMatched  int

	Mismatches []*MetricMismatchError
	Missing    []*MissingWindowError

	// MismatchesPerMetric counts mismatched windows per metric name.
	MismatchesPerMetric map[string]int
}

// OK reports a successful verification: every window matched within
// tolerance and neither side was missing windows.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0 && len(r.Missing) == 0
}

// Compare reconciles the local and DSMS window sequences.
func Compare(local, dsms []model.WindowMetrics, opts Options) *Report {
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}

	report := &Report{
		MismatchesPerMetric: make(map[string]int),
	}

	if opts.MatchByKey {
		compareByKey(report, local, dsms, opts.Tolerance)
	} else {
		compareByOrdinal(report, local, dsms, opts.Tolerance)
	}
	return report
}

type boundary struct{ first, last int64 }

func compareByKey(report *Report, local, dsms []model.WindowMetrics, tol float64) {
	remote := make(map[boundary]model.WindowMetrics, len(dsms))
	for _, wm := range dsms {
		remote[boundary{wm.Key.FirstValueID, wm.Key.LastValueID}] = wm
	}

	seen := make(map[boundary]bool, len(local))
	for _, lw := range local {
		b := boundary{lw.Key.FirstValueID, lw.Key.LastValueID}
		seen[b] = true
		rw, ok := remote[b]
		if !ok {
			report.Missing = append(report.Missing, &MissingWindowError{Key: lw.Key, MissingFrom: "dsms"})
			continue
		}
		compareWindow(report, lw, rw, tol)
	}

	for _, rw := range dsms {
		if !seen[boundary{rw.Key.FirstValueID, rw.Key.LastValueID}] {
			report.Missing = append(report.Missing, &MissingWindowError{Key: rw.Key, MissingFrom: "local"})
		}
	}
}

func compareByOrdinal(report *Report, local, dsms []model.WindowMetrics, tol float64) {
	n := len(local)
	if len(dsms) < n {
		n = len(dsms)
	}
	for i := 0; i < n; i++ {
		compareWindow(report, local[i], dsms[i], tol)
	}
	for _, lw := range local[n:] {
		report.Missing = append(report.Missing, &MissingWindowError{Key: lw.Key, MissingFrom: "dsms"})
	}
	for _, rw := range dsms[n:] {
		report.Missing = append(report.Missing, &MissingWindowError{Key: rw.Key, MissingFrom: "local"})
	}
}

func compareWindow(report *Report, local, dsms model.WindowMetrics, tol float64) {
	report.WindowsCompared++

	matched := true
	for _, m := range []struct {
		name       string
		lval, rval float64
	}{
		{MetricAccuracy, local.Accuracy, dsms.Accuracy},
		{MetricCompleteness, local.Completeness, dsms.Completeness},
		{MetricTimeliness, local.Timeliness, dsms.Timeliness},
	} {
		if diff := m.lval - m.rval; diff > tol || diff < -tol {
			matched = false
			report.MismatchesPerMetric[m.name]++
			report.Mismatches = append(report.Mismatches, &MetricMismatchError{
				Key:    local.Key,
				Metric: m.name,
				Local:  m.lval,
				DSMS:   m.rval,
			})
		}
	}
	if matched {
		report.WindowsMatched++
	}
}
