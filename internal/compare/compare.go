// Package compare checks a sweep table against a recorded baseline.
package compare

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"graphbench/internal/sweep"
)

// DefaultThreshold flags points that got more than 10% slower.
const DefaultThreshold = 0.10

// Status classifies one compared point.
type Status string

// Point statuses.
const (
	StatusUnchanged       Status = "unchanged"
	StatusImproved        Status = "improved"
	StatusRegressed       Status = "regressed"
	StatusMissingBaseline Status = "missing-baseline"
	StatusMissingCurrent  Status = "missing-current"
)

// PointDelta compares the means at one independent-variable value.
type PointDelta struct {
	X        float64
	Baseline float64
	Current  float64
	Change   float64 // relative change, (current-baseline)/baseline
	Status   Status
}

// Report is the outcome of Compare.
type Report struct {
	Variable  sweep.Variable
	Threshold float64
	Deltas    []PointDelta
}

// Regressions returns the deltas that exceeded the threshold.
func (r *Report) Regressions() []PointDelta {
	var out []PointDelta
	for _, d := range r.Deltas {
		if d.Status == StatusRegressed {
			out = append(out, d)
		}
	}
	return out
}

// HasRegressions reports whether any point regressed.
func (r *Report) HasRegressions() bool {
	return len(r.Regressions()) > 0
}

// String renders the report as an aligned text table.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-10s %14s %14s %9s  %s\n", r.Variable, "baseline", "current", "change", "status")
	for _, d := range r.Deltas {
		fmt.Fprintf(&sb, "%-10s %14s %14s %9s  %s\n",
			formatNumber(d.X), formatMean(d.Baseline), formatMean(d.Current), formatChange(d.Change), d.Status)
	}
	return sb.String()
}

// Compare aligns baseline and current by their independent variable. Points
// present in only one table, or missing in either, are reported as such.
func Compare(baseline, current *sweep.SweepTable, threshold float64) (*Report, error) {
	if baseline == nil || current == nil {
		return nil, fmt.Errorf("both tables are required")
	}
	if baseline.Variable != current.Variable {
		return nil, fmt.Errorf("cannot compare a %s sweep with a %s sweep", baseline.Variable, current.Variable)
	}
	if threshold < 0 {
		return nil, fmt.Errorf("threshold %g must not be negative", threshold)
	}

	base := index(baseline)
	cur := index(current)

	keys := make([]float64, 0, len(base)+len(cur))
	for x := range base {
		keys = append(keys, x)
	}
	for x := range cur {
		if _, ok := base[x]; !ok {
			keys = append(keys, x)
		}
	}
	sort.Float64s(keys)

	report := &Report{Variable: baseline.Variable, Threshold: threshold}
	for _, x := range keys {
		b, bok := base[x]
		c, cok := cur[x]
		d := PointDelta{X: x, Baseline: math.NaN(), Current: math.NaN(), Change: math.NaN()}
		if bok && !b.Missing {
			d.Baseline = b.Mean
		}
		if cok && !c.Missing {
			d.Current = c.Mean
		}

		switch {
		case math.IsNaN(d.Baseline):
			d.Status = StatusMissingBaseline
		case math.IsNaN(d.Current):
			d.Status = StatusMissingCurrent
		default:
			d.Change = relativeChange(d.Baseline, d.Current)
			d.Status = classify(d.Change, threshold)
		}
		report.Deltas = append(report.Deltas, d)
	}
	return report, nil
}

// TextDiff renders a character diff of two CSV renderings, one fragment per line.
func TextDiff(expected, actual string) string {
	if expected == actual {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(expected, actual, false))

	var sb strings.Builder
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&sb, "- %q\n", diff.Text)
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&sb, "+ %q\n", diff.Text)
		case diffmatchpatch.DiffEqual:
			if len(diff.Text) > 50 {
				fmt.Fprintf(&sb, "  %q...\n", diff.Text[:47])
			} else {
				fmt.Fprintf(&sb, "  %q\n", diff.Text)
			}
		}
	}
	return sb.String()
}

func index(t *sweep.SweepTable) map[float64]sweep.SweepPoint {
	out := make(map[float64]sweep.SweepPoint, t.Len())
	for i, p := range t.Points {
		out[t.X(i)] = p
	}
	return out
}

func relativeChange(baseline, current float64) float64 {
	if baseline == 0 {
		if current == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return (current - baseline) / baseline
}

func classify(change, threshold float64) Status {
	switch {
	case change > threshold:
		return StatusRegressed
	case change < -threshold:
		return StatusImproved
	default:
		return StatusUnchanged
	}
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}

func formatMean(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func formatChange(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	if math.IsInf(v, 1) {
		return "+inf"
	}
	return fmt.Sprintf("%+.1f%%", v*100)
}
