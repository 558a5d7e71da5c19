package sweep

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"graphbench/internal/runner"
)

// Field names usable as chart axes and CSV columns.
const (
	FieldSize        = "n"
	FieldProbability = "p"
	FieldIndex       = "index"
	FieldDuration    = "duration"
)

// Variable is the independent variable a table is swept over.
type Variable string

// Swept variables.
const (
	VariableSize        Variable = FieldSize
	VariableProbability Variable = FieldProbability
	VariableIndex       Variable = FieldIndex
)

// Observation is one trial as reported by the simulator.
type Observation struct {
	Size        int
	Probability float64
	Algorithm   runner.Algorithm
	Duration    float64 // milliseconds
	Result      json.RawMessage
}

// ObservationBatch holds the accepted trials of one invocation.
type ObservationBatch struct {
	Size         int
	Probability  float64
	Algorithm    runner.Algorithm
	Requested    int
	Rejected     int
	Observations []Observation
}

// Durations returns the accepted trial durations in report order.
func (b ObservationBatch) Durations() []float64 {
	out := make([]float64, len(b.Observations))
	for i, o := range b.Observations {
		out[i] = o.Duration
	}
	return out
}

// Empty reports whether no trial was accepted.
func (b ObservationBatch) Empty() bool {
	return len(b.Observations) == 0
}

// Mean returns the arithmetic mean duration. ok is false for an empty batch.
func (b ObservationBatch) Mean() (mean float64, ok bool) {
	if b.Empty() {
		return 0, false
	}
	m, err := stats.Mean(b.Durations())
	if err != nil {
		return 0, false
	}
	return m, true
}

// Summary describes the spread of a batch's durations.
type Summary struct {
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Stats computes a Summary. It fails on an empty batch.
func (b ObservationBatch) Stats() (Summary, error) {
	data := stats.Float64Data(b.Durations())
	if data.Len() == 0 {
		return Summary{}, fmt.Errorf("%w: n=%d p=%g algorithm=%s", ErrEmptyBatch, b.Size, b.Probability, b.Algorithm)
	}

	var s Summary
	var err error
	if s.Mean, err = data.Mean(); err != nil {
		return Summary{}, err
	}
	if s.Median, err = data.Median(); err != nil {
		return Summary{}, err
	}
	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return Summary{}, err
	}
	if s.Min, err = data.Min(); err != nil {
		return Summary{}, err
	}
	if s.Max, err = data.Max(); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// SweepPoint is one aggregated row of a sweep. Missing marks a point whose mean
// is undefined because no trial was accepted; Mean is meaningless then.
type SweepPoint struct {
	N        int
	P        float64
	Index    int
	Mean     float64
	Missing  bool
	Trials   int
	Rejected int

	// Spread of the accepted durations; zero for missing points and for
	// points read back from CSV.
	Median float64
	StdDev float64
	Min    float64
	Max    float64
}

// Value returns the named field. ok is false for unknown fields and for the
// duration of a missing point.
func (p SweepPoint) Value(field string) (float64, bool) {
	switch field {
	case FieldSize, "size":
		return float64(p.N), true
	case FieldProbability, "probability":
		return p.P, true
	case FieldIndex:
		return float64(p.Index), true
	case FieldDuration, "mean":
		if p.Missing {
			return math.NaN(), false
		}
		return p.Mean, true
	default:
		return math.NaN(), false
	}
}

// SweepTable is an ordered curve over one independent variable.
type SweepTable struct {
	Name      string
	Variable  Variable
	Algorithm runner.Algorithm
	Points    []SweepPoint
}

// NewTable creates an empty table.
func NewTable(name string, variable Variable, algorithm runner.Algorithm) *SweepTable {
	return &SweepTable{
		Name:      name,
		Variable:  variable,
		Algorithm: algorithm,
	}
}

// Append adds a point at the end of the table.
func (t *SweepTable) Append(p SweepPoint) {
	t.Points = append(t.Points, p)
}

// Len returns the number of points.
func (t *SweepTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Points)
}

// MissingCount returns how many points have an undefined mean.
func (t *SweepTable) MissingCount() int {
	count := 0
	for _, p := range t.Points {
		if p.Missing {
			count++
		}
	}
	return count
}

// X returns the independent-variable value of point i.
func (t *SweepTable) X(i int) float64 {
	v, _ := t.Points[i].Value(string(t.Variable))
	return v
}

// Columns returns the CSV columns for this table's variable.
func (t *SweepTable) Columns() []string {
	switch t.Variable {
	case VariableProbability:
		return []string{FieldSize, FieldProbability, FieldDuration}
	case VariableIndex:
		return []string{FieldIndex, FieldDuration}
	default:
		return []string{FieldSize, FieldDuration}
	}
}

// pointFromBatch reduces a batch to a SweepPoint. An empty batch fails Stats
// with ErrEmptyBatch and is marked missing.
func pointFromBatch(b ObservationBatch) SweepPoint {
	p := SweepPoint{
		N:        b.Size,
		P:        b.Probability,
		Trials:   len(b.Observations),
		Rejected: b.Rejected,
	}
	summary, err := b.Stats()
	if err != nil {
		p.Missing = true
		return p
	}
	p.Mean = summary.Mean
	p.Median = summary.Median
	p.StdDev = summary.StdDev
	p.Min = summary.Min
	p.Max = summary.Max
	return p
}
