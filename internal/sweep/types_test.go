package sweep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphbench/internal/runner"
)

func batchOf(durations ...float64) ObservationBatch {
	b := ObservationBatch{Size: 4, Probability: 0.5, Algorithm: runner.AlgorithmDFS, Requested: len(durations)}
	for _, d := range durations {
		b.Observations = append(b.Observations, Observation{Size: 4, Probability: 0.5, Algorithm: runner.AlgorithmDFS, Duration: d})
	}
	return b
}

func TestObservationBatch_Stats(t *testing.T) {
	s, err := batchOf(10, 20, 30, 40).Stats()
	require.NoError(t, err)
	assert.Equal(t, 25.0, s.Mean)
	assert.Equal(t, 25.0, s.Median)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 40.0, s.Max)
	assert.InDelta(t, math.Sqrt(125), s.StdDev, 1e-9)

	_, err = batchOf().Stats()
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestSweepPoint_Value(t *testing.T) {
	p := SweepPoint{N: 7, P: 0.25, Index: 3, Mean: 12.5}

	tests := []struct {
		field string
		want  float64
		ok    bool
	}{
		{"n", 7, true},
		{"size", 7, true},
		{"p", 0.25, true},
		{"probability", 0.25, true},
		{"index", 3, true},
		{"duration", 12.5, true},
		{"mean", 12.5, true},
		{"colour", math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := p.Value(tt.field)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			} else {
				assert.True(t, math.IsNaN(got))
			}
		})
	}

	missing := SweepPoint{N: 7, Missing: true}
	_, ok := missing.Value(FieldDuration)
	assert.False(t, ok)
}

func TestSweepTable(t *testing.T) {
	table := NewTable("t", VariableProbability, runner.AlgorithmClique)
	table.Append(SweepPoint{N: 5, P: 0})
	table.Append(SweepPoint{N: 5, P: 0.5, Missing: true})

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 1, table.MissingCount())
	assert.Equal(t, 0.5, table.X(1))
	assert.Equal(t, []string{"n", "p", "duration"}, table.Columns())

	assert.Equal(t, []string{"index", "duration"}, NewTable("s", VariableIndex, "").Columns())
	assert.Equal(t, []string{"n", "duration"}, NewTable("s", VariableSize, "").Columns())

	var nilTable *SweepTable
	assert.Equal(t, 0, nilTable.Len())
}
