package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphbench/internal/runner"
	"graphbench/internal/sweep"
)

func sizeTable(points ...sweep.SweepPoint) *sweep.SweepTable {
	t := sweep.NewTable("t", sweep.VariableSize, runner.AlgorithmDFS)
	for _, p := range points {
		t.Append(p)
	}
	return t
}

func TestCompare(t *testing.T) {
	baseline := sizeTable(
		sweep.SweepPoint{N: 1, Mean: 10},
		sweep.SweepPoint{N: 2, Mean: 10},
		sweep.SweepPoint{N: 3, Mean: 10},
		sweep.SweepPoint{N: 4, Missing: true},
		sweep.SweepPoint{N: 5, Mean: 10},
	)
	current := sizeTable(
		sweep.SweepPoint{N: 1, Mean: 10.5},
		sweep.SweepPoint{N: 2, Mean: 12},
		sweep.SweepPoint{N: 3, Mean: 8},
		sweep.SweepPoint{N: 4, Mean: 9},
		sweep.SweepPoint{N: 6, Mean: 9},
	)

	report, err := Compare(baseline, current, DefaultThreshold)
	require.NoError(t, err)
	require.Len(t, report.Deltas, 6)

	statuses := make([]Status, len(report.Deltas))
	for i, d := range report.Deltas {
		statuses[i] = d.Status
	}
	assert.Equal(t, []Status{
		StatusUnchanged,
		StatusRegressed,
		StatusImproved,
		StatusMissingBaseline,
		StatusMissingCurrent,
		StatusMissingBaseline,
	}, statuses)

	assert.InDelta(t, 0.2, report.Deltas[1].Change, 1e-9)
	assert.True(t, math.IsNaN(report.Deltas[3].Change))
	assert.True(t, report.HasRegressions())
	require.Len(t, report.Regressions(), 1)
	assert.Equal(t, 2.0, report.Regressions()[0].X)

	text := report.String()
	assert.Contains(t, text, "+20.0%")
	assert.Contains(t, text, "regressed")
}

func TestCompare_Errors(t *testing.T) {
	prob := sweep.NewTable("p", sweep.VariableProbability, runner.AlgorithmDFS)

	_, err := Compare(sizeTable(), prob, 0.1)
	assert.Error(t, err)
	_, err = Compare(nil, prob, 0.1)
	assert.Error(t, err)
	_, err = Compare(sizeTable(), sizeTable(), -1)
	assert.Error(t, err)
}

func TestCompare_ZeroBaseline(t *testing.T) {
	report, err := Compare(
		sizeTable(sweep.SweepPoint{N: 1, Mean: 0}, sweep.SweepPoint{N: 2, Mean: 0}),
		sizeTable(sweep.SweepPoint{N: 1, Mean: 0}, sweep.SweepPoint{N: 2, Mean: 1}),
		0.1,
	)
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, report.Deltas[0].Status)
	assert.Equal(t, StatusRegressed, report.Deltas[1].Status)
	assert.Contains(t, report.String(), "+inf")
}

func TestTextDiff(t *testing.T) {
	assert.Empty(t, TextDiff("n,duration\n1,2\n", "n,duration\n1,2\n"))

	diff := TextDiff("n,duration\n1,2\n", "n,duration\n1,3\n")
	assert.Contains(t, diff, `- "2"`)
	assert.Contains(t, diff, `+ "3"`)
}
