package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphbench/internal/runner"
	"graphbench/internal/sweep"
)

func TestMarkdown(t *testing.T) {
	size := sweep.NewTable("PATH-DFS p=0.5", sweep.VariableSize, runner.AlgorithmPathDFS)
	size.Append(sweep.SweepPoint{N: 4, Mean: 20, Median: 19, StdDev: 2.5, Trials: 3})
	size.Append(sweep.SweepPoint{N: 5, Missing: true, Rejected: 3})

	prob := sweep.NewTable("CLIQUE n=8", sweep.VariableProbability, runner.AlgorithmClique)
	prob.Append(sweep.SweepPoint{N: 8, P: 0.25, Mean: 1.5, Trials: 2})

	md := Markdown(size, prob, sweep.NewTable("empty", sweep.VariableIndex, ""))

	assert.Contains(t, md, "## PATH-DFS p=0.5")
	assert.Contains(t, md, "| 4 | 20.000 | 19.000 | 2.500 | 3 | 0 |")
	assert.Contains(t, md, "| 5 | missing | - | - | 0 | 3 |")
	assert.Contains(t, md, "1 of 2 points missing.")
	assert.Contains(t, md, "| 0.25 | 1.500 | 0.000 | 0.000 | 2 | 0 |")
	assert.Contains(t, md, "_no points_")
}

func TestRenderer(t *testing.T) {
	r, err := NewRenderer(60, true)
	require.NoError(t, err)

	table := sweep.NewTable("DFS p=0.1", sweep.VariableSize, runner.AlgorithmDFS)
	table.Append(sweep.SweepPoint{N: 3, Mean: 2, Trials: 1})

	out, err := r.Render(table)
	require.NoError(t, err)
	assert.Contains(t, out, "DFS p=0.1")
	assert.NotContains(t, out, "\x1b[")

	out, err = r.Render()
	require.NoError(t, err)
	assert.Empty(t, out)
}
