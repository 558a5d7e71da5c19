package results

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphbench/internal/runner"
	"graphbench/internal/sweep"
)

func sizeTable() *sweep.SweepTable {
	t := sweep.NewTable("PATH-DFS p=0.5", sweep.VariableSize, runner.AlgorithmPathDFS)
	t.Append(sweep.SweepPoint{N: 4, P: 0.5, Mean: 20, Median: 18, StdDev: 4, Min: 15, Max: 27, Trials: 3})
	t.Append(sweep.SweepPoint{N: 5, P: 0.5, Missing: true, Rejected: 3})
	t.Append(sweep.SweepPoint{N: 6, P: 0.5, Mean: 31.25, Trials: 3})
	return t
}

func TestResolveImageDir(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, filepath.Join(root, "data", "img"), ResolveImageDir(root))

	require.NoError(t, os.Mkdir(filepath.Join(root, "report"), 0755))
	assert.Equal(t, filepath.Join(root, "report", "img"), ResolveImageDir(root))
}

func TestEnsureOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "img")
	require.NoError(t, EnsureOutputDirectory(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Error(t, EnsureOutputDirectory(""))
}

func TestWriteTable(t *testing.T) {
	tests := []struct {
		name     string
		table    *sweep.SweepTable
		expected string
	}{
		{
			name:     "size sweep",
			table:    sizeTable(),
			expected: "n,duration\n4,20\n5,\n6,31.25\n",
		},
		{
			name: "probability sweep",
			table: func() *sweep.SweepTable {
				t := sweep.NewTable("CLIQUE n=10", sweep.VariableProbability, runner.AlgorithmClique)
				t.Append(sweep.SweepPoint{N: 10, P: 0.05, Mean: 1.5})
				t.Append(sweep.SweepPoint{N: 10, P: 1, Mean: 2})
				return t
			}(),
			expected: "n,p,duration\n10,0.05,1.5\n10,1,2\n",
		},
		{
			name: "sat batch",
			table: func() *sweep.SweepTable {
				t := sweep.NewTable("SAT-CLIQUE total", sweep.VariableIndex, runner.AlgorithmSatClique)
				t.Append(sweep.SweepPoint{Index: 0, Mean: 7})
				t.Append(sweep.SweepPoint{Index: 1, Missing: true})
				return t
			}(),
			expected: "index,duration\n0,7\n1,\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTable(&buf, tt.table))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestReadTable_PreservesMissing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sizeTable()))

	table, err := ReadTable(&buf, "baseline")
	require.NoError(t, err)
	assert.Equal(t, "baseline", table.Name)
	assert.Equal(t, sweep.VariableSize, table.Variable)
	require.Len(t, table.Points, 3)
	assert.Equal(t, 4, table.Points[0].N)
	assert.Equal(t, 20.0, table.Points[0].Mean)
	assert.True(t, table.Points[1].Missing)
	assert.Equal(t, 31.25, table.Points[2].Mean)
}

func TestReadTable_Variables(t *testing.T) {
	table, err := ReadTable(strings.NewReader("n,p,duration\n10,0.5,3\n"), "p")
	require.NoError(t, err)
	assert.Equal(t, sweep.VariableProbability, table.Variable)
	assert.Equal(t, 0.5, table.Points[0].P)

	table, err = ReadTable(strings.NewReader("index,duration\n0,NaN\n"), "sat")
	require.NoError(t, err)
	assert.Equal(t, sweep.VariableIndex, table.Variable)
	assert.True(t, table.Points[0].Missing)
}

func TestReadTable_Errors(t *testing.T) {
	for _, input := range []string{
		"",
		"n,steps\n1,2\n",
		"duration\n1\n",
		"n,duration\nfour,1\n",
		"n,duration\n4,fast\n",
	} {
		_, err := ReadTable(strings.NewReader(input), "x")
		assert.Error(t, err, "input %q", input)
	}
}

func TestTableFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dfs.csv")
	require.NoError(t, WriteTableFile(path, sizeTable()))

	table, err := ReadTableFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dfs", table.Name)
	assert.Equal(t, 3, table.Len())
}

func TestRecorder_RecordAndSummary(t *testing.T) {
	dataDir := t.TempDir()
	rec := NewRecorder(dataDir, nil)
	ids := 0
	rec.newID = func() string {
		ids++
		return fmt.Sprintf("run-%d", ids)
	}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	first, err := rec.Record(sizeTable(), RunOptions{Elapsed: time.Second, Parameters: map[string]string{"trials": "3"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "runs", "PATH-DFS_p_0.5", "run-1.csv"), first.TableFile)
	assert.Equal(t, 3, first.Metadata.Points)
	assert.Equal(t, 1, first.Metadata.Missing)
	assert.FileExists(t, first.MetadataFile)

	require.Len(t, first.Metadata.PointStats, 3)
	assert.Equal(t, PointStats{X: 4, Mean: 20, Median: 18, StdDev: 4, Min: 15, Max: 27, Trials: 3}, first.Metadata.PointStats[0])
	assert.True(t, first.Metadata.PointStats[1].Missing)
	data, err := os.ReadFile(first.MetadataFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"median": 18`)

	second, err := rec.Record(sizeTable(), RunOptions{})
	require.NoError(t, err)

	summary, err := rec.LoadSummary("PATH-DFS p=0.5")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalRuns)
	assert.True(t, summary.LatestRun.Equal(fixed))
	require.Len(t, summary.RunHistory, 2)
	assert.Equal(t, "3", summary.RunHistory[0].Parameters["trials"])

	latest, err := rec.Latest("PATH-DFS p=0.5")
	require.NoError(t, err)
	assert.Equal(t, second.TableFile, latest)

	_, err = rec.Latest("unknown")
	assert.Error(t, err)
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"PATH-DFS p=0.5":    "PATH-DFS_p_0.5",
		"  clique/by size ": "clique_by_size",
		"../..":             "sweep",
		"":                  "sweep",
	}
	for input, expected := range tests {
		assert.Equal(t, expected, SanitizeName(input), "input %q", input)
	}
}
