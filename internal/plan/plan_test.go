package plan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphbench/internal/report"
	"graphbench/internal/results"
	"graphbench/internal/runner"
	"graphbench/internal/sweep"
)

const samplePlan = `
name: nightly
runner: bin/graph
sweeps:
  - name: dfs-size
    kind: size
    algorithm: dfs
    n_min: 1
    n_max: 3
    p: 0.5
    trials: 4
  - name: clique-p
    kind: Probability
    algorithm: CLIQUE
    n: 10
    trials: 2
  - name: sat
    kind: sat
    formulas: ["a & b", "a | !b"]
charts:
  - name: sizes
    x: n
    series: [dfs-size]
  - name: sat-times
    x: index
    series: [sat, sat.transform]
    output: sat.png
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(samplePlan))
	require.NoError(t, err)

	assert.Equal(t, "nightly", p.Name)
	require.Len(t, p.Sweeps, 3)
	assert.Equal(t, KindProbability, p.Sweeps[1].Kind)
	assert.Equal(t, sweep.DefaultStep, p.Sweeps[1].Step)
	assert.Equal(t, string(runner.AlgorithmSatClique), p.Sweeps[2].Algorithm)
	assert.Equal(t, []string{"sat", "sat.transform"}, p.Sweeps[2].SeriesNames())

	require.Len(t, p.Charts, 2)
	assert.Equal(t, sweep.FieldDuration, p.Charts[0].Y)
	assert.Equal(t, "sizes", p.Charts[0].Title)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no sweeps", "name: x\n"},
		{"duplicate sweep", `
sweeps:
  - {name: a, kind: size, algorithm: DFS, n_min: 1, n_max: 2, trials: 1}
  - {name: a, kind: size, algorithm: DFS, n_min: 1, n_max: 2, trials: 1}
`},
		{"bad size range", `
sweeps:
  - {name: a, kind: size, algorithm: DFS, n_min: 3, n_max: 2, trials: 1}
`},
		{"sat algorithm in size sweep", `
sweeps:
  - {name: a, kind: size, algorithm: SAT-CLIQUE, n_min: 1, n_max: 2, trials: 1}
`},
		{"step too large", `
sweeps:
  - {name: a, kind: probability, algorithm: DFS, n: 5, trials: 1, step: 0.5}
`},
		{"unknown kind", `
sweeps:
  - {name: a, kind: random}
`},
		{"sat without formulas", `
sweeps:
  - {name: a, kind: sat}
`},
		{"negative size", `
sweeps:
  - {name: a, kind: probability, algorithm: DFS, n: -1, trials: 1}
`},
		{"transform series taken by an earlier sweep", `
sweeps:
  - {name: a.transform, kind: size, algorithm: DFS, n_min: 1, n_max: 2, trials: 1}
  - {name: a, kind: sat, formulas: ["x"]}
`},
		{"transform series taken by a later sweep", `
sweeps:
  - {name: a, kind: sat, formulas: ["x"]}
  - {name: a.transform, kind: size, algorithm: DFS, n_min: 1, n_max: 2, trials: 1}
`},
		{"unknown series", `
sweeps:
  - {name: a, kind: size, algorithm: DFS, n_min: 1, n_max: 2, trials: 1}
charts:
  - {name: c, x: n, series: [a.transform]}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestParse_AcceptsZeroSize(t *testing.T) {
	p, err := Parse([]byte(`
sweeps:
  - {name: from-zero, kind: size, algorithm: DFS, n_min: 0, n_max: 2, trials: 1}
  - {name: empty-graph, kind: probability, algorithm: CLIQUE, n: 0, trials: 1}
`))
	require.NoError(t, err)
	assert.Equal(t, 0, p.Sweeps[0].NMin)
	assert.Equal(t, 0, p.Sweeps[1].Size)
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("sweeps: []\nbogus: 1\n"))
	assert.Error(t, err)
}

func TestLoad_ResolvesFormulasFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "formulas.txt"), []byte("# header\nx & y\n\n!x\n"), 0644))
	planFile := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planFile, []byte(`
sweeps:
  - name: sat
    kind: sat
    formulas: ["a"]
    formulas_file: formulas.txt
`), 0644))

	p, err := Load(planFile)
	require.NoError(t, err)

	formulas, err := p.ResolveFormulas(p.Sweeps[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x & y", "!x"}, formulas)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

type fakeEngine struct {
	calls []string
	fail  string
}

func (f *fakeEngine) table(name string, v sweep.Variable, alg runner.Algorithm, xs ...float64) *sweep.SweepTable {
	t := sweep.NewTable(name, v, alg)
	for i, x := range xs {
		p := sweep.SweepPoint{Mean: float64(10 * (i + 1)), Trials: 1}
		switch v {
		case sweep.VariableSize:
			p.N = int(x)
		case sweep.VariableProbability:
			p.P = x
		default:
			p.Index = int(x)
		}
		t.Append(p)
	}
	return t
}

func (f *fakeEngine) SweepBySize(_ context.Context, nMin, nMax int, _ float64, alg runner.Algorithm, _ int) (*sweep.SweepTable, error) {
	f.calls = append(f.calls, "size")
	if f.fail == "size" {
		return nil, errors.New("boom")
	}
	var xs []float64
	for n := nMin; n <= nMax; n++ {
		xs = append(xs, float64(n))
	}
	return f.table("generated", sweep.VariableSize, alg, xs...), nil
}

func (f *fakeEngine) SweepByProbability(_ context.Context, _ int, alg runner.Algorithm, _ int, _, _ float64) (*sweep.SweepTable, error) {
	f.calls = append(f.calls, "probability")
	return f.table("generated", sweep.VariableProbability, alg, 0, 0.5, 1), nil
}

func (f *fakeEngine) SweepSatBatch(_ context.Context, formulas []string) (*sweep.SweepTable, *sweep.SweepTable, error) {
	f.calls = append(f.calls, "sat")
	var xs []float64
	for i := range formulas {
		xs = append(xs, float64(i))
	}
	return f.table("total", sweep.VariableIndex, runner.AlgorithmSatClique, xs...),
		f.table("transform", sweep.VariableIndex, runner.AlgorithmSatClique, xs...), nil
}

type fakeRecorder struct {
	names []string
}

func (f *fakeRecorder) Record(t *sweep.SweepTable, opts results.RunOptions) (*results.Recording, error) {
	f.names = append(f.names, t.Name)
	return &results.Recording{Metadata: results.RunMetadata{SweepName: t.Name, Parameters: opts.Parameters}}, nil
}

type fakeRenderer struct {
	requests []report.ChartRequest
}

func (f *fakeRenderer) RenderSeries(_ context.Context, req report.ChartRequest) error {
	f.requests = append(f.requests, req)
	return nil
}

func TestExecutor_Execute(t *testing.T) {
	p, err := Parse([]byte(samplePlan))
	require.NoError(t, err)

	engine := &fakeEngine{}
	recorder := &fakeRecorder{}
	renderer := &fakeRenderer{}
	imageDir := filepath.Join(t.TempDir(), "img")

	res, err := NewExecutor(engine, recorder, renderer, ExecutorConfig{ImageDir: imageDir}).Execute(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, []string{"size", "probability", "sat"}, engine.calls)
	assert.Equal(t, []string{"dfs-size", "clique-p", "sat", "sat.transform"}, recorder.names)
	assert.Len(t, res.Tables, 4)
	assert.Len(t, res.Recordings, 4)
	assert.Equal(t, "3", res.Recordings[0].Metadata.Parameters["n_max"])

	require.Len(t, renderer.requests, 2)
	assert.Equal(t, filepath.Join(imageDir, "sizes.svg"), renderer.requests[0].OutputPath)
	assert.Equal(t, filepath.Join(imageDir, "sat.png"), renderer.requests[1].OutputPath)
	require.Len(t, renderer.requests[1].Series, 2)
	assert.Equal(t, "sat.transform", renderer.requests[1].Series[1].Name)
	assert.Equal(t, []string{renderer.requests[0].OutputPath, renderer.requests[1].OutputPath}, res.Charts)

	assert.DirExists(t, imageDir)
}

func TestExecutor_RecordsResolvedFormulaCount(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "formulas.txt"), []byte("x\ny\n"), 0644))
	planFile := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planFile, []byte(`
sweeps:
  - {name: sat, kind: sat, formulas: ["a"], formulas_file: formulas.txt}
`), 0644))
	p, err := Load(planFile)
	require.NoError(t, err)

	recorder := &fakeRecorder{}
	res, err := NewExecutor(&fakeEngine{}, recorder, &fakeRenderer{}, ExecutorConfig{ImageDir: dir}).Execute(context.Background(), p)
	require.NoError(t, err)

	require.Len(t, res.Recordings, 2)
	for _, rec := range res.Recordings {
		assert.Equal(t, "3", rec.Metadata.Parameters["formulas"])
		assert.Equal(t, "formulas.txt", rec.Metadata.Parameters["formulas_file"])
	}
	assert.Equal(t, 3, res.Tables[0].Len())
}

func TestExecutor_SweepFailureAborts(t *testing.T) {
	p, err := Parse([]byte(samplePlan))
	require.NoError(t, err)

	engine := &fakeEngine{fail: "size"}
	renderer := &fakeRenderer{}
	_, err = NewExecutor(engine, nil, renderer, ExecutorConfig{ImageDir: t.TempDir()}).Execute(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dfs-size")
	assert.Equal(t, []string{"size"}, engine.calls)
	assert.Empty(t, renderer.requests)
}
