package plan

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"graphbench/internal/logger"
	"graphbench/internal/report"
	"graphbench/internal/results"
	"graphbench/internal/runner"
	"graphbench/internal/sweep"
)

// SweepEngine runs the sweeps a plan names.
type SweepEngine interface {
	SweepBySize(ctx context.Context, nMin, nMax int, probability float64, algorithm runner.Algorithm, trials int) (*sweep.SweepTable, error)
	SweepByProbability(ctx context.Context, size int, algorithm runner.Algorithm, trials int, start, step float64) (*sweep.SweepTable, error)
	SweepSatBatch(ctx context.Context, formulas []string) (total, transform *sweep.SweepTable, err error)
}

// TableRecorder persists finished tables.
type TableRecorder interface {
	Record(t *sweep.SweepTable, opts results.RunOptions) (*results.Recording, error)
}

// ChartRenderer draws charts.
type ChartRenderer interface {
	RenderSeries(ctx context.Context, req report.ChartRequest) error
}

// Executor runs a plan end to end.
type Executor struct {
	engine   SweepEngine
	recorder TableRecorder
	renderer ChartRenderer
	imageDir string
	format   string
	runner   string
	logger   *log.Logger
}

// ExecutorConfig carries what the executor needs besides its collaborators.
type ExecutorConfig struct {
	ImageDir string
	Format   string // image extension, svg by default
	Runner   string // runner path recorded in run metadata
	Logger   *log.Logger
}

// Result is what Execute produced.
type Result struct {
	Tables     []*sweep.SweepTable
	Recordings []*results.Recording
	Charts     []string
}

// NewExecutor wires an executor. A nil recorder skips recording.
func NewExecutor(engine SweepEngine, recorder TableRecorder, renderer ChartRenderer, cfg ExecutorConfig) *Executor {
	l := cfg.Logger
	if l == nil {
		l = logger.Discard()
	}
	format := cfg.Format
	if format == "" {
		format = "svg"
	}
	return &Executor{
		engine:   engine,
		recorder: recorder,
		renderer: renderer,
		imageDir: cfg.ImageDir,
		format:   format,
		runner:   cfg.Runner,
		logger:   l,
	}
}

// Execute runs every sweep in order, records each table, then renders every
// chart into the image directory. The first failing sweep aborts the plan.
func (e *Executor) Execute(ctx context.Context, p *Plan) (*Result, error) {
	res := &Result{}
	tables := make(map[string]*sweep.SweepTable)

	for i, s := range p.Sweeps {
		e.logger.Info("Running sweep", "sweep", s.Name, "kind", s.Kind, "step", fmt.Sprintf("%d/%d", i+1, len(p.Sweeps)))
		start := time.Now()

		produced, params, err := e.runSweep(ctx, p, s)
		if err != nil {
			return res, fmt.Errorf("sweep %q: %w", s.Name, err)
		}
		elapsed := time.Since(start)

		// Record tables
		for _, t := range produced {
			tables[t.Name] = t
			res.Tables = append(res.Tables, t)
			if e.recorder == nil {
				continue
			}
			rec, err := e.recorder.Record(t, results.RunOptions{
				Elapsed:    elapsed,
				Parameters: params,
				Runner:     e.runner,
			})
			if err != nil {
				return res, fmt.Errorf("failed to record sweep %q: %w", t.Name, err)
			}
			res.Recordings = append(res.Recordings, rec)
		}
	}

	// Render charts
	if len(p.Charts) == 0 {
		return res, nil
	}
	if err := results.EnsureOutputDirectory(e.imageDir); err != nil {
		return res, err
	}
	for _, c := range p.Charts {
		path, err := e.renderChart(ctx, c, tables)
		if err != nil {
			return res, fmt.Errorf("chart %q: %w", c.Name, err)
		}
		res.Charts = append(res.Charts, path)
	}
	return res, nil
}

// runSweep runs one sweep and returns its tables with the parameters to record.
func (e *Executor) runSweep(ctx context.Context, p *Plan, s SweepSpec) ([]*sweep.SweepTable, map[string]string, error) {
	params := s.parameters()
	switch s.Kind {
	case KindSize:
		alg, err := s.iterativeAlgorithm()
		if err != nil {
			return nil, nil, err
		}
		t, err := e.engine.SweepBySize(ctx, s.NMin, s.NMax, s.Probability, alg, s.Trials)
		if err != nil {
			return nil, nil, err
		}
		t.Name = s.Name
		return []*sweep.SweepTable{t}, params, nil

	case KindProbability:
		alg, err := s.iterativeAlgorithm()
		if err != nil {
			return nil, nil, err
		}
		t, err := e.engine.SweepByProbability(ctx, s.Size, alg, s.Trials, s.Start, s.Step)
		if err != nil {
			return nil, nil, err
		}
		t.Name = s.Name
		return []*sweep.SweepTable{t}, params, nil

	case KindSat:
		formulas, err := p.ResolveFormulas(s)
		if err != nil {
			return nil, nil, err
		}
		total, transform, err := e.engine.SweepSatBatch(ctx, formulas)
		if err != nil {
			return nil, nil, err
		}
		total.Name = s.Name
		transform.Name = s.Name + TransformSuffix
		// Count the resolved list, which includes the formulas file.
		params["formulas"] = strconv.Itoa(len(formulas))
		return []*sweep.SweepTable{total, transform}, params, nil
	}
	return nil, nil, fmt.Errorf("unknown kind %q", s.Kind)
}

func (e *Executor) renderChart(ctx context.Context, c ChartSpec, tables map[string]*sweep.SweepTable) (string, error) {
	series := make([]report.Series, 0, len(c.Series))
	for _, name := range c.Series {
		t, ok := tables[name]
		if !ok {
			return "", fmt.Errorf("series %q was not produced", name)
		}
		series = append(series, report.Series{Name: name, Table: t})
	}

	output := c.Output
	if output == "" {
		output = results.SanitizeName(c.Name) + "." + e.format
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(e.imageDir, output)
	}

	err := e.renderer.RenderSeries(ctx, report.ChartRequest{
		Title:      c.Title,
		Series:     series,
		XField:     c.X,
		YField:     c.Y,
		OutputPath: output,
	})
	if err != nil {
		return "", err
	}
	e.logger.Debug("Rendered plan chart", "chart", c.Name, "file", output)
	return output, nil
}

func (s SweepSpec) parameters() map[string]string {
	params := map[string]string{"kind": s.Kind}
	switch s.Kind {
	case KindSize:
		params["n_min"] = strconv.Itoa(s.NMin)
		params["n_max"] = strconv.Itoa(s.NMax)
		params["p"] = strconv.FormatFloat(s.Probability, 'g', -1, 64)
		params["trials"] = strconv.Itoa(s.Trials)
	case KindProbability:
		params["n"] = strconv.Itoa(s.Size)
		params["start"] = strconv.FormatFloat(s.Start, 'g', -1, 64)
		params["step"] = strconv.FormatFloat(s.Step, 'g', -1, 64)
		params["trials"] = strconv.Itoa(s.Trials)
	case KindSat:
		if s.FormulasFile != "" {
			params["formulas_file"] = s.FormulasFile
		}
	}
	return params
}
