package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"graphbench/internal/plan"
	"graphbench/internal/report"
	"graphbench/internal/results"
	"graphbench/internal/runner"
	"graphbench/internal/sweep"
)

// sweepOutput holds the flags every sweep command shares.
type sweepOutput struct {
	name     string
	chart    bool
	show     bool
	noRecord bool
}

func (o *sweepOutput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.name, "name", "", "Name of the recorded sweep [default: derived from parameters]")
	cmd.Flags().BoolVar(&o.chart, "chart", false, "Write a chart of the sweep to the image directory")
	cmd.Flags().BoolVar(&o.show, "show", false, "Show the chart interactively instead of writing it")
	cmd.Flags().BoolVar(&o.noRecord, "no-record", false, "Do not record the sweep under the data directory")
}

// addSweepCommands adds the sweep command group
func (app *App) addSweepCommands(rootCmd *cobra.Command) {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a parameter sweep against the algorithm runner",
	}

	var (
		sizeOut   sweepOutput
		algorithm string
		nMin      int
		nMax      int
		prob      float64
		trials    int
	)
	sizeCmd := &cobra.Command{
		Use:   "size",
		Short: "Sweep graph size at a fixed edge probability",
		Long: `Run the algorithm for every graph size in [n-min, n-max] at a fixed edge
probability and record the mean duration per size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			alg, err := runner.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			engine, path, err := app.prepareSweep()
			if err != nil {
				return err
			}
			name := sizeOut.name
			if name == "" {
				name = fmt.Sprintf("%s_p_%s", alg, strconv.FormatFloat(prob, 'g', -1, 64))
			}

			start := time.Now()
			t, err := engine.SweepBySize(cmd.Context(), nMin, nMax, prob, alg, trials)
			if err != nil {
				return err
			}
			t.Name = name
			params := map[string]string{
				"kind":   plan.KindSize,
				"n_min":  strconv.Itoa(nMin),
				"n_max":  strconv.Itoa(nMax),
				"p":      strconv.FormatFloat(prob, 'g', -1, 64),
				"trials": strconv.Itoa(trials),
			}
			return app.finishSweep(cmd, sizeOut, path, time.Since(start), params, sweep.FieldSize, t)
		},
	}
	sizeCmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(runner.AlgorithmDFS), algorithmFlagUsage())
	sizeCmd.Flags().IntVar(&nMin, "n-min", 1, "Smallest graph size")
	sizeCmd.Flags().IntVar(&nMax, "n-max", 20, "Largest graph size")
	sizeCmd.Flags().Float64Var(&prob, "p", 0.5, "Edge probability")
	sizeCmd.Flags().IntVarP(&trials, "trials", "t", 10, "Trials per point")
	sizeOut.register(sizeCmd)

	var (
		probOut    sweepOutput
		probAlg    string
		size       int
		probTrials int
		startP     float64
		step       float64
	)
	probCmd := &cobra.Command{
		Use:   "probability",
		Short: "Sweep edge probability at a fixed graph size",
		Long: `Run the algorithm at probabilities start, start+step, ... up to and including
1.0 for a fixed graph size and record the mean duration per probability.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			alg, err := runner.ParseAlgorithm(probAlg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("step") {
				step = app.Config.Step
			}
			engine, path, err := app.prepareSweep()
			if err != nil {
				return err
			}
			name := probOut.name
			if name == "" {
				name = fmt.Sprintf("%s_n_%d", alg, size)
			}

			start := time.Now()
			t, err := engine.SweepByProbability(cmd.Context(), size, alg, probTrials, startP, step)
			if err != nil {
				return err
			}
			t.Name = name
			params := map[string]string{
				"kind":   plan.KindProbability,
				"n":      strconv.Itoa(size),
				"start":  strconv.FormatFloat(startP, 'g', -1, 64),
				"step":   strconv.FormatFloat(step, 'g', -1, 64),
				"trials": strconv.Itoa(probTrials),
			}
			return app.finishSweep(cmd, probOut, path, time.Since(start), params, sweep.FieldProbability, t)
		},
	}
	probCmd.Flags().StringVarP(&probAlg, "algorithm", "a", string(runner.AlgorithmDFS), algorithmFlagUsage())
	probCmd.Flags().IntVar(&size, "n", 10, "Graph size")
	probCmd.Flags().IntVarP(&probTrials, "trials", "t", 10, "Trials per point")
	probCmd.Flags().Float64Var(&startP, "start", sweep.DefaultStart, "First probability")
	probCmd.Flags().Float64Var(&step, "step", sweep.DefaultStep, "Probability step in (0, 0.2] [default: configured step]")
	probOut.register(probCmd)

	var (
		satOut       sweepOutput
		formulasFile string
	)
	satCmd := &cobra.Command{
		Use:   "sat [formula...]",
		Short: "Time SAT solving via the clique reduction for a list of formulas",
		Long: `Run the SAT-CLIQUE algorithm once per formula and record two aligned series
keyed by formula index: total duration and the SAT to CLIQUE transformation
duration. A formula whose run fails is missing in both series.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formulas := append([]string(nil), args...)
			if formulasFile != "" {
				fromFile, err := plan.ReadFormulas(formulasFile)
				if err != nil {
					return err
				}
				formulas = append(formulas, fromFile...)
			}
			if len(formulas) == 0 {
				return fmt.Errorf("no formulas given; pass them as arguments or with --formulas-file")
			}

			engine, path, err := app.prepareSweep()
			if err != nil {
				return err
			}
			name := satOut.name
			if name == "" {
				name = string(runner.AlgorithmSatClique)
			}

			start := time.Now()
			total, transform, err := engine.SweepSatBatch(cmd.Context(), formulas)
			if err != nil {
				return err
			}
			total.Name = name
			transform.Name = name + plan.TransformSuffix
			params := map[string]string{
				"kind":     plan.KindSat,
				"formulas": strconv.Itoa(len(formulas)),
			}
			return app.finishSweep(cmd, satOut, path, time.Since(start), params, sweep.FieldIndex, total, transform)
		},
	}
	satCmd.Flags().StringVarP(&formulasFile, "formulas-file", "f", "", "File with one formula per line")
	satOut.register(satCmd)

	sweepCmd.AddCommand(sizeCmd, probCmd, satCmd)
	rootCmd.AddCommand(sweepCmd)
}

// algorithmFlagUsage lists the algorithms a graph sweep accepts.
func algorithmFlagUsage() string {
	var names []string
	for _, a := range runner.Algorithms() {
		if a.Iterative() {
			names = append(names, string(a))
		}
	}
	return "Algorithm tag (" + strings.Join(names, "|") + ")"
}

// prepareSweep creates the output directory and locates the runner before
// any sweep starts.
func (app *App) prepareSweep() (*sweep.Engine, string, error) {
	if err := results.EnsureOutputDirectory(app.Config.ResolvedDataDir()); err != nil {
		return nil, "", err
	}
	return app.engine()
}

func (app *App) finishSweep(cmd *cobra.Command, out sweepOutput, runnerPath string, elapsed time.Duration, params map[string]string, xField string, tables ...*sweep.SweepTable) error {
	// Record results
	if !out.noRecord {
		rec := app.recorder()
		for _, t := range tables {
			if _, err := rec.Record(t, results.RunOptions{Elapsed: elapsed, Parameters: params, Runner: runnerPath}); err != nil {
				return err
			}
		}
	}

	app.printSummary(cmd.OutOrStdout(), tables...)

	// Draw chart
	if !out.chart && !out.show {
		return nil
	}
	series := make([]report.Series, 0, len(tables))
	for _, t := range tables {
		series = append(series, report.Series{Name: t.Name, Table: t})
	}
	req := report.ChartRequest{
		Title:  tables[0].Name,
		Series: series,
		XField: xField,
		YField: sweep.FieldDuration,
	}
	if !out.show {
		dir := app.Config.ImageDir()
		if err := results.EnsureOutputDirectory(dir); err != nil {
			return err
		}
		req.OutputPath = filepath.Join(dir, results.SanitizeName(tables[0].Name)+"."+app.Config.Format)
	}
	return app.render(cmd.Context(), req)
}

func (app *App) render(ctx context.Context, req report.ChartRequest) error {
	return app.renderer().RenderSeries(ctx, req)
}
