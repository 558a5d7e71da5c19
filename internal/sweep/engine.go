// Package sweep runs the simulator across a swept parameter and reduces each
// batch of trials to a mean-duration curve.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"graphbench/internal/logger"
	"graphbench/internal/runner"
)

// Probability sweep granularity.
const (
	DefaultStep  = 0.05
	MaxStep      = 0.2
	DefaultStart = 0.0

	// probabilityEpsilon absorbs floating-point error when comparing against 1.0.
	probabilityEpsilon = 1e-9
)

// AlgorithmRunner is the simulator as seen by the engine. *runner.Runner satisfies it.
type AlgorithmRunner interface {
	RunIterations(ctx context.Context, req runner.Request) (*runner.IterativeOutput, error)
	RunSat(ctx context.Context, formula string) (*runner.SatOutput, error)
}

// Engine drives sweeps sequentially, one blocking invocation at a time.
type Engine struct {
	runner AlgorithmRunner
	logger *log.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(r AlgorithmRunner, l *log.Logger) *Engine {
	if l == nil {
		l = logger.Discard()
	}
	return &Engine{runner: r, logger: l}
}

// RunOnce requests iterations trials in one invocation and returns the accepted ones.
// Rejected trials are logged and excluded. Invocation failures are returned.
func (e *Engine) RunOnce(ctx context.Context, size int, probability float64, algorithm runner.Algorithm, iterations int) (ObservationBatch, error) {
	if err := validateRun(size, probability, algorithm, iterations); err != nil {
		return ObservationBatch{}, err
	}

	req := runner.Request{
		Size:        size,
		Probability: probability,
		Algorithm:   algorithm,
		Iterations:  iterations,
	}
	out, err := e.runner.RunIterations(ctx, req)
	if err != nil {
		return ObservationBatch{}, fmt.Errorf("run n=%d p=%g algorithm=%s: %w", size, probability, algorithm, err)
	}

	batch := ObservationBatch{
		Size:        size,
		Probability: probability,
		Algorithm:   algorithm,
		Requested:   iterations,
	}
	for i, rec := range out.Tests {
		if !rec.IsAccepted() {
			batch.Rejected++
			e.logger.Warn("Trial not accepted", "n", size, "p", probability, "algorithm", algorithm, "trial", i)
			continue
		}
		if rec.Duration == nil || *rec.Duration < 0 || math.IsNaN(*rec.Duration) {
			batch.Rejected++
			e.logger.Warn("Trial has no usable duration", "n", size, "p", probability, "algorithm", algorithm, "trial", i)
			continue
		}
		batch.Observations = append(batch.Observations, Observation{
			Size:        size,
			Probability: probability,
			Algorithm:   algorithm,
			Duration:    *rec.Duration,
			Result:      rec.Result,
		})
	}

	if len(out.Tests) != iterations {
		e.logger.Warn("Runner returned unexpected trial count", "requested", iterations, "returned", len(out.Tests))
	}

	return batch, nil
}

// SweepBySize runs one batch per size in [nMin, nMax] and returns the mean curve.
// Empty batches become missing points; invocation errors abort the sweep.
func (e *Engine) SweepBySize(ctx context.Context, nMin, nMax int, probability float64, algorithm runner.Algorithm, trials int) (*SweepTable, error) {
	if nMin < 0 || nMax < nMin {
		return nil, fmt.Errorf("%w: size range [%d, %d]", ErrInvalidParameter, nMin, nMax)
	}
	if err := validateRun(nMin, probability, algorithm, trials); err != nil {
		return nil, err
	}

	table := NewTable(fmt.Sprintf("%s p=%g", algorithm, probability), VariableSize, algorithm)
	e.logger.Info("Starting size sweep", "algorithm", algorithm, "n_min", nMin, "n_max", nMax, "p", probability, "trials", trials)

	for n := nMin; n <= nMax; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := e.RunOnce(ctx, n, probability, algorithm, trials)
		if err != nil {
			return nil, err
		}
		point := e.reduce(batch)
		table.Append(point)
	}

	return table, nil
}

// SweepByProbability runs one batch per probability from start to 1.0 inclusive
// in increments of step, at a fixed graph size.
func (e *Engine) SweepByProbability(ctx context.Context, size int, algorithm runner.Algorithm, trials int, start, step float64) (*SweepTable, error) {
	values, err := ProbabilityRange(start, step)
	if err != nil {
		return nil, err
	}
	if err := validateRun(size, start, algorithm, trials); err != nil {
		return nil, err
	}

	table := NewTable(fmt.Sprintf("%s n=%d", algorithm, size), VariableProbability, algorithm)
	e.logger.Info("Starting probability sweep", "algorithm", algorithm, "n", size, "start", start, "step", step, "points", len(values))

	for _, p := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := e.RunOnce(ctx, size, p, algorithm, trials)
		if err != nil {
			return nil, err
		}
		table.Append(e.reduce(batch))
	}

	return table, nil
}

// SweepSatBatch runs SAT-CLIQUE once per formula and returns the total and
// transformation-only duration curves keyed by formula index. Both tables always
// have len(formulas) points; a formula whose run is rejected or exits non-zero
// is missing in both.
func (e *Engine) SweepSatBatch(ctx context.Context, formulas []string) (total, transform *SweepTable, err error) {
	total = NewTable("SAT-CLIQUE total", VariableIndex, runner.AlgorithmSatClique)
	transform = NewTable("SAT-CLIQUE transformation", VariableIndex, runner.AlgorithmSatClique)
	e.logger.Info("Starting SAT batch", "formulas", len(formulas))

	for i, formula := range formulas {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		totalPoint := SweepPoint{Index: i}
		transformPoint := SweepPoint{Index: i}

		out, runErr := e.runner.RunSat(ctx, formula)
		switch {
		case runErr != nil && isFormulaFailure(runErr):
			e.logger.Error("SAT formula run failed", "index", i, "formula", formula, "error", runErr)
			markMissing(&totalPoint, &transformPoint)
		case runErr != nil:
			return nil, nil, fmt.Errorf("sat formula %d %q: %w", i, formula, runErr)
		case !out.IsAccepted():
			e.logger.Warn("SAT formula not accepted", "index", i, "formula", formula)
			markMissing(&totalPoint, &transformPoint)
		default:
			totalPoint.Mean = *out.Duration
			totalPoint.Trials = 1
			transformPoint.Mean = *out.TransformDuration
			transformPoint.Trials = 1
			e.logger.Info("SAT formula done", "index", i, "duration", totalPoint.Mean, "transform", transformPoint.Mean)
		}

		total.Append(totalPoint)
		transform.Append(transformPoint)
	}

	return total, transform, nil
}

func (e *Engine) reduce(batch ObservationBatch) SweepPoint {
	point := pointFromBatch(batch)
	if point.Missing {
		e.logger.Error("Every trial rejected, point recorded as missing",
			"n", batch.Size, "p", batch.Probability, "algorithm", batch.Algorithm, "requested", batch.Requested)
		return point
	}
	e.logger.Info("Sweep point", "n", batch.Size, "p", batch.Probability, "mean", point.Mean,
		"median", point.Median, "stddev", point.StdDev, "trials", point.Trials)
	return point
}

// ProbabilityRange lists start, start+step, ... up to and including 1.0.
// Values are computed by multiplication rather than accumulation and the last
// value is exactly 1.0.
func ProbabilityRange(start, step float64) ([]float64, error) {
	if !(step > 0) || step > MaxStep+probabilityEpsilon {
		return nil, fmt.Errorf("%w: step %g outside (0, %g]", ErrInvalidParameter, step, MaxStep)
	}
	if start < 0 || start > 1 || math.IsNaN(start) {
		return nil, fmt.Errorf("%w: start probability %g outside [0, 1]", ErrInvalidParameter, start)
	}

	var values []float64
	for i := 0; ; i++ {
		p := roundProbability(start + float64(i)*step)
		if p >= 1-probabilityEpsilon {
			break
		}
		values = append(values, p)
	}
	return append(values, 1.0), nil
}

func roundProbability(p float64) float64 {
	return math.Round(p*1e9) / 1e9
}

func validateRun(size int, probability float64, algorithm runner.Algorithm, iterations int) error {
	if size < 0 {
		return fmt.Errorf("%w: size %d is negative", ErrInvalidParameter, size)
	}
	if probability < 0 || probability > 1 || math.IsNaN(probability) {
		return fmt.Errorf("%w: probability %g outside [0, 1]", ErrInvalidParameter, probability)
	}
	if _, err := runner.ParseAlgorithm(string(algorithm)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if !algorithm.Iterative() {
		return fmt.Errorf("%w: %s takes formulas, use SweepSatBatch", ErrInvalidParameter, algorithm)
	}
	if iterations < 1 {
		return fmt.Errorf("%w: iterations %d must be positive", ErrInvalidParameter, iterations)
	}
	return nil
}

// isFormulaFailure reports errors that concern a single formula rather than the runner as a whole.
func isFormulaFailure(err error) bool {
	return errors.Is(err, runner.ErrRunnerFailed)
}

func markMissing(points ...*SweepPoint) {
	for _, p := range points {
		p.Missing = true
	}
}
