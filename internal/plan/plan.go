// Package plan loads benchmark plans: a YAML list of sweeps to run and charts
// to draw from their results.
package plan

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"graphbench/internal/runner"
	"graphbench/internal/sweep"
)

// Sweep kinds.
const (
	KindSize        = "size"
	KindProbability = "probability"
	KindSat         = "sat"
)

// TransformSuffix names the transformation-time series of a SAT sweep.
const TransformSuffix = ".transform"

// ErrInvalidPlan is wrapped by every validation failure.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan is a benchmark plan file.
type Plan struct {
	Name   string      `yaml:"name"`
	Runner string      `yaml:"runner,omitempty"`
	Sweeps []SweepSpec `yaml:"sweeps"`
	Charts []ChartSpec `yaml:"charts,omitempty"`

	// dir is the directory the plan was loaded from; relative formula files
	// resolve against it.
	dir string
}

// SweepSpec describes one sweep.
type SweepSpec struct {
	Name         string   `yaml:"name"`
	Kind         string   `yaml:"kind"`
	Algorithm    string   `yaml:"algorithm,omitempty"`
	NMin         int      `yaml:"n_min,omitempty"`
	NMax         int      `yaml:"n_max,omitempty"`
	Size         int      `yaml:"n,omitempty"`
	Probability  float64  `yaml:"p,omitempty"`
	Trials       int      `yaml:"trials,omitempty"`
	Start        float64  `yaml:"start,omitempty"`
	Step         float64  `yaml:"step,omitempty"`
	Formulas     []string `yaml:"formulas,omitempty"`
	FormulasFile string   `yaml:"formulas_file,omitempty"`
}

// ChartSpec describes one chart over recorded sweeps.
type ChartSpec struct {
	Name   string   `yaml:"name"`
	Title  string   `yaml:"title,omitempty"`
	X      string   `yaml:"x"`
	Y      string   `yaml:"y,omitempty"`
	Series []string `yaml:"series"`
	Output string   `yaml:"output,omitempty"`
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.dir = filepath.Dir(path)
	return p, nil
}

// Parse decodes and validates a plan document. Unknown keys are rejected.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Plan) applyDefaults() {
	for i := range p.Sweeps {
		s := &p.Sweeps[i]
		s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
		if s.Kind == KindProbability && s.Step == 0 {
			s.Step = sweep.DefaultStep
		}
		if s.Kind == KindSat && s.Algorithm == "" {
			s.Algorithm = string(runner.AlgorithmSatClique)
		}
	}
	for i := range p.Charts {
		c := &p.Charts[i]
		if c.Y == "" {
			c.Y = sweep.FieldDuration
		}
		if c.Title == "" {
			c.Title = c.Name
		}
	}
}

// Validate checks names, parameter ranges and chart references.
func (p *Plan) Validate() error {
	if len(p.Sweeps) == 0 {
		return fmt.Errorf("%w: no sweeps defined", ErrInvalidPlan)
	}

	series := make(map[string]bool)
	for i, s := range p.Sweeps {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: sweep %d has no name", ErrInvalidPlan, i+1)
		}
		if err := s.validate(); err != nil {
			return fmt.Errorf("%w: sweep %q: %v", ErrInvalidPlan, s.Name, err)
		}
		// A SAT sweep also claims <name>.transform, which may collide with
		// an earlier or later sweep name.
		names := s.SeriesNames()
		for _, name := range names {
			if series[name] {
				return fmt.Errorf("%w: duplicate series name %q", ErrInvalidPlan, name)
			}
		}
		for _, name := range names {
			series[name] = true
		}
	}

	charts := make(map[string]bool)
	for i, c := range p.Charts {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: chart %d has no name", ErrInvalidPlan, i+1)
		}
		if charts[c.Name] {
			return fmt.Errorf("%w: duplicate chart name %q", ErrInvalidPlan, c.Name)
		}
		charts[c.Name] = true
		if c.X == "" {
			return fmt.Errorf("%w: chart %q has no x field", ErrInvalidPlan, c.Name)
		}
		if len(c.Series) == 0 {
			return fmt.Errorf("%w: chart %q has no series", ErrInvalidPlan, c.Name)
		}
		seen := make(map[string]bool)
		for _, name := range c.Series {
			if !series[name] {
				return fmt.Errorf("%w: chart %q references unknown series %q", ErrInvalidPlan, c.Name, name)
			}
			if seen[name] {
				return fmt.Errorf("%w: chart %q lists series %q twice", ErrInvalidPlan, c.Name, name)
			}
			seen[name] = true
		}
	}
	return nil
}

// SeriesNames returns the table names the sweep produces.
func (s SweepSpec) SeriesNames() []string {
	if s.Kind == KindSat {
		return []string{s.Name, s.Name + TransformSuffix}
	}
	return []string{s.Name}
}

func (s SweepSpec) validate() error {
	switch s.Kind {
	case KindSize:
		if _, err := s.iterativeAlgorithm(); err != nil {
			return err
		}
		if s.NMin < 0 || s.NMax < s.NMin {
			return fmt.Errorf("size range [%d, %d] is invalid", s.NMin, s.NMax)
		}
		if s.Probability < 0 || s.Probability > 1 {
			return fmt.Errorf("probability %g is outside [0, 1]", s.Probability)
		}
		if s.Trials < 1 {
			return fmt.Errorf("trials must be at least 1")
		}
	case KindProbability:
		if _, err := s.iterativeAlgorithm(); err != nil {
			return err
		}
		if s.Size < 0 {
			return fmt.Errorf("graph size must not be negative")
		}
		if s.Trials < 1 {
			return fmt.Errorf("trials must be at least 1")
		}
		if _, err := sweep.ProbabilityRange(s.Start, s.Step); err != nil {
			return err
		}
	case KindSat:
		if len(s.Formulas) == 0 && s.FormulasFile == "" {
			return fmt.Errorf("no formulas or formulas_file given")
		}
	default:
		return fmt.Errorf("unknown kind %q (want %s, %s or %s)", s.Kind, KindSize, KindProbability, KindSat)
	}
	return nil
}

func (s SweepSpec) iterativeAlgorithm() (runner.Algorithm, error) {
	alg, err := runner.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return "", err
	}
	if !alg.Iterative() {
		return "", fmt.Errorf("algorithm %s cannot be used in a %s sweep", alg, s.Kind)
	}
	return alg, nil
}

// ResolveFormulas returns the inline formulas followed by those read from the
// formulas file, one per non-empty line; lines starting with '#' are skipped.
func (p *Plan) ResolveFormulas(s SweepSpec) ([]string, error) {
	formulas := append([]string(nil), s.Formulas...)
	if s.FormulasFile == "" {
		return formulas, nil
	}

	path := s.FormulasFile
	if !filepath.IsAbs(path) && p.dir != "" {
		path = filepath.Join(p.dir, path)
	}
	fromFile, err := ReadFormulas(path)
	if err != nil {
		return nil, err
	}
	return append(formulas, fromFile...), nil
}

// ReadFormulas reads one formula per non-empty, non-comment line.
func ReadFormulas(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open formulas file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var formulas []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		formulas = append(formulas, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read formulas file: %w", err)
	}
	return formulas, nil
}
