package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"graphbench/internal/logger"
	"graphbench/internal/sweep"
)

// RunMetadata describes one recorded sweep table.
type RunMetadata struct {
	SweepName   string            `json:"sweep_name"`
	RunID       string            `json:"run_id"`
	Timestamp   time.Time         `json:"timestamp"`
	Elapsed     time.Duration     `json:"elapsed"`
	Algorithm   string            `json:"algorithm,omitempty"`
	Variable    string            `json:"variable"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Points      int               `json:"points"`
	Missing     int               `json:"missing"`
	Runner      string            `json:"runner,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	TableFile   string            `json:"table_file"`
	PointStats  []PointStats      `json:"point_stats,omitempty"`
}

// PointStats keeps the duration spread of one point, which the CSV table omits.
type PointStats struct {
	X        float64 `json:"x"`
	Missing  bool    `json:"missing,omitempty"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"stddev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Trials   int     `json:"trials"`
	Rejected int     `json:"rejected"`
}

// RunSummary is the per-sweep history kept in summary.json.
type RunSummary struct {
	SweepName  string        `json:"sweep_name"`
	TotalRuns  int           `json:"total_runs"`
	LatestRun  time.Time     `json:"latest_run"`
	RunHistory []RunMetadata `json:"run_history"`
}

// Recording is what Record hands back.
type Recording struct {
	Metadata     RunMetadata
	TableFile    string
	MetadataFile string
}

// Recorder writes tables under <dataDir>/runs/<sweep>/<run-id>.csv with a
// metadata file alongside and a summary.json per sweep.
type Recorder struct {
	dataDir string
	logger  *log.Logger
	now     func() time.Time
	newID   func() string
}

// NewRecorder creates a recorder rooted at dataDir.
func NewRecorder(dataDir string, l *log.Logger) *Recorder {
	if l == nil {
		l = logger.Discard()
	}
	return &Recorder{
		dataDir: dataDir,
		logger:  l,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// RunOptions carries context for a recording that the table itself lacks.
type RunOptions struct {
	Elapsed    time.Duration
	Parameters map[string]string
	Runner     string
}

// Record persists t and updates the sweep's summary. A failure to update the
// summary is logged and does not fail the recording.
func (r *Recorder) Record(t *sweep.SweepTable, opts RunOptions) (*Recording, error) {
	sweepName := SanitizeName(t.Name)
	dir := filepath.Join(r.dataDir, RunsDirName, sweepName)
	if err := EnsureOutputDirectory(dir); err != nil {
		return nil, err
	}

	// Save table
	runID := r.newID()
	tableFile := filepath.Join(dir, runID+".csv")
	if err := WriteTableFile(tableFile, t); err != nil {
		return nil, err
	}

	// Create metadata
	meta := RunMetadata{
		SweepName:   sweepName,
		RunID:       runID,
		Timestamp:   r.now(),
		Elapsed:     opts.Elapsed,
		Algorithm:   string(t.Algorithm),
		Variable:    string(t.Variable),
		Parameters:  opts.Parameters,
		Points:      t.Len(),
		Missing:     t.MissingCount(),
		Runner:      opts.Runner,
		Environment: relevantEnvVars(),
		TableFile:   tableFile,
		PointStats:  pointStats(t),
	}

	metadataFile := filepath.Join(dir, runID+".metadata.json")
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(metadataFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	// Update summary
	if err := r.updateSummary(dir, meta); err != nil {
		r.logger.Warn("Failed to update run summary", "sweep", sweepName, "error", err)
	}

	r.logger.Info("Recorded sweep", "sweep", sweepName, "run", runID, "file", tableFile)
	return &Recording{Metadata: meta, TableFile: tableFile, MetadataFile: metadataFile}, nil
}

// LoadSummary reads the summary of a sweep. A sweep with no recordings yields an error.
func (r *Recorder) LoadSummary(sweepName string) (*RunSummary, error) {
	path := filepath.Join(r.dataDir, RunsDirName, SanitizeName(sweepName), "summary.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var summary RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary %s: %w", path, err)
	}
	return &summary, nil
}

// Latest returns the table file of the most recent run of a sweep.
func (r *Recorder) Latest(sweepName string) (string, error) {
	summary, err := r.LoadSummary(sweepName)
	if err != nil {
		return "", err
	}
	if len(summary.RunHistory) == 0 {
		return "", fmt.Errorf("no recorded runs for sweep %s", sweepName)
	}
	return summary.RunHistory[len(summary.RunHistory)-1].TableFile, nil
}

func (r *Recorder) updateSummary(dir string, meta RunMetadata) error {
	summaryFile := filepath.Join(dir, "summary.json")

	var summary RunSummary
	if data, err := os.ReadFile(summaryFile); err == nil {
		if err := json.Unmarshal(data, &summary); err != nil {
			return fmt.Errorf("failed to parse existing summary: %w", err)
		}
	} else {
		summary = RunSummary{SweepName: meta.SweepName}
	}

	summary.TotalRuns++
	summary.LatestRun = meta.Timestamp
	summary.RunHistory = append(summary.RunHistory, meta)

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	return os.WriteFile(summaryFile, data, 0644)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func pointStats(t *sweep.SweepTable) []PointStats {
	out := make([]PointStats, 0, t.Len())
	for i, p := range t.Points {
		ps := PointStats{X: t.X(i), Missing: p.Missing, Trials: p.Trials, Rejected: p.Rejected}
		if !p.Missing {
			ps.Mean, ps.Median, ps.StdDev, ps.Min, ps.Max = p.Mean, p.Median, p.StdDev, p.Min, p.Max
		}
		out = append(out, ps)
	}
	return out
}

// SanitizeName turns a table name into a file-system safe directory name.
func SanitizeName(name string) string {
	cleaned := strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(name), "_"), "_.")
	if cleaned == "" {
		return "sweep"
	}
	return cleaned
}

func relevantEnvVars() map[string]string {
	relevant := []string{"GRAPHBENCH_RUNNER", "GRAPHBENCH_TIMEOUT", "GOMAXPROCS"}

	env := make(map[string]string)
	for _, name := range relevant {
		if value := os.Getenv(name); value != "" {
			env[name] = value
		}
	}
	if len(env) == 0 {
		return nil
	}
	return env
}
