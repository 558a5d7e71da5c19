// Package cli provides command-line interface setup for graphbench.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/plot/vg"

	"graphbench/cmd/graphbench/shared"
	"graphbench/internal/logger"
	"graphbench/internal/report"
	"graphbench/internal/results"
	"graphbench/internal/runner"
	"graphbench/internal/summary"
	"graphbench/internal/sweep"
)

// RunnerFactory locates the algorithm runner and returns it with its resolved path.
type RunnerFactory func(command string, timeout time.Duration, l *log.Logger) (sweep.AlgorithmRunner, string, error)

// App represents the graphbench CLI application
type App struct {
	Config *shared.Config
	Logger *log.Logger

	// NewRunner and Viewer are replaceable for tests.
	NewRunner RunnerFactory
	Viewer    report.Viewer

	viper      *viper.Viper
	configFile string
	envFile    string
	logCloser  io.Closer
}

// NewApp creates a new graphbench CLI application
func NewApp() *App {
	return &App{
		Config:    shared.NewConfig(),
		Logger:    logger.Discard(),
		NewRunner: defaultRunnerFactory,
		Viewer:    report.NewSystemViewer(),
		viper:     viper.New(),
	}
}

func defaultRunnerFactory(command string, timeout time.Duration, l *log.Logger) (sweep.AlgorithmRunner, string, error) {
	r, err := runner.New(command, runner.WithTimeout(timeout), runner.WithLogger(l))
	if err != nil {
		return nil, "", err
	}
	return r, r.Path(), nil
}

// CreateRootCommand creates and configures the root command
func (app *App) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "graphbench",
		Short: "Benchmark graph algorithms across parameter sweeps",
		Long: `graphbench drives an external graph algorithm runner over ranges of graph
sizes, edge probabilities and SAT formulas, averages the reported durations,
records the results as CSV and draws comparison charts.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  app.initialize,
		PersistentPostRunE: app.shutdown,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "Config file (YAML)")
	flags.StringVar(&app.envFile, "env-file", shared.DefaultEnvFile, "Env file loaded before configuration is resolved")
	flags.String(shared.KeyRunner, runner.DefaultCommand, "Algorithm runner (path, or name tried as ./bin/<name>, bin/<name>, then PATH)")
	flags.String(shared.KeyRoot, shared.DefaultRoot, "Project root; charts go to <root>/report/img or <root>/data/img")
	flags.String(shared.KeyDataDir, "", "Directory for recorded runs [default: <root>/data]")
	flags.String(shared.KeyLogLevel, shared.DefaultLogLevel, "Set log level (debug|info|warn|error)")
	flags.String(shared.KeyLogFile, "", "Write logs to file instead of stderr")
	flags.Duration(shared.KeyTimeout, runner.DefaultTimeout, "Per-invocation runner timeout (0 disables)")
	flags.String(shared.KeyFormat, shared.DefaultFormat, "Chart image format (svg|png|pdf|jpg|eps|tif)")
	flags.Float64(shared.KeyWidth, shared.DefaultWidth, "Chart width in centimetres")
	flags.Float64(shared.KeyHeight, shared.DefaultHeight, "Chart height in centimetres")
	flags.BoolP(shared.KeyQuiet, "q", false, "Do not print result summaries")

	// step is configured through GRAPHBENCH_STEP or the config file; the
	// probability command has its own --step flag.
	for _, key := range []string{
		shared.KeyRunner, shared.KeyRoot, shared.KeyDataDir, shared.KeyLogLevel, shared.KeyLogFile,
		shared.KeyTimeout, shared.KeyFormat, shared.KeyWidth, shared.KeyHeight, shared.KeyQuiet,
	} {
		// Lookup cannot fail for flags registered above.
		_ = app.viper.BindPFlag(key, flags.Lookup(key))
	}

	app.addSweepCommands(rootCmd)
	app.addPlotCommands(rootCmd)
	app.addPlanCommand(rootCmd)
	app.addCompareCommand(rootCmd)
	app.addVersionCommand(rootCmd)

	return rootCmd
}

// initialize resolves configuration and builds the logger before any command runs.
func (app *App) initialize(cmd *cobra.Command, _ []string) error {
	if err := shared.LoadDotEnv(app.envFile); err != nil {
		return err
	}
	shared.SetDefaults(app.viper)
	shared.BindEnv(app.viper)
	if err := shared.ReadConfigFile(app.viper, app.configFile); err != nil {
		return err
	}

	cfg, err := shared.Load(app.viper)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	app.Config = cfg

	l, closer, err := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	app.Logger = l
	app.logCloser = closer
	app.Logger.Debug("Configuration loaded", "runner", cfg.Runner, "root", cfg.Root, "data", cfg.ResolvedDataDir())
	return nil
}

func (app *App) shutdown(_ *cobra.Command, _ []string) error {
	if app.logCloser == nil {
		return nil
	}
	err := app.logCloser.Close()
	app.logCloser = nil
	return err
}

// engine locates the runner, failing before any sweep starts when it is unavailable.
func (app *App) engine() (*sweep.Engine, string, error) {
	r, path, err := app.NewRunner(app.Config.Runner, app.Config.Timeout, logger.Component(app.Logger, "runner"))
	if err != nil {
		return nil, "", err
	}
	app.Logger.Debug("Using runner", "path", path)
	return sweep.NewEngine(r, logger.Component(app.Logger, "sweep")), path, nil
}

func (app *App) recorder() *results.Recorder {
	return results.NewRecorder(app.Config.ResolvedDataDir(), logger.Component(app.Logger, "results"))
}

func (app *App) renderer() *report.Renderer {
	return report.NewRenderer(
		report.WithLogger(logger.Component(app.Logger, "report")),
		report.WithViewer(app.Viewer),
		report.WithSize(vg.Length(app.Config.Width)*vg.Centimeter, vg.Length(app.Config.Height)*vg.Centimeter),
	)
}

// printSummary writes a rendered summary of tables unless quiet is set.
func (app *App) printSummary(w io.Writer, tables ...*sweep.SweepTable) {
	if app.Config.Quiet {
		return
	}
	plain := termenv.NewOutput(w).EnvColorProfile() == termenv.Ascii
	r, err := summary.NewRenderer(summary.DefaultWordWrap, plain)
	if err != nil {
		app.Logger.Warn("Cannot render summary", "error", err)
		fmt.Fprint(w, summary.Markdown(tables...))
		return
	}
	out, err := r.Render(tables...)
	if err != nil {
		app.Logger.Warn("Cannot render summary", "error", err)
		fmt.Fprint(w, summary.Markdown(tables...))
		return
	}
	fmt.Fprint(w, out)
}
