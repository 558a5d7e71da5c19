// Package shared holds the graphbench configuration.
package shared

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"graphbench/internal/results"
	"graphbench/internal/runner"
	"graphbench/internal/sweep"
)

// EnvPrefix prefixes every environment override, e.g. GRAPHBENCH_RUNNER.
const EnvPrefix = "GRAPHBENCH"

// Configuration keys shared by flags, environment and config files.
const (
	KeyRunner   = "runner"
	KeyDataDir  = "data-dir"
	KeyRoot     = "root"
	KeyLogLevel = "log-level"
	KeyLogFile  = "log-file"
	KeyTimeout  = "timeout"
	KeyStep     = "step"
	KeyFormat   = "format"
	KeyWidth    = "width"
	KeyHeight   = "height"
	KeyQuiet    = "quiet"
)

// Default configuration values
const (
	DefaultRoot     = "."
	DefaultLogLevel = "info"
	DefaultFormat   = "svg"
	DefaultWidth    = 16.0 // centimetres
	DefaultHeight   = 10.0
	DefaultEnvFile  = ".env"
)

// Config holds the resolved configuration of one graphbench invocation.
type Config struct {
	Runner   string
	Root     string
	DataDir  string
	LogLevel string
	LogFile  string
	Timeout  time.Duration
	Step     float64
	Format   string
	Width    float64
	Height   float64
	Quiet    bool
}

// NewConfig creates a configuration with default values.
func NewConfig() *Config {
	return &Config{
		Runner:   runner.DefaultCommand,
		Root:     DefaultRoot,
		LogLevel: DefaultLogLevel,
		Timeout:  runner.DefaultTimeout,
		Step:     sweep.DefaultStep,
		Format:   DefaultFormat,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
	}
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	d := NewConfig()
	v.SetDefault(KeyRunner, d.Runner)
	v.SetDefault(KeyRoot, d.Root)
	v.SetDefault(KeyDataDir, "")
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyStep, d.Step)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyWidth, d.Width)
	v.SetDefault(KeyHeight, d.Height)
	v.SetDefault(KeyQuiet, false)
}

// BindEnv makes GRAPHBENCH_<KEY> override every key, with dashes mapped to
// underscores (GRAPHBENCH_DATA_DIR).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads variables from an env file into the process environment
// without overriding existing ones. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ReadConfigFile merges a YAML (or any viper-supported) config file into v.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Runner:   v.GetString(KeyRunner),
		Root:     v.GetString(KeyRoot),
		DataDir:  v.GetString(KeyDataDir),
		LogLevel: v.GetString(KeyLogLevel),
		LogFile:  v.GetString(KeyLogFile),
		Timeout:  v.GetDuration(KeyTimeout),
		Step:     v.GetFloat64(KeyStep),
		Format:   strings.TrimPrefix(strings.ToLower(v.GetString(KeyFormat)), "."),
		Width:    v.GetFloat64(KeyWidth),
		Height:   v.GetFloat64(KeyHeight),
		Quiet:    v.GetBool(KeyQuiet),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Runner) == "" {
		return fmt.Errorf("runner must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %s must not be negative", c.Timeout)
	}
	if !(c.Step > 0) || c.Step > sweep.MaxStep {
		return fmt.Errorf("step %g outside (0, %g]", c.Step, sweep.MaxStep)
	}
	switch c.Format {
	case "svg", "png", "pdf", "jpg", "jpeg", "eps", "tif", "tiff":
	default:
		return fmt.Errorf("unsupported image format %q", c.Format)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("chart size %gx%g must be positive", c.Width, c.Height)
	}
	return nil
}

// ResolvedDataDir returns the data directory, <root>/data unless set explicitly.
func (c *Config) ResolvedDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Join(c.Root, results.DataDirName)
}

// ImageDir returns where charts are written.
func (c *Config) ImageDir() string {
	return results.ResolveImageDir(c.Root)
}
