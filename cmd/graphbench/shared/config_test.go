package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphbench/internal/runner"
	"graphbench/internal/sweep"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, runner.DefaultCommand, cfg.Runner)
	assert.Equal(t, runner.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, sweep.DefaultStep, cfg.Step)
	assert.Equal(t, "svg", cfg.Format)
	assert.Equal(t, filepath.Join(".", "data"), cfg.ResolvedDataDir())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GRAPHBENCH_RUNNER", "/opt/graph")
	t.Setenv("GRAPHBENCH_DATA_DIR", "/tmp/bench")
	t.Setenv("GRAPHBENCH_TIMEOUT", "30s")

	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, "/opt/graph", cfg.Runner)
	assert.Equal(t, "/tmp/bench", cfg.ResolvedDataDir())
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("step: 0.1\nformat: .PNG\nquiet: true\n"), 0644))

	v := newViper()
	require.NoError(t, ReadConfigFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.Step)
	assert.Equal(t, "png", cfg.Format)
	assert.True(t, cfg.Quiet)

	assert.Error(t, ReadConfigFile(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty runner", func(c *Config) { c.Runner = " " }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"zero step", func(c *Config) { c.Step = 0 }},
		{"step too large", func(c *Config) { c.Step = 0.3 }},
		{"bad format", func(c *Config) { c.Format = "gif" }},
		{"zero width", func(c *Config) { c.Width = 0 }},
	}

	assert.NoError(t, NewConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "absent.env")))
	assert.NoError(t, LoadDotEnv(""))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GRAPHBENCH_TEST_DOTENV=from-file\n"), 0644))
	t.Setenv("GRAPHBENCH_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("GRAPHBENCH_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("GRAPHBENCH_TEST_DOTENV"))
}
