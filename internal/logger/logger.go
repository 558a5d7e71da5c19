// Package logger builds the structured loggers used by graphbench.
// Loggers are constructed explicitly and handed to each component; nothing here
// keeps process-wide state.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Options configures a logger instance.
type Options struct {
	// Level is one of debug, info, warn, error, fatal. Empty or unknown falls back to info.
	Level string
	// File redirects output to the given path (appended). Empty means Writer or stderr.
	File string
	// Writer overrides the output destination when File is empty.
	Writer io.Writer
	// Prefix names the component, e.g. "sweep" or "report".
	Prefix string
	// Plain disables the styled level badges.
	Plain bool
}

// New creates a logger from opts. The returned closer releases the log file, if any,
// and is never nil.
func New(opts Options) (*log.Logger, io.Closer, error) {
	var output io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, err
		}
		output = file
		closer = file
	} else if opts.Writer != nil {
		output = opts.Writer
	}

	l := log.NewWithOptions(output, log.Options{
		Prefix: prefix(opts.Prefix),
	})
	l.SetTimeFormat("")
	l.SetLevel(ParseLevel(opts.Level))
	if !opts.Plain {
		l.SetStyles(levelStyles())
	}

	return l, closer, nil
}

// ParseLevel converts a level name into a log.Level. Unknown names map to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Component derives a child logger for a named component sharing the parent's
// output and level.
func Component(parent *log.Logger, name string) *log.Logger {
	if parent == nil {
		return Discard()
	}
	return parent.WithPrefix(name)
}

// Discard returns a logger that drops everything. Used as the default when a
// component is built without one.
func Discard() *log.Logger {
	l := log.New(io.Discard)
	l.SetLevel(log.FatalLevel)
	return l
}

func prefix(name string) string {
	if name == "" {
		return ""
	}
	return name + " "
}

// levelStyles renders levels as coloured badges.
func levelStyles() *log.Styles {
	styles := log.DefaultStyles()

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("33")).
		Foreground(lipgloss.Color("15"))

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("196")).
		Foreground(lipgloss.Color("15"))

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("240")).
		Foreground(lipgloss.Color("15"))

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("214")).
		Foreground(lipgloss.Color("15"))

	styles.Levels[log.FatalLevel] = lipgloss.NewStyle().
		SetString("FATAL").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("88")).
		Foreground(lipgloss.Color("15"))

	styles.Keys["algorithm"] = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	styles.Keys["n"] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styles.Keys["p"] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styles.Keys["mean"] = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styles.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	return styles
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
