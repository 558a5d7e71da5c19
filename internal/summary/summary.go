// Package summary formats sweep tables as markdown and renders them for the terminal.
package summary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"graphbench/internal/sweep"
)

// DefaultWordWrap is the terminal width used when none is given.
const DefaultWordWrap = 100

// Markdown builds one markdown section per table.
func Markdown(tables ...*sweep.SweepTable) string {
	var sb strings.Builder
	for i, t := range tables {
		if t == nil {
			continue
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		writeTable(&sb, t)
	}
	return sb.String()
}

func writeTable(sb *strings.Builder, t *sweep.SweepTable) {
	fmt.Fprintf(sb, "## %s\n\n", t.Name)
	if t.Len() == 0 {
		sb.WriteString("_no points_\n")
		return
	}

	variable := string(t.Variable)
	fmt.Fprintf(sb, "| %s | mean duration (ms) | median | stddev | trials | rejected |\n", variable)
	sb.WriteString("|---:|---:|---:|---:|---:|---:|\n")
	for i, p := range t.Points {
		mean, median, stddev := "missing", "-", "-"
		if !p.Missing {
			mean = formatMs(p.Mean)
			median = formatMs(p.Median)
			stddev = formatMs(p.StdDev)
		}
		fmt.Fprintf(sb, "| %s | %s | %s | %s | %d | %d |\n", formatX(t, i), mean, median, stddev, p.Trials, p.Rejected)
	}

	if missing := t.MissingCount(); missing > 0 {
		fmt.Fprintf(sb, "\n%d of %d points missing.\n", missing, t.Len())
	}
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatX(t *sweep.SweepTable, i int) string {
	if t.Variable == sweep.VariableProbability {
		return strconv.FormatFloat(t.X(i), 'f', -1, 64)
	}
	return strconv.Itoa(int(t.X(i)))
}

// Renderer renders markdown to styled terminal output.
type Renderer struct {
	renderer *glamour.TermRenderer
	plain    bool
}

// NewRenderer creates a renderer. Plain terminals, or plain=true, get the notty
// style and output with escape sequences stripped.
func NewRenderer(width int, plain bool) (*Renderer, error) {
	if width <= 0 {
		width = DefaultWordWrap
	}

	plain = plain || lipgloss.ColorProfile() == termenv.Ascii
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("notty")
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Renderer{renderer: r, plain: plain}, nil
}

// Render renders tables to terminal output.
func (r *Renderer) Render(tables ...*sweep.SweepTable) (string, error) {
	md := Markdown(tables...)
	if strings.TrimSpace(md) == "" {
		return "", nil
	}
	out, err := r.renderer.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	if r.plain {
		out = ansi.Strip(out)
	}
	return out, nil
}
