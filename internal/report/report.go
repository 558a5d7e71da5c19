// Package report renders sweep tables as overlaid line charts and either writes
// them to disk or shows them interactively.
package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"graphbench/internal/logger"
	"graphbench/internal/sweep"
)

// Default canvas size.
const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 10 * vg.Centimeter
)

var (
	// ErrDuplicateSeries is returned when two series share a name.
	ErrDuplicateSeries = errors.New("duplicate series name")
	// ErrUnknownField is returned for an axis field no table exposes.
	ErrUnknownField = errors.New("unknown axis field")
)

var knownFields = map[string]bool{
	sweep.FieldSize:        true,
	"size":                 true,
	sweep.FieldProbability: true,
	"probability":          true,
	sweep.FieldIndex:       true,
	sweep.FieldDuration:    true,
	"mean":                 true,
}

// Series is one named curve of a chart.
type Series struct {
	Name  string
	Table *sweep.SweepTable
}

// ChartRequest describes one chart. Series are drawn and coloured in slice order.
// An empty OutputPath shows the chart interactively.
type ChartRequest struct {
	Title      string
	Series     []Series
	XField     string
	YField     string
	OutputPath string
}

// Renderer turns chart requests into images. Each call is independent.
type Renderer struct {
	logger *log.Logger
	viewer Viewer
	width  vg.Length
	height vg.Length
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer's logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithViewer sets how charts without an output path are shown.
func WithViewer(v Viewer) Option {
	return func(r *Renderer) {
		if v != nil {
			r.viewer = v
		}
	}
}

// WithSize sets the canvas size.
func WithSize(width, height vg.Length) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// NewRenderer creates a renderer showing charts with the system viewer by default.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		logger: logger.Discard(),
		viewer: NewSystemViewer(),
		width:  DefaultWidth,
		height: DefaultHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderSeries draws every table as a marked line along (XField, YField).
// Missing points are left out of the line. With no drawable data a "no data"
// placeholder is produced instead.
func (r *Renderer) RenderSeries(ctx context.Context, req ChartRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = req.Title
	p.X.Label.Text = req.XField
	p.Y.Label.Text = req.YField
	p.X.Tick.Marker = TickerFor(req.XField)
	p.Y.Tick.Marker = TickerFor(req.YField)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, s := range req.Series {
		xys, skipped := collect(s.Table, req.XField, req.YField)
		if skipped > 0 {
			r.logger.Warn("Skipping points without a value", "series", s.Name, "skipped", skipped)
		}
		if len(xys) == 0 {
			r.logger.Warn("Series has no drawable points", "series", s.Name)
			continue
		}

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("series %s: %w", s.Name, err)
		}
		c := SeriesColor(i, len(req.Series))
		line.Color = c
		points.Color = c
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(2.5)

		p.Add(line, points)
		p.Legend.Add(s.Name, line, points)
		drawn++
	}

	if drawn == 0 {
		r.logger.Warn("No data to plot, writing placeholder chart", "x", req.XField, "y", req.YField)
		placeholder(p)
	}

	return r.output(ctx, p, req.OutputPath)
}

// collect gathers the drawable (x, y) pairs of a table in stored order.
func collect(t *sweep.SweepTable, xField, yField string) (plotter.XYs, int) {
	if t == nil {
		return nil, 0
	}
	xys := make(plotter.XYs, 0, len(t.Points))
	skipped := 0
	for _, pt := range t.Points {
		x, okX := pt.Value(xField)
		y, okY := pt.Value(yField)
		if !okX || !okY || math.IsInf(x, 0) || math.IsInf(y, 0) {
			skipped++
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
	}
	return xys, skipped
}

func validateRequest(req ChartRequest) error {
	for _, field := range []string{req.XField, req.YField} {
		if !knownFields[field] {
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}
	seen := make(map[string]bool, len(req.Series))
	for _, s := range req.Series {
		if seen[s.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateSeries, s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

func placeholder(p *plot.Plot) {
	if p.Title.Text == "" {
		p.Title.Text = "no data"
	} else {
		p.Title.Text += " (no data)"
	}
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
}

// output saves the chart to path, or to a temporary SVG handed to the viewer.
func (r *Renderer) output(ctx context.Context, p *plot.Plot, path string) error {
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create chart directory: %w", err)
			}
		}
		if err := p.Save(r.width, r.height, path); err != nil {
			return fmt.Errorf("failed to save chart %s: %w", path, err)
		}
		r.logger.Info("Chart written", "file", path)
		return nil
	}

	tmp, err := os.CreateTemp("", "graphbench-*.svg")
	if err != nil {
		return fmt.Errorf("failed to create temporary chart file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := p.Save(r.width, r.height, tmpPath); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	r.logger.Debug("Showing chart", "file", tmpPath)
	return r.viewer.View(ctx, tmpPath)
}
