package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// Curve is a named function of n drawn as a reference line.
type Curve struct {
	Name string
	Fn   func(n float64) float64
}

// FunctionChartRequest plots reference curves over [N0, NMax]. Granularity is
// the number of samples per unit of n.
type FunctionChartRequest struct {
	Title       string
	Curves      []Curve
	N0          float64
	NMax        float64
	Granularity int
	XLabel      string
	YLabel      string
	OutputPath  string
}

var referenceCurves = map[string]func(float64) float64{
	"n":       func(n float64) float64 { return n },
	"n log n": func(n float64) float64 { return n * math.Log2(math.Max(n, 1)) },
	"n^2":     func(n float64) float64 { return n * n },
	"n^3":     func(n float64) float64 { return n * n * n },
	"2^n":     func(n float64) float64 { return math.Exp2(n) },
}

// ReferenceCurve looks up a built-in complexity curve by name.
func ReferenceCurve(name string) (Curve, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "nlogn", "n log n")
	fn, ok := referenceCurves[key]
	if !ok {
		return Curve{}, fmt.Errorf("unknown reference curve %q (available: %s)", name, strings.Join(ReferenceCurveNames(), ", "))
	}
	return Curve{Name: key, Fn: fn}, nil
}

// ReferenceCurveNames lists the built-in curves.
func ReferenceCurveNames() []string {
	names := make([]string, 0, len(referenceCurves))
	for name := range referenceCurves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderFunctions plots each curve over the requested range.
func (r *Renderer) RenderFunctions(ctx context.Context, req FunctionChartRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.NMax <= req.N0 {
		return fmt.Errorf("invalid range: n0=%g must be below nmax=%g", req.N0, req.NMax)
	}
	granularity := req.Granularity
	if granularity < 1 {
		granularity = 1
	}
	samples := int(float64(granularity) * (req.NMax - req.N0))
	if samples < 2 {
		samples = 2
	}

	xLabel, yLabel := req.XLabel, req.YLabel
	if xLabel == "" {
		xLabel = "n"
	}
	if yLabel == "" {
		yLabel = "steps"
	}

	p := plot.New()
	p.Title.Text = req.Title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = TickerFor(xLabel)
	p.Y.Tick.Marker = EvenTicks(DefaultTickCount)
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	yMin, yMax := math.Inf(1), math.Inf(-1)
	drawn := 0
	for i, c := range req.Curves {
		lo, hi, ok := sampleRange(c.Fn, req.N0, req.NMax, samples)
		if !ok {
			r.logger.Warn("Curve has no finite values in range", "curve", c.Name)
			continue
		}
		yMin, yMax = math.Min(yMin, lo), math.Max(yMax, hi)

		f := plotter.NewFunction(c.Fn)
		f.XMin, f.XMax = req.N0, req.NMax
		f.Samples = samples
		f.Color = SeriesColor(i, len(req.Curves))
		f.Width = 1.5

		p.Add(f)
		p.Legend.Add(c.Name, f)
		drawn++
	}

	if drawn == 0 {
		r.logger.Warn("No curves to plot, writing placeholder chart")
		placeholder(p)
		return r.output(ctx, p, req.OutputPath)
	}

	p.X.Min, p.X.Max = req.N0, req.NMax
	if yMin == yMax {
		yMin, yMax = yMin-1, yMax+1
	}
	p.Y.Min, p.Y.Max = yMin, yMax

	return r.output(ctx, p, req.OutputPath)
}

func sampleRange(fn func(float64) float64, lo, hi float64, samples int) (float64, float64, bool) {
	min, max := math.Inf(1), math.Inf(-1)
	step := (hi - lo) / float64(samples-1)
	for i := 0; i < samples; i++ {
		y := fn(lo + float64(i)*step)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		min, max = math.Min(min, y), math.Max(max, y)
	}
	return min, max, !math.IsInf(min, 1)
}
