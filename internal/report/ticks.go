package report

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"

	"graphbench/internal/sweep"
)

// Tick layout per axis field.
const (
	SizeTickInterval        = 1
	ProbabilityTickInterval = 0.1
	MaxTicks                = 20
	DefaultTickCount        = 6
)

// TickerFor picks the tick strategy for an axis field.
func TickerFor(field string) plot.Ticker {
	switch field {
	case sweep.FieldSize, "size", sweep.FieldIndex:
		return IntegerTicks(SizeTickInterval, MaxTicks)
	case sweep.FieldProbability, "probability":
		return FixedTicks(ProbabilityTickInterval)
	default:
		return EvenTicks(DefaultTickCount)
	}
}

// IntegerTicks places ticks on multiples of interval, widening the interval in
// 1-2-5 steps until at most maxTicks fit.
func IntegerTicks(interval, maxTicks int) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if !finite(min, max) {
			return nil
		}
		base := interval
		if base < 1 {
			base = 1
		}
		step := base
		for multiplier := 0; countMultiples(min, max, float64(step)) > maxTicks; multiplier++ {
			step = base * widen(multiplier)
		}

		var ticks []plot.Tick
		for v := math.Ceil(min/float64(step)) * float64(step); v <= max; v += float64(step) {
			ticks = append(ticks, plot.Tick{Value: v, Label: strconv.Itoa(int(v))})
		}
		return ticks
	})
}

// FixedTicks places ticks on multiples of a sub-unit interval.
func FixedTicks(interval float64) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		const eps = 1e-9
		if !finite(min, max) || interval <= 0 {
			return nil
		}
		var ticks []plot.Tick
		first := int(math.Ceil(min/interval - eps))
		for i := first; ; i++ {
			v := math.Round(float64(i)*interval*1e9) / 1e9
			if v > max+eps {
				break
			}
			ticks = append(ticks, plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
		}
		return ticks
	})
}

// EvenTicks places count ticks evenly between the data's min and max.
func EvenTicks(count int) plot.Ticker {
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if count < 2 || max <= min {
			return []plot.Tick{{Value: min, Label: formatTick(min)}}
		}
		ticks := make([]plot.Tick, count)
		span := (max - min) / float64(count-1)
		for i := range ticks {
			v := min + float64(i)*span
			if i == count-1 {
				v = max
			}
			ticks[i] = plot.Tick{Value: v, Label: formatTick(v)}
		}
		return ticks
	})
}

func countMultiples(min, max, step float64) int {
	if max < min {
		return 0
	}
	return int(math.Floor(max/step)-math.Ceil(min/step)) + 1
}

// widen yields 2, 5, 10, 20, 50, 100, ...
func widen(multiplier int) int {
	base := []int{2, 5, 10}
	scale := 1
	for i := 0; i < multiplier/3; i++ {
		scale *= 10
	}
	return base[multiplier%3] * scale
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
