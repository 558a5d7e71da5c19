package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
)

// ExtendedPaletteThreshold is the largest series count drawn from the base
// palette. Charts with more series switch to the extended palette.
const ExtendedPaletteThreshold = 8

const (
	basePaletteName     = "Dark2"
	extendedPaletteSize = 24
	// stride is coprime with extendedPaletteSize, so stepping through the
	// rainbow by it visits every hue once while keeping neighbours apart.
	stride = 7
)

var (
	basePalette     = mustBrewer(basePaletteName, ExtendedPaletteThreshold)
	extendedPalette = buildExtendedPalette(extendedPaletteSize)
)

// SeriesColor returns the colour of series i in a chart of total series.
// The assignment depends only on (i, total), so identical requests produce
// identical charts.
func SeriesColor(i, total int) color.Color {
	if total <= ExtendedPaletteThreshold {
		return basePalette[i%len(basePalette)]
	}
	return extendedPalette[i%len(extendedPalette)]
}

func mustBrewer(name string, n int) []color.Color {
	p, err := brewer.GetPalette(brewer.TypeQualitative, name, n)
	if err != nil {
		panic(fmt.Sprintf("report: brewer palette %s/%d: %v", name, n, err))
	}
	return p.Colors()
}

// buildExtendedPalette interleaves a bright and a dark rainbow of n hues.
func buildExtendedPalette(n int) []color.Color {
	last := palette.Hue(float64(n-1) / float64(n))
	bright := palette.Rainbow(n, palette.Red, last, 0.75, 0.85, 1).Colors()
	dark := palette.Rainbow(n, palette.Red, last, 0.75, 0.6, 1).Colors()

	out := make([]color.Color, n)
	for i := range out {
		hue := (i * stride) % n
		if i%2 == 0 {
			out[i] = bright[hue]
		} else {
			out[i] = dark[hue]
		}
	}
	return out
}
