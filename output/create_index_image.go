package output

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dryfly-scientist/Hydro-Map/internal/properties"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/fogleman/gg"
)

const (
	legendHeight = 40
	legendWidth  = 120
	legendMargin = 10
)

var ErrNothingToDraw = errors.New("raster has no samples to draw")

// PaletteColor interpolates linearly between the palette stops. t is clamped
// to [0,1].
func PaletteColor(palette []properties.Color, t float64) properties.Color {
	if len(palette) == 0 {
		return properties.Color{}
	}
	if t <= 0 || len(palette) == 1 {
		return palette[0]
	}
	if t >= 1 {
		return palette[len(palette)-1]
	}
	pos := t * float64(len(palette)-1)
	i := int(pos)
	f := pos - float64(i)
	a, b := palette[i], palette[i+1]
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*f + 0.5)
	}
	return properties.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}

// CreateIndexImage renders r as a PNG quicklook stretched over its realized
// range, one square of scale pixels per cell, with a colour-bar legend below.
// Absent cells stay transparent.
func CreateIndexImage(r *raster.Raster, palette []properties.Color, scale int, outputImagePath string) (string, error) {
	if !strings.HasSuffix(outputImagePath, ".png") {
		outputImagePath += ".png"
	}
	stats := r.Stats()
	if stats.Count == 0 {
		return "", fmt.Errorf("%s: %w", r.Name, ErrNothingToDraw)
	}
	if scale < 1 {
		scale = 1
	}

	width := max(r.Cols*scale, legendWidth+2*legendMargin)
	height := r.Rows * scale
	dc := gg.NewContext(width, height+legendHeight)

	span := stats.Max - stats.Min
	s := float64(scale)
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			v, ok := r.At(col, row)
			if !ok {
				continue
			}
			t := 0.0
			if span > 0 {
				t = (v - stats.Min) / span
			}
			c := PaletteColor(palette, t)
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.DrawRectangle(float64(col)*s, float64(row)*s, s, s)
			dc.Fill()
		}
	}

	// Legend
	y := float64(height + legendMargin/2)
	for i := 0; i < legendWidth; i++ {
		c := PaletteColor(palette, float64(i)/float64(legendWidth-1))
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.DrawRectangle(float64(legendMargin+i), y, 1, 12)
		dc.Fill()
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(legendMargin, y, legendWidth, 12)
	dc.SetLineWidth(1)
	dc.Stroke()
	dc.DrawStringAnchored(fmt.Sprintf("%.3g", stats.Min), legendMargin, y+24, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.3g", stats.Max), legendMargin+legendWidth, y+24, 1, 0.5)

	if err := dc.SavePNG(outputImagePath); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", filepath.Base(outputImagePath), err)
	}
	return outputImagePath, nil
}
