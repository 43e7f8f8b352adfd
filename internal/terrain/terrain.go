// Package terrain turns an elevation model into the lowland and flow
// proxy weights of the retention index.
package terrain

import (
	"fmt"
	"math"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
)

// Normalization ranges, metres and degrees.
const (
	ElevationLow  = 100.0
	ElevationHigh = 400.0
	SlopeLow      = 0.0
	SlopeHigh     = 15.0

	elevationWeight = 0.6
	slopeWeight     = 0.4
)

type Layers struct {
	Slope         *raster.Raster
	ElevationNorm *raster.Raster
	SlopeNorm     *raster.Raster
	Lowland       *raster.Raster
	FlowProxy     *raster.Raster
}

// Slope is the Horn gradient of dem in degrees. Neighbours outside the grid
// or absent take the centre value.
func Slope(dem *raster.Raster) *raster.Raster {
	out := raster.New(dem.Grid, "slope")
	size := dem.CellSize
	for row := 0; row < dem.Rows; row++ {
		for col := 0; col < dem.Cols; col++ {
			z, ok := dem.At(col, row)
			if !ok {
				continue
			}
			at := func(dc, dr int) float64 {
				if v, ok := dem.At(col+dc, row+dr); ok {
					return v
				}
				return z
			}
			a, b, c := at(-1, -1), at(0, -1), at(1, -1)
			d, f := at(-1, 0), at(1, 0)
			g, h, i := at(-1, 1), at(0, 1), at(1, 1)

			dzdx := ((c + 2*f + i) - (a + 2*d + g)) / (8 * size)
			dzdy := ((g + 2*h + i) - (a + 2*b + c)) / (8 * size)
			out.Set(col, row, math.Atan(math.Hypot(dzdx, dzdy))*180/math.Pi)
		}
	}
	return out
}

// Normalize derives every terrain layer from dem.
func Normalize(dem *raster.Raster) (Layers, error) {
	slope := Slope(dem)
	elevNorm := dem.UnitScale(ElevationLow, ElevationHigh).Clamp(0, 1).Rename("elevation_norm")
	slopeNorm := slope.UnitScale(SlopeLow, SlopeHigh).Clamp(0, 1).Rename("slope_norm")

	lowland, err := raster.Combine("lowland", func(vs []float64) float64 {
		return 1 - (elevationWeight*vs[0] + slopeWeight*vs[1])
	}, elevNorm, slopeNorm)
	if err != nil {
		return Layers{}, fmt.Errorf("lowland weight: %w", err)
	}

	flatness := slopeNorm.Map("flatness", func(v float64) float64 { return 1 - v })
	flow := flatness.FocalMean(1).UnitScale(0, 1).Clamp(0, 1).Rename("flow_proxy")

	return Layers{
		Slope:         slope,
		ElevationNorm: elevNorm,
		SlopeNorm:     slopeNorm,
		Lowland:       lowland,
		FlowProxy:     flow,
	}, nil
}
