package terrain

import (
	"math"
	"testing"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grid = raster.Grid{OriginX: 0, OriginY: 90, CellSize: 30, Cols: 3, Rows: 3, EPSG: 32617}

func TestSlope_FlatIsZero(t *testing.T) {
	s := Slope(raster.Constant(grid, "dem", 250))
	for _, v := range s.Data {
		assert.Equal(t, 0.0, v)
	}
}

func TestSlope_Ramp(t *testing.T) {
	// rises 30 m per 30 m cell eastward: 45 degrees
	dem, err := raster.FromValues(grid, "dem", []float64{
		0, 30, 60,
		0, 30, 60,
		0, 30, 60,
	})
	require.NoError(t, err)

	v, ok := Slope(dem).At(1, 1)
	require.True(t, ok)
	assert.InDelta(t, 45.0, v, 1e-9)
}

func TestSlope_AbsentStaysAbsent(t *testing.T) {
	dem, _ := raster.FromValues(grid, "dem", []float64{
		1, 1, 1,
		1, math.NaN(), 1,
		1, 1, 1,
	})
	s := Slope(dem)
	_, ok := s.At(1, 1)
	assert.False(t, ok)
	v, ok := s.At(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestNormalize_ConstantElevation(t *testing.T) {
	layers, err := Normalize(raster.Constant(grid, "dem", 250))
	require.NoError(t, err)

	for i := range layers.Lowland.Data {
		assert.InDelta(t, 0.5, layers.ElevationNorm.Data[i], 1e-12)
		assert.InDelta(t, 0.0, layers.SlopeNorm.Data[i], 1e-12)
		assert.InDelta(t, 0.7, layers.Lowland.Data[i], 1e-12)
		assert.InDelta(t, 1.0, layers.FlowProxy.Data[i], 1e-12)
	}
}

func TestNormalize_ClampsOutsideRange(t *testing.T) {
	dem, _ := raster.FromValues(grid, "dem", []float64{
		50, 50, 50,
		50, 50, 50,
		900, 900, 900,
	})
	layers, err := Normalize(dem)
	require.NoError(t, err)

	for _, r := range []*raster.Raster{layers.ElevationNorm, layers.SlopeNorm, layers.Lowland, layers.FlowProxy} {
		s := r.Stats()
		assert.GreaterOrEqual(t, s.Min, 0.0, r.Name)
		assert.LessOrEqual(t, s.Max, 1.0, r.Name)
	}
	v, _ := layers.ElevationNorm.At(0, 0)
	assert.Equal(t, 0.0, v)
	v, _ = layers.ElevationNorm.At(0, 2)
	assert.Equal(t, 1.0, v)
}
