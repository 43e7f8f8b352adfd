package stream

import (
	"math"
	"testing"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridOf(cols, rows int) raster.Grid {
	return raster.Grid{OriginX: 0, OriginY: float64(rows) * 30, CellSize: 30, Cols: cols, Rows: rows, EPSG: 32617}
}

// bruteForce measures the nearest burned cell directly.
func bruteForce(streams *raster.Raster, col, row int) float64 {
	best := math.Inf(1)
	for r := 0; r < streams.Rows; r++ {
		for c := 0; c < streams.Cols; c++ {
			if v, ok := streams.At(c, r); ok && v != 0 {
				best = math.Min(best, math.Hypot(float64(c-col), float64(r-row)))
			}
		}
	}
	return best * streams.CellSize
}

func TestDistanceTransform_MatchesBruteForce(t *testing.T) {
	g := gridOf(9, 7)
	streams := raster.Constant(g, "streams", 0)
	streams.Set(1, 1, 1)
	streams.Set(7, 2, 1)
	streams.Set(4, 6, 1)

	dist := DistanceTransform(streams, 100)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			v, ok := dist.At(c, r)
			require.True(t, ok)
			assert.InDelta(t, bruteForce(streams, c, r), v, 1e-9, "cell %d,%d", c, r)
		}
	}
}

func TestDistanceTransform_Bounded(t *testing.T) {
	g := gridOf(10, 1)
	streams := raster.Constant(g, "streams", 0)
	streams.Set(0, 0, 1)

	dist := DistanceTransform(streams, 3)

	v, ok := dist.At(3, 0)
	assert.True(t, ok)
	assert.Equal(t, 90.0, v)
	_, ok = dist.At(4, 0)
	assert.False(t, ok)
}

func TestDistanceTransform_NoStreams(t *testing.T) {
	dist := DistanceTransform(raster.Constant(gridOf(4, 4), "streams", 0), MaxDistancePixels)
	assert.True(t, dist.Empty())
}

func TestProximity_DecaysWithDistance(t *testing.T) {
	g := gridOf(12, 1)
	layers := Build(g, []orb.LineString{{{15, 1}, {15, 29}}}, 0)

	v, ok := layers.Proximity.At(0, 0)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, _ = layers.Proximity.At(1, 0)
	assert.InDelta(t, math.Exp(-0.2), v, 1e-12)

	prev := 1.0
	for c := 1; c < g.Cols; c++ {
		v, ok := layers.Proximity.At(c, 0)
		require.True(t, ok)
		assert.LessOrEqual(t, v, prev)
		prev = v
	}
}

func TestRasterize_CenterColumn(t *testing.T) {
	g := gridOf(3, 3)
	streams := Rasterize(g, []orb.LineString{{{45, 0}, {45, 90}}})

	assert.Equal(t, []float64{0, 1, 0, 0, 1, 0, 0, 1, 0}, streams.Data)
}

func TestReachPixels(t *testing.T) {
	assert.Equal(t, MaxDistancePixels, ReachPixels(240, 30))
	assert.Equal(t, MaxDistancePixels, ReachPixels(0, 30))
	assert.Equal(t, 51, ReachPixels(1500, 30))
}

func TestBuild_WideRadiusKeepsProximity(t *testing.T) {
	g := gridOf(60, 3)
	layers := Build(g, []orb.LineString{{{15, 0}, {15, 90}}}, 1500)

	for c := 0; c < g.Cols; c++ {
		_, ok := layers.Proximity.At(c, 1)
		if float64(c)*g.CellSize <= 1500 {
			assert.True(t, ok, "col %d", c)
		}
	}
}
