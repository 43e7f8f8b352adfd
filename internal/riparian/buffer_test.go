package riparian

import (
	"testing"

	"github.com/dryfly-scientist/Hydro-Map/internal/geometry"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grid = raster.Grid{OriginX: 0, OriginY: 300, CellSize: 30, Cols: 10, Rows: 10, EPSG: 32617}

func TestMask_WithinRadius(t *testing.T) {
	c := NewCorridor([]orb.LineString{{{0, 150}, {300, 150}}}, 40)
	mask := c.Mask(grid)

	// rows 3..6 sit 45, 15, 15 and 45 m from the line
	for row := 0; row < grid.Rows; row++ {
		v, ok := mask.At(4, row)
		require.True(t, ok)
		want := 0.0
		if row >= 4 && row <= 5 {
			want = 1
		}
		assert.Equal(t, want, v, "row %d", row)
	}
}

func TestMask_UnionOfFlowlines(t *testing.T) {
	c := NewCorridor([]orb.LineString{
		{{15, 0}, {15, 300}},
		{{285, 0}, {285, 300}},
	}, 20)
	mask := c.Mask(grid)

	v, _ := mask.At(0, 5)
	assert.Equal(t, 1.0, v)
	v, _ = mask.At(9, 5)
	assert.Equal(t, 1.0, v)
	v, _ = mask.At(5, 5)
	assert.Equal(t, 0.0, v)
}

func TestMask_LargerRadiusCoversMore(t *testing.T) {
	lines := []orb.LineString{{{0, 150}, {300, 150}}}
	prev := 0.0
	for _, r := range StatisticsRadii {
		s := NewCorridor(lines, r).Mask(grid).Stats()
		assert.GreaterOrEqual(t, s.Mean, prev)
		prev = s.Mean
	}
}

func TestMask_NoFlowlines(t *testing.T) {
	mask := NewCorridor(nil, GatingRadius).Mask(grid)
	assert.Equal(t, 0.0, mask.Stats().Max)
	assert.Equal(t, 1.0, mask.Coverage())
}

func TestPolygons_ContainSegment(t *testing.T) {
	c := NewCorridor([]orb.LineString{{{0, 0}, {100, 0}}}, 10)
	mp := c.Polygons(16)

	require.Len(t, mp, 1)
	assert.True(t, geometry.Contains(mp, orb.Point{50, 5}))
	assert.True(t, geometry.Contains(mp, orb.Point{-5, 0}))
	assert.False(t, geometry.Contains(mp, orb.Point{50, 15}))
}
