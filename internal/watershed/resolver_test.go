package watershed

import (
	"testing"

	"github.com/dryfly-scientist/Hydro-Map/internal/geometry"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func resolver() Resolver {
	return Resolver{
		IDField:   "HUC12",
		NameField: "NAME",
		Watersheds: geometry.FeatureCollection{Features: []geometry.Feature{
			{ID: "1", Geometry: box(0, 0, 60, 90), Properties: map[string]string{"HUC12": "071200060101", "NAME": "Palmer Creek"}},
			{ID: "2", Geometry: box(60, 0, 150, 90), Properties: map[string]string{"HUC12": "071200060102", "NAME": "Fox River"}},
		}},
	}
}

func TestResolve(t *testing.T) {
	ws, err := resolver().Resolve(orb.Point{100, 45})
	require.NoError(t, err)
	assert.Equal(t, "071200060102", ws.ID)
	assert.Equal(t, "Fox River", ws.Name)
}

func TestResolve_SharedEdgeTakesFirst(t *testing.T) {
	ws, err := resolver().Resolve(orb.Point{60, 45})
	require.NoError(t, err)
	assert.Equal(t, "071200060101", ws.ID)
}

func TestResolve_Outside(t *testing.T) {
	_, err := resolver().Resolve(orb.Point{500, 500})
	assert.ErrorIs(t, err, ErrUnresolvedGeometry)
}

func TestList(t *testing.T) {
	list := resolver().List()
	require.Len(t, list, 2)
	assert.Equal(t, "Palmer Creek", list[0].Name)
}

func TestClip_ContainedInWatershed(t *testing.T) {
	g := raster.Grid{OriginX: 0, OriginY: 90, CellSize: 30, Cols: 5, Rows: 3, EPSG: 32617}
	nri := raster.Constant(g, "nri", 0.5)
	ws := Watershed{ID: "tri", Geometry: orb.Polygon{orb.Ring{{0, 0}, {150, 0}, {0, 90}, {0, 0}}}}

	clipped, err := Clip(nri, ws)
	require.NoError(t, err)
	assert.Equal(t, 5, clipped.Cols)

	for row := 0; row < clipped.Rows; row++ {
		for col := 0; col < clipped.Cols; col++ {
			if _, ok := clipped.At(col, row); ok {
				assert.True(t, geometry.Contains(ws.Geometry, clipped.CellCenter(col, row)))
			}
		}
	}
	v, ok := clipped.At(0, 2)
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)
	_, ok = clipped.At(4, 0)
	assert.False(t, ok)
}

func TestClip_NoOverlap(t *testing.T) {
	g := raster.Grid{OriginX: 0, OriginY: 90, CellSize: 30, Cols: 3, Rows: 3, EPSG: 32617}
	_, err := Clip(raster.Constant(g, "nri", 1), Watershed{ID: "far", Geometry: box(1000, 1000, 1100, 1100)})
	assert.ErrorIs(t, err, ErrUnresolvedGeometry)
}
