package geometry

import (
	"math"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/paulmach/orb"
)

// PolygonMask is 1 where the cell centre falls inside any of the polygons and
// 0 elsewhere.
func PolygonMask(g raster.Grid, name string, geometries []orb.Geometry) *raster.Raster {
	out := raster.Constant(g, name, 0)
	for _, geom := range geometries {
		window, ok := g.Window(geom.Bound())
		if !ok {
			continue
		}
		c0, r0, _ := g.CellOf(window.CellCenter(0, 0))
		for row := r0; row < r0+window.Rows; row++ {
			for col := c0; col < c0+window.Cols; col++ {
				if Contains(geom, g.CellCenter(col, row)) {
					out.Set(col, row, 1)
				}
			}
		}
	}
	return out
}

// BurnLines sets every cell a line passes through to 1, everything else to 0.
// Segments are walked in steps of a quarter cell.
func BurnLines(g raster.Grid, name string, lines []orb.LineString) *raster.Raster {
	out := raster.Constant(g, name, 0)
	step := g.CellSize / 4
	burn := func(p orb.Point) {
		if col, row, ok := g.CellOf(p); ok {
			out.Set(col, row, 1)
		}
	}
	for _, l := range lines {
		if len(l) == 1 {
			burn(l[0])
		}
		for i := 1; i < len(l); i++ {
			a, b := l[i-1], l[i]
			length := math.Hypot(b[0]-a[0], b[1]-a[1])
			n := int(math.Ceil(length / step))
			for k := 0; k <= n; k++ {
				t := 0.0
				if n > 0 {
					t = float64(k) / float64(n)
				}
				burn(orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])})
			}
		}
	}
	return out
}
