// Package riparian builds the stream corridor that gates the retention index.
package riparian

import (
	"math"

	"github.com/dryfly-scientist/Hydro-Map/internal/geometry"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/paulmach/orb"
)

// GatingRadius is the corridor half-width, in metres, used for the index.
const GatingRadius = 240.0

// StatisticsRadii are the corridor half-widths reported in buffer statistics.
var StatisticsRadii = []float64{30, 120, 240, 360, 500}

// Corridor is the union of every flowline dilated by Radius.
type Corridor struct {
	Flowlines []orb.LineString
	Radius    float64
}

func NewCorridor(flowlines []orb.LineString, radius float64) Corridor {
	return Corridor{Flowlines: flowlines, Radius: radius}
}

func (c Corridor) Bound() orb.Bound {
	var b orb.Bound
	for i, l := range c.Flowlines {
		if i == 0 {
			b = l.Bound()
			continue
		}
		b = b.Union(l.Bound())
	}
	return b.Pad(c.Radius)
}

func (c Corridor) Contains(p orb.Point) bool {
	d, ok := geometry.DistanceToLines(p, c.Flowlines)
	return ok && d <= c.Radius
}

// Mask is 1 where the cell centre lies inside the corridor and 0 elsewhere.
func (c Corridor) Mask(g raster.Grid) *raster.Raster {
	out := raster.Constant(g, "riparian_buffer", 0)
	if len(c.Flowlines) == 0 {
		return out
	}
	window, ok := g.Window(c.Bound())
	if !ok {
		return out
	}
	c0, r0, _ := g.CellOf(window.CellCenter(0, 0))
	for row := r0; row < r0+window.Rows; row++ {
		for col := c0; col < c0+window.Cols; col++ {
			if c.Contains(g.CellCenter(col, row)) {
				out.Set(col, row, 1)
			}
		}
	}
	return out
}

// Polygons approximates the dilation of every segment as a capsule ring.
// The rings overlap; consumers treat them as a union.
func (c Corridor) Polygons(segments int) orb.MultiPolygon {
	if segments < 4 {
		segments = 4
	}
	var mp orb.MultiPolygon
	for _, l := range c.Flowlines {
		if len(l) == 1 {
			mp = append(mp, orb.Polygon{capsule(l[0], l[0], c.Radius, segments)})
		}
		for i := 1; i < len(l); i++ {
			mp = append(mp, orb.Polygon{capsule(l[i-1], l[i], c.Radius, segments)})
		}
	}
	return mp
}

func capsule(a, b orb.Point, r float64, segments int) orb.Ring {
	theta := math.Atan2(b[1]-a[1], b[0]-a[0])
	ring := make(orb.Ring, 0, 2*segments+3)
	// half circle around b, then around a
	for k := 0; k <= segments; k++ {
		ang := theta - math.Pi/2 + math.Pi*float64(k)/float64(segments)
		ring = append(ring, orb.Point{b[0] + r*math.Cos(ang), b[1] + r*math.Sin(ang)})
	}
	for k := 0; k <= segments; k++ {
		ang := theta + math.Pi/2 + math.Pi*float64(k)/float64(segments)
		ring = append(ring, orb.Point{a[0] + r*math.Cos(ang), a[1] + r*math.Sin(ang)})
	}
	return append(ring, ring[0])
}
