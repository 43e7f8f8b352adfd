// Package stream burns flowlines onto the working grid and derives the
// distance-decay proximity weight.
package stream

import (
	"math"

	"github.com/dryfly-scientist/Hydro-Map/internal/geometry"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/paulmach/orb"
)

const (
	MaxDistancePixels = 30
	DecayRate         = 0.2
)

// Rasterize burns flowlines as 1 on a zero background.
func Rasterize(g raster.Grid, flowlines []orb.LineString) *raster.Raster {
	return geometry.BurnLines(g, "streams", flowlines)
}

// DistanceTransform is the exact Euclidean distance in ground units from each
// cell to the nearest non-zero cell of streams. Cells farther than
// maxPixels cells are absent, as is every cell when there is no stream.
func DistanceTransform(streams *raster.Raster, maxPixels int) *raster.Raster {
	g := streams.Grid
	out := raster.New(g, "distance")
	inf := math.Inf(1)

	sq := make([]float64, g.Size())
	found := false
	for i, v := range streams.Data {
		if streams.Valid[i] && v != 0 {
			sq[i] = 0
			found = true
		} else {
			sq[i] = inf
		}
	}
	if !found {
		return out
	}

	col := make([]float64, g.Rows)
	res := make([]float64, max(g.Rows, g.Cols))
	for c := 0; c < g.Cols; c++ {
		for r := 0; r < g.Rows; r++ {
			col[r] = sq[g.Index(c, r)]
		}
		edt1d(col, res[:g.Rows])
		for r := 0; r < g.Rows; r++ {
			sq[g.Index(c, r)] = res[r]
		}
	}
	row := make([]float64, g.Cols)
	for r := 0; r < g.Rows; r++ {
		copy(row, sq[r*g.Cols:(r+1)*g.Cols])
		edt1d(row, res[:g.Cols])
		copy(sq[r*g.Cols:(r+1)*g.Cols], res[:g.Cols])
	}

	limit := float64(maxPixels)
	for i, d2 := range sq {
		d := math.Sqrt(d2)
		if d > limit {
			continue
		}
		out.Data[i] = d * g.CellSize
		out.Valid[i] = true
	}
	return out
}

// edt1d is the lower envelope squared distance transform of Felzenszwalb
// and Huttenlocher.
func edt1d(f, d []float64) {
	n := len(f)
	v := make([]int, n)
	z := make([]float64, n+1)
	k := -1
	for q := 0; q < n; q++ {
		if math.IsInf(f[q], 1) {
			continue
		}
		for k >= 0 {
			p := v[k]
			s := ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*q-2*p)
			if s > z[k] {
				break
			}
			k--
		}
		k++
		v[k] = q
		if k == 0 {
			z[k] = math.Inf(-1)
		} else {
			p := v[k-1]
			z[k] = ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*q-2*p)
		}
		z[k+1] = math.Inf(1)
	}
	if k < 0 {
		for q := range d {
			d[q] = math.Inf(1)
		}
		return
	}
	j := 0
	for q := 0; q < n; q++ {
		for z[j+1] < float64(q) {
			j++
		}
		dq := float64(q - v[j])
		d[q] = dq*dq + f[v[j]]
	}
}

// Proximity converts distance to the decay weight exp(-b * d / cellSize).
func Proximity(distance *raster.Raster, b float64) *raster.Raster {
	size := distance.CellSize
	return distance.Map("proximity", func(d float64) float64 {
		return math.Exp(-b * d / size)
	})
}

type Layers struct {
	Streams   *raster.Raster
	Distance  *raster.Raster
	Proximity *raster.Raster
}

// ReachPixels is the distance transform bound needed so every cell within
// radius of a stream keeps a proximity value.
func ReachPixels(radius, cellSize float64) int {
	reach := MaxDistancePixels
	if radius > 0 && cellSize > 0 {
		reach = max(reach, int(math.Ceil(radius/cellSize))+1)
	}
	return reach
}

// Build burns flowlines and derives distance and proximity out to at least
// radius metres.
func Build(g raster.Grid, flowlines []orb.LineString, radius float64) Layers {
	streams := Rasterize(g, flowlines)
	distance := DistanceTransform(streams, ReachPixels(radius, g.CellSize))
	return Layers{
		Streams:   streams,
		Distance:  distance,
		Proximity: Proximity(distance, DecayRate),
	}
}
