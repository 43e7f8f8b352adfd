package raster

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

var ErrPixelBudget = errors.New("export exceeds pixel budget")

// Resampling names understood by gdalwarp.
const (
	Nearest  = "near"
	Bilinear = "bilinear"
)

// Grid is a north-up georeference with square cells in projected metres.
// The origin is the upper-left corner of the upper-left cell.
type Grid struct {
	OriginX  float64 `json:"origin_x"`
	OriginY  float64 `json:"origin_y"`
	CellSize float64 `json:"cell_size"`
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
	EPSG     int     `json:"epsg"`
}

// NewGrid snaps the bound outward to whole cells of the given size.
func NewGrid(bound orb.Bound, cellSize float64, epsg int) Grid {
	originX := math.Floor(bound.Min[0]/cellSize) * cellSize
	originY := math.Ceil(bound.Max[1]/cellSize) * cellSize
	cols := int(math.Ceil((bound.Max[0] - originX) / cellSize))
	rows := int(math.Ceil((originY - bound.Min[1]) / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return Grid{
		OriginX:  originX,
		OriginY:  originY,
		CellSize: cellSize,
		Cols:     cols,
		Rows:     rows,
		EPSG:     epsg,
	}
}

func (g Grid) Size() int {
	return g.Cols * g.Rows
}

func (g Grid) Index(col, row int) int {
	return row*g.Cols + col
}

func (g Grid) InBounds(col, row int) bool {
	return col >= 0 && col < g.Cols && row >= 0 && row < g.Rows
}

// CellCenter returns the projected coordinate of the centre of a cell.
func (g Grid) CellCenter(col, row int) orb.Point {
	return orb.Point{
		g.OriginX + (float64(col)+0.5)*g.CellSize,
		g.OriginY - (float64(row)+0.5)*g.CellSize,
	}
}

// CellOf returns the cell containing p.
func (g Grid) CellOf(p orb.Point) (int, int, bool) {
	col := int(math.Floor((p[0] - g.OriginX) / g.CellSize))
	row := int(math.Floor((g.OriginY - p[1]) / g.CellSize))
	return col, row, g.InBounds(col, row)
}

func (g Grid) Bounds() orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.OriginX, g.OriginY - float64(g.Rows)*g.CellSize},
		Max: orb.Point{g.OriginX + float64(g.Cols)*g.CellSize, g.OriginY},
	}
}

// GeoTransform returns the GDAL affine transform of the grid.
func (g Grid) GeoTransform() [6]float64 {
	return [6]float64{g.OriginX, g.CellSize, 0, g.OriginY, 0, -g.CellSize}
}

// Window returns the sub-grid of g covering b, aligned to g's cells.
// ok is false when b does not overlap the grid.
func (g Grid) Window(b orb.Bound) (Grid, bool) {
	if !g.Bounds().Intersects(b) {
		return Grid{}, false
	}
	col0 := int(math.Floor((b.Min[0] - g.OriginX) / g.CellSize))
	col1 := int(math.Ceil((b.Max[0] - g.OriginX) / g.CellSize))
	row0 := int(math.Floor((g.OriginY - b.Max[1]) / g.CellSize))
	row1 := int(math.Ceil((g.OriginY - b.Min[1]) / g.CellSize))
	col0, row0 = max(col0, 0), max(row0, 0)
	col1, row1 = min(col1, g.Cols), min(row1, g.Rows)
	if col1 <= col0 || row1 <= row0 {
		return Grid{}, false
	}
	return Grid{
		OriginX:  g.OriginX + float64(col0)*g.CellSize,
		OriginY:  g.OriginY - float64(row0)*g.CellSize,
		CellSize: g.CellSize,
		Cols:     col1 - col0,
		Rows:     row1 - row0,
		EPSG:     g.EPSG,
	}, true
}

// Equal reports whether both grids describe the same cells.
func (g Grid) Equal(o Grid) bool {
	const tol = 1e-6
	return g.Cols == o.Cols && g.Rows == o.Rows && g.EPSG == o.EPSG &&
		math.Abs(g.OriginX-o.OriginX) < tol &&
		math.Abs(g.OriginY-o.OriginY) < tol &&
		math.Abs(g.CellSize-o.CellSize) < tol
}

// CheckBudget rejects grids with more cells than maxPixels. A non-positive
// budget disables the check.
func (g Grid) CheckBudget(maxPixels int64) error {
	if maxPixels > 0 && int64(g.Size()) > maxPixels {
		return fmt.Errorf("%dx%d grid has %d pixels, budget %d: %w", g.Cols, g.Rows, g.Size(), maxPixels, ErrPixelBudget)
	}
	return nil
}
