package raster

import (
	"fmt"
	"math"
)

// Map applies fn to every present sample.
func (r *Raster) Map(name string, fn func(v float64) float64) *Raster {
	out := New(r.Grid, name)
	for i, v := range r.Data {
		if r.Valid[i] {
			out.store(i, fn(v))
		}
	}
	return out
}

// Combine applies fn cell by cell. A cell is absent in the result when it is
// absent in any operand.
func Combine(name string, fn func(vs []float64) float64, operands ...*Raster) (*Raster, error) {
	if len(operands) == 0 {
		return nil, fmt.Errorf("combine %s: no operands", name)
	}
	g := operands[0].Grid
	for _, o := range operands[1:] {
		if !o.Grid.Equal(g) {
			return nil, fmt.Errorf("combine %s with %s: %w", name, o.Name, ErrGridMismatch)
		}
	}
	out := New(g, name)
	vs := make([]float64, len(operands))
cells:
	for i := range out.Data {
		for k, o := range operands {
			if !o.Valid[i] {
				continue cells
			}
			vs[k] = o.Data[i]
		}
		out.store(i, fn(vs))
	}
	return out, nil
}

// Multiply is the cell-wise product of all operands.
func Multiply(name string, operands ...*Raster) (*Raster, error) {
	return Combine(name, func(vs []float64) float64 {
		p := 1.0
		for _, v := range vs {
			p *= v
		}
		return p
	}, operands...)
}

// UnitScale maps lo..hi linearly onto 0..1 without clamping.
func (r *Raster) UnitScale(lo, hi float64) *Raster {
	span := hi - lo
	return r.Map(r.Name, func(v float64) float64 {
		return (v - lo) / span
	})
}

func (r *Raster) Clamp(lo, hi float64) *Raster {
	return r.Map(r.Name, func(v float64) float64 {
		return math.Min(math.Max(v, lo), hi)
	})
}

// UpdateMask drops every cell where mask is absent or zero.
func (r *Raster) UpdateMask(mask *Raster) (*Raster, error) {
	if !mask.Grid.Equal(r.Grid) {
		return nil, fmt.Errorf("mask %s by %s: %w", r.Name, mask.Name, ErrGridMismatch)
	}
	out := r.Clone()
	for i := range out.Data {
		if !mask.Valid[i] || mask.Data[i] == 0 {
			out.Data[i] = 0
			out.Valid[i] = false
		}
	}
	return out, nil
}

// FocalMean averages the present samples in a square window of the given
// radius around each present cell.
func (r *Raster) FocalMean(radius int) *Raster {
	out := New(r.Grid, r.Name)
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			if !r.Valid[r.Index(col, row)] {
				continue
			}
			sum, n := 0.0, 0
			for dr := -radius; dr <= radius; dr++ {
				for dc := -radius; dc <= radius; dc++ {
					if v, ok := r.At(col+dc, row+dr); ok {
						sum += v
						n++
					}
				}
			}
			out.store(r.Index(col, row), sum/float64(n))
		}
	}
	return out
}

// Renormalize stretches the realized min..max of present samples onto 0..1.
// A constant raster keeps its value clamped to 0..1.
func (r *Raster) Renormalize() *Raster {
	s := r.Stats()
	if s.Count == 0 {
		return r.Clone()
	}
	span := s.Max - s.Min
	if span == 0 {
		return r.Clamp(0, 1)
	}
	return r.UnitScale(s.Min, s.Max)
}

// Crop copies the cells of r that fall inside window, which must be aligned to r.
func (r *Raster) Crop(window Grid) (*Raster, error) {
	if window.CellSize != r.CellSize || window.EPSG != r.EPSG {
		return nil, fmt.Errorf("crop %s: %w", r.Name, ErrGridMismatch)
	}
	dc := int(math.Round((window.OriginX - r.OriginX) / r.CellSize))
	dr := int(math.Round((r.OriginY - window.OriginY) / r.CellSize))
	out := New(window, r.Name)
	for row := 0; row < window.Rows; row++ {
		for col := 0; col < window.Cols; col++ {
			if v, ok := r.At(col+dc, row+dr); ok {
				out.store(out.Index(col, row), v)
			}
		}
	}
	return out, nil
}

// Resample samples r at the cell centres of g (nearest neighbour).
func (r *Raster) Resample(g Grid) (*Raster, error) {
	if g.EPSG != r.EPSG {
		return nil, fmt.Errorf("resample %s from EPSG:%d to EPSG:%d: %w", r.Name, r.EPSG, g.EPSG, ErrGridMismatch)
	}
	if g.Equal(r.Grid) {
		return r.Clone(), nil
	}
	out := New(g, r.Name)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			c, rr, ok := r.CellOf(g.CellCenter(col, row))
			if !ok {
				continue
			}
			if v, ok := r.At(c, rr); ok {
				out.store(out.Index(col, row), v)
			}
		}
	}
	return out, nil
}
