// Package raster holds gridded float samples where every sample is either
// present or absent. Absent samples propagate through every operation.
package raster

import (
	"errors"
	"fmt"
	"math"
)

var ErrGridMismatch = errors.New("raster grids do not match")

type Raster struct {
	Grid
	Name  string    `json:"name"`
	Data  []float64 `json:"data"`
	Valid []bool    `json:"valid"`
}

// New returns a raster with every sample absent.
func New(g Grid, name string) *Raster {
	return &Raster{
		Grid:  g,
		Name:  name,
		Data:  make([]float64, g.Size()),
		Valid: make([]bool, g.Size()),
	}
}

func Constant(g Grid, name string, v float64) *Raster {
	r := New(g, name)
	for i := range r.Data {
		r.store(i, v)
	}
	return r
}

// FromValues copies values row-major; NaN and Inf become absent.
func FromValues(g Grid, name string, values []float64) (*Raster, error) {
	if len(values) != g.Size() {
		return nil, fmt.Errorf("expected %d values for %dx%d grid, got %d", g.Size(), g.Cols, g.Rows, len(values))
	}
	r := New(g, name)
	for i, v := range values {
		r.store(i, v)
	}
	return r, nil
}

func (r *Raster) store(i int, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.Data[i] = 0
		r.Valid[i] = false
		return
	}
	r.Data[i] = v
	r.Valid[i] = true
}

func (r *Raster) At(col, row int) (float64, bool) {
	if !r.InBounds(col, row) {
		return 0, false
	}
	i := r.Index(col, row)
	return r.Data[i], r.Valid[i]
}

func (r *Raster) Set(col, row int, v float64) {
	r.store(r.Index(col, row), v)
}

func (r *Raster) Unset(col, row int) {
	i := r.Index(col, row)
	r.Data[i] = 0
	r.Valid[i] = false
}

func (r *Raster) Clone() *Raster {
	out := &Raster{
		Grid:  r.Grid,
		Name:  r.Name,
		Data:  make([]float64, len(r.Data)),
		Valid: make([]bool, len(r.Valid)),
	}
	copy(out.Data, r.Data)
	copy(out.Valid, r.Valid)
	return out
}

func (r *Raster) Rename(name string) *Raster {
	out := r.Clone()
	out.Name = name
	return out
}

// Values returns a row-major copy of the samples with absent cells set to nodata.
func (r *Raster) Values(nodata float64) []float64 {
	out := make([]float64, len(r.Data))
	for i, v := range r.Data {
		if r.Valid[i] {
			out[i] = v
		} else {
			out[i] = nodata
		}
	}
	return out
}

// Coverage is the fraction of present samples.
func (r *Raster) Coverage() float64 {
	if len(r.Valid) == 0 {
		return 0
	}
	n := 0
	for _, ok := range r.Valid {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(r.Valid))
}

func (r *Raster) Empty() bool {
	for _, ok := range r.Valid {
		if ok {
			return false
		}
	}
	return true
}
