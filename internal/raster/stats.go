package raster

import (
	"fmt"
	"math"
)

type Stats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

func (r *Raster) Stats() Stats {
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for i, v := range r.Data {
		if !r.Valid[i] {
			continue
		}
		s.Count++
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	if s.Count == 0 {
		return Stats{}
	}
	s.Mean = sum / float64(s.Count)
	return s
}

// MeanWhere is the mean of present samples where mask is present and non-zero.
// ok is false when no sample qualifies.
func (r *Raster) MeanWhere(mask *Raster) (float64, bool, error) {
	if !mask.Grid.Equal(r.Grid) {
		return 0, false, fmt.Errorf("mean of %s within %s: %w", r.Name, mask.Name, ErrGridMismatch)
	}
	sum, n := 0.0, 0
	for i, v := range r.Data {
		if r.Valid[i] && mask.Valid[i] && mask.Data[i] != 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / float64(n), true, nil
}

// Saturation reports the share of present samples pinned at lo or hi.
type Saturation struct {
	Name string
	Low  float64
	High float64
}

func (s Saturation) Exceeds(limit float64) bool {
	return s.Low+s.High > limit
}

func SaturationReport(r *Raster, lo, hi float64) Saturation {
	rep := Saturation{Name: r.Name}
	n, low, high := 0, 0, 0
	for i, v := range r.Data {
		if !r.Valid[i] {
			continue
		}
		n++
		if v <= lo {
			low++
		} else if v >= hi {
			high++
		}
	}
	if n == 0 {
		return rep
	}
	rep.Low = float64(low) / float64(n)
	rep.High = float64(high) / float64(n)
	return rep
}
