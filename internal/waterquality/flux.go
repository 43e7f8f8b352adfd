package waterquality

import (
	"fmt"
	"math"
	"time"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/utils"
)

const (
	litresPerCubicMetre     = 1000.0
	cubicMetresPerCubicFoot = 0.0283168
)

// Window is a half-open time range; a zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// Mean averages the sample values inside w.
func Mean(samples []Sample, w Window) (float64, int, error) {
	sum, n := 0.0, 0
	for _, s := range samples {
		if w.Contains(s.Time) {
			sum += s.Value
			n++
		}
	}
	if n == 0 {
		return 0, 0, fmt.Errorf("%d samples, none in window: %w", len(samples), ErrInsufficientSampleData)
	}
	return sum / float64(n), n, nil
}

// Flux converts a concentration (mg/L) and a discharge (m^3/s) to mg/s.
func Flux(mean, discharge float64) (float64, error) {
	if mean < 0 || discharge < 0 || math.IsNaN(mean) || math.IsNaN(discharge) {
		return 0, fmt.Errorf("flux needs non-negative concentration and discharge, got %g mg/L and %g m3/s", mean, discharge)
	}
	return mean * discharge * litresPerCubicMetre, nil
}

func CFSToCMS(cfs float64) float64 {
	return cfs * cubicMetresPerCubicFoot
}

type Estimate struct {
	Mean      float64 `json:"mean_mg_l"`
	Samples   int     `json:"samples"`
	Discharge float64 `json:"discharge_m3_s"`
	Flux      float64 `json:"flux_mg_s"`
}

// EstimateFlux averages the samples in w and converts the mean to a flux.
func EstimateFlux(samples []Sample, w Window, discharge float64) (Estimate, error) {
	mean, n, err := Mean(samples, w)
	if err != nil {
		return Estimate{}, err
	}
	flux, err := Flux(mean, discharge)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{Mean: mean, Samples: n, Discharge: discharge, Flux: flux}, nil
}

// Bucket is the mean of the samples in one three-hour interval.
type Bucket struct {
	Start time.Time
	Mean  float64
	Count int
}

const bucketSize = 3 * time.Hour

// ThreeHourMeans groups samples into UTC three-hour buckets, sorted by time.
func ThreeHourMeans(samples []Sample) []Bucket {
	sums := make(map[time.Time]*Bucket)
	for _, s := range samples {
		start := s.Time.UTC().Truncate(bucketSize)
		b, ok := sums[start]
		if !ok {
			b = &Bucket{Start: start}
			sums[start] = b
		}
		b.Mean += s.Value
		b.Count++
	}
	out := make([]Bucket, 0, len(sums))
	for _, start := range utils.SortedKeys(sums, time.Time.Compare) {
		b := sums[start]
		b.Mean /= float64(b.Count)
		out = append(out, *b)
	}
	return out
}

// HydrologyNorm rescales flow accumulation as clamp((log10(a)/3)^2, 0, 1).
// Non-positive accumulation is absent.
func HydrologyNorm(flowAcc *raster.Raster) *raster.Raster {
	return flowAcc.
		Map("flow_acc_norm", math.Log10).
		UnitScale(0, 3).
		Map("flow_acc_norm", func(v float64) float64 { return v * v }).
		Clamp(0, 1)
}
