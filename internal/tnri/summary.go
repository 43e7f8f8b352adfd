package tnri

import (
	"time"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/watershed"
)

// Summary is the JSON view of a Result.
type Summary struct {
	ID            string          `json:"id"`
	State         watershed.State `json:"state"`
	WatershedID   string          `json:"watershed_id"`
	WatershedName string          `json:"watershed_name,omitempty"`
	X             float64         `json:"x"`
	Y             float64         `json:"y"`
	MeanMgL       float64         `json:"mean_concentration_mg_l"`
	Samples       int             `json:"samples"`
	DischargeCMS  float64         `json:"discharge_m3_s"`
	FluxMgS       float64         `json:"flux_mg_s"`
	NRI           raster.Stats    `json:"nri"`
	TNRI          raster.Stats    `json:"tnri"`
	EvaluatedAt   time.Time       `json:"evaluated_at"`
	Exports       []string        `json:"exports,omitempty"`
}

func (r *Result) Summary() Summary {
	return Summary{
		ID:            r.ID.String(),
		State:         r.State,
		WatershedID:   r.Watershed.ID,
		WatershedName: r.Watershed.Name,
		X:             r.Point[0],
		Y:             r.Point[1],
		MeanMgL:       r.Flux.Mean,
		Samples:       r.Flux.Samples,
		DischargeCMS:  r.Flux.Discharge,
		FluxMgS:       r.Flux.Flux,
		NRI:           r.NRI.Stats(),
		TNRI:          r.TNRI.Stats(),
		EvaluatedAt:   r.EvaluatedAt,
	}
}
