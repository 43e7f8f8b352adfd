// Package tnri evaluates the Terrestrial Nitrogen Retention Index for the
// watershed under a clicked point.
package tnri

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dryfly-scientist/Hydro-Map/internal/nri"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/waterquality"
	"github.com/dryfly-scientist/Hydro-Map/internal/watershed"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
)

// Projector maps geographic click coordinates onto the working grid's CRS
// and back.
type Projector interface {
	Forward(lon, lat float64) (orb.Point, error)
	Inverse(x, y float64) (orb.Point, error)
}

// IdentityProjector is used when the working grid is already geographic.
type IdentityProjector struct{}

func (IdentityProjector) Forward(lon, lat float64) (orb.Point, error) {
	return orb.Point{lon, lat}, nil
}

func (IdentityProjector) Inverse(x, y float64) (orb.Point, error) {
	return orb.Point{x, y}, nil
}

// Click is a map click. Discharge is in m^3/s, or in cubic feet per second
// when DischargeCFS is set.
type Click struct {
	Lon          float64 `json:"lon" validate:"gte=-180,lte=180"`
	Lat          float64 `json:"lat" validate:"gte=-90,lte=90"`
	Discharge    float64 `json:"discharge" validate:"gte=0"`
	DischargeCFS bool    `json:"discharge_cfs"`
}

func (c Click) DischargeCMS() float64 {
	if c.DischargeCFS {
		return waterquality.CFSToCMS(c.Discharge)
	}
	return c.Discharge
}

type Result struct {
	ID          uuid.UUID
	State       watershed.State
	Point       orb.Point
	Watershed   watershed.Watershed
	Flux        waterquality.Estimate
	NRI         *raster.Raster
	Hydrology   *raster.Raster
	TNRI        *raster.Raster
	EvaluatedAt time.Time
}

// Evaluator holds the read-only state shared by every click.
type Evaluator struct {
	Layers    *nri.Layers
	Resolver  watershed.Resolver
	FlowAcc   *raster.Raster
	Samples   []waterquality.Sample
	Window    waterquality.Window
	Projector Projector
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

// Evaluate resolves the watershed, computes the flux, then clips the index
// and derives the TNRI. It fails before any raster work when the click is
// outside every watershed or the sample table has nothing in the window.
func (e Evaluator) Evaluate(ctx context.Context, c Click) (*Result, error) {
	if e.Layers == nil || e.Layers.NRI == nil {
		return nil, errors.New("tnri: batch layers not built")
	}
	if e.FlowAcc == nil {
		return nil, errors.New("tnri: missing flow accumulation")
	}
	projector := e.Projector
	if projector == nil {
		projector = IdentityProjector{}
	}
	clock := e.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	p, err := projector.Forward(c.Lon, c.Lat)
	if err != nil {
		return nil, fmt.Errorf("failed to project click %.5f,%.5f: %w", c.Lon, c.Lat, err)
	}
	ws, err := e.Resolver.Resolve(p)
	if err != nil {
		return nil, err
	}
	est, err := waterquality.EstimateFlux(e.Samples, e.Window, c.DischargeCMS())
	if err != nil {
		return nil, fmt.Errorf("watershed %s: %w", ws.ID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clipped, err := watershed.Clip(e.Layers.NRI, ws)
	if err != nil {
		return nil, err
	}
	acc, err := e.FlowAcc.Resample(clipped.Grid)
	if err != nil {
		return nil, fmt.Errorf("flow accumulation: %w", err)
	}
	hydro := waterquality.HydrologyNorm(acc)
	index, err := Composite(clipped, hydro, est.Flux)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:          uuid.New(),
		State:       watershed.Resolved,
		Point:       p,
		Watershed:   ws,
		Flux:        est,
		NRI:         clipped,
		Hydrology:   hydro,
		TNRI:        index,
		EvaluatedAt: clock.Now().UTC(),
	}
	if e.Logger != nil {
		e.Logger.Info("click evaluated",
			slog.String("id", res.ID.String()),
			slog.String("watershed", ws.ID),
			slog.Float64("flux_mg_s", est.Flux),
			slog.Int("cells", index.Stats().Count),
		)
	}
	return res, nil
}

// Composite is nri * hydrology * flux on the grid of the clipped index.
func Composite(nriClipped, hydroNorm *raster.Raster, flux float64) (*raster.Raster, error) {
	hydro, err := hydroNorm.Resample(nriClipped.Grid)
	if err != nil {
		return nil, fmt.Errorf("tnri hydrology: %w", err)
	}
	out, err := raster.Combine("tnri", func(vs []float64) float64 {
		return vs[0] * vs[1] * flux
	}, nriClipped, hydro)
	if err != nil {
		return nil, fmt.Errorf("tnri: %w", err)
	}
	return out, nil
}
