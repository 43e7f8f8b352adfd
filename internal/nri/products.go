package nri

import (
	"errors"
	"fmt"
	"math"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
)

// Thresholds of the land-side nitrogen products.
const (
	VegetatedGreenness = 0.2
	MinProximity       = 0.01
	NearStream         = 0.3
	ModerateFlowLow    = 0.2
	ModerateFlowHigh   = 0.6

	// flux (mg/s) is divided by this before it enters the leaching product
	leachFluxScale = 1e6
)

// LandInputs are the batch-grid layers shared by the nitrogen products.
// FlowNorm is the hydrology-normalized flow accumulation. Buffer is the
// optional 0/1 corridor mask applied to the base load.
type LandInputs struct {
	Greenness *raster.Raster
	Proximity *raster.Raster
	SlopeNorm *raster.Raster
	FlowNorm  *raster.Raster
	Buffer    *raster.Raster
}

func (in LandInputs) check() error {
	if in.Greenness == nil || in.Proximity == nil || in.SlopeNorm == nil || in.FlowNorm == nil {
		return errors.New("nitrogen products: missing layer")
	}
	return nil
}

// vegetated drops greenness below VegetatedGreenness.
func vegetated(greenness *raster.Raster) *raster.Raster {
	return greenness.Map("ndvi_norm", func(v float64) float64 {
		if v < VegetatedGreenness {
			return math.NaN()
		}
		return v
	})
}

// reachable drops proximity below MinProximity.
func reachable(proximity *raster.Raster) *raster.Raster {
	return proximity.Map("prox_norm", func(v float64) float64 {
		if v < MinProximity {
			return math.NaN()
		}
		return v
	})
}

func indicator(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// BaseLoad spreads flux over vegetated, reachable, flat cells:
// flux * ndvi_norm * prox_norm * (1 - slope_norm), limited to the buffer.
func BaseLoad(in LandInputs, flux float64) (*raster.Raster, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	load, err := raster.Combine("nitrate_load_base", func(vs []float64) float64 {
		return flux * vs[0] * vs[1] * (1 - vs[2])
	}, vegetated(in.Greenness), reachable(in.Proximity), in.SlopeNorm)
	if err != nil {
		return nil, fmt.Errorf("base load: %w", err)
	}
	if in.Buffer != nil {
		if load, err = load.UpdateMask(in.Buffer); err != nil {
			return nil, fmt.Errorf("base load: %w", err)
		}
	}
	return load, nil
}

// LeachingPotential marks vegetated flat cells near a stream on moderate
// flow paths, weighted by the flow-scaled flux, clamped to 0..1.
func LeachingPotential(in LandInputs, flux float64) (*raster.Raster, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	leach, err := raster.Combine("nitrate_leach_potential", func(vs []float64) float64 {
		g, s, f, p := vs[0], vs[1], vs[2], vs[3]
		moderate := indicator(f > ModerateFlowLow && f < ModerateFlowHigh)
		near := indicator(p >= NearStream)
		return g * (1 - s) * moderate * near * (f * flux / leachFluxScale)
	}, vegetated(in.Greenness), in.SlopeNorm, in.FlowNorm, reachable(in.Proximity))
	if err != nil {
		return nil, fmt.Errorf("leaching potential: %w", err)
	}
	return leach.Clamp(0, 1), nil
}

// BuildupPotential is ndvi_norm * (1 - slope_norm) * exp(-0.2 * prox / 60)
// * flow_norm^0.25. The decay runs on the proximity weight itself.
func BuildupPotential(in LandInputs) (*raster.Raster, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	buildup, err := raster.Combine("nitrate_buildup_potential", func(vs []float64) float64 {
		g, s, p, f := vs[0], vs[1], vs[2], vs[3]
		return g * (1 - s) * math.Exp(-0.2*p/60) * math.Pow(f, 0.25)
	}, vegetated(in.Greenness), in.SlopeNorm, in.Proximity, in.FlowNorm)
	if err != nil {
		return nil, fmt.Errorf("buildup potential: %w", err)
	}
	return buildup, nil
}

// NitrogenCover is the terrestrial buildup on low-flow land:
// (ndvi_norm * (1 - s) * (1 - f) * exp(-0.15 * prox / 90))^1.5 * (1 - 1.2 s),
// clamped to 0..1.
func NitrogenCover(in LandInputs) (*raster.Raster, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	cover, err := raster.Combine("nitrogen_cover", func(vs []float64) float64 {
		g, s, f, p := vs[0], vs[1], vs[2], vs[3]
		lowFlow := math.Min(math.Max(1-f, 0), 1)
		land := g * (1 - s) * lowFlow * math.Exp(-0.15*p/90)
		return math.Pow(land, 1.5) * (1 - 1.2*s)
	}, vegetated(in.Greenness), in.SlopeNorm, in.FlowNorm, in.Proximity)
	if err != nil {
		return nil, fmt.Errorf("nitrogen cover: %w", err)
	}
	return cover.Clamp(0, 1), nil
}
