package delivery

import (
	"errors"
	"fmt"

	"github.com/dryfly-scientist/Hydro-Map/internal/nri"
	"github.com/dryfly-scientist/Hydro-Map/internal/properties"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/riparian"
	"github.com/dryfly-scientist/Hydro-Map/internal/tnri"
	"github.com/dryfly-scientist/Hydro-Map/internal/waterquality"
	"github.com/dryfly-scientist/Hydro-Map/output"
)

const quicklookScale = 2

func (s *Service) exportBatch(layers *nri.Layers) ([]string, error) {
	var exports []string
	tif, err := s.outputPath("nri.tif")
	if err != nil {
		return nil, err
	}
	if err := s.io.WriteGeoTIFF(tif, layers.NRI, s.cfg.MaxPixels); err != nil {
		return nil, err
	}
	s.exported("geotiff")
	exports = append(exports, tif)

	for _, r := range []*raster.Raster{layers.NRI, layers.NDVI} {
		path, err := s.outputPath(r.Name)
		if err != nil {
			return nil, err
		}
		path, err = output.CreateIndexImage(r, properties.ColorMap[r.Name], quicklookScale, path)
		if errors.Is(err, output.ErrNothingToDraw) {
			s.logger.Warn("quicklook skipped", "layer", r.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		s.exported("png")
		exports = append(exports, path)
	}
	return exports, nil
}

// flux is the windowed flux at the configured discharge. ok is false when
// no sample falls in the window.
func (s *Service) flux(ev *tnri.Evaluator) (float64, bool, error) {
	est, err := waterquality.EstimateFlux(ev.Samples, ev.Window, s.cfg.Discharge)
	if errors.Is(err, waterquality.ErrInsufficientSampleData) {
		s.logger.Warn("flux-weighted products skipped", "error", err)
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return est.Flux, true, nil
}

func landInputs(ev *tnri.Evaluator) nri.LandInputs {
	layers := ev.Layers
	return nri.LandInputs{
		Greenness: layers.Greenness,
		Proximity: layers.Stream.Proximity,
		SlopeNorm: layers.Terrain.SlopeNorm,
		FlowNorm:  waterquality.HydrologyNorm(ev.FlowAcc),
		Buffer:    layers.Buffer,
	}
}

// NitrateLoad is the MERIT-weighted load over the batch grid using the
// configured discharge. It returns nil when no sample falls in the window.
func (s *Service) NitrateLoad() (*raster.Raster, error) {
	ev, err := s.currentEvaluator()
	if err != nil {
		return nil, err
	}
	flux, ok, err := s.flux(ev)
	if err != nil || !ok {
		return nil, err
	}
	in := landInputs(ev)
	proxy, err := nri.RetentionProxy(in.Greenness, in.Proximity, in.SlopeNorm, in.FlowNorm)
	if err != nil {
		return nil, err
	}
	return nri.SpatializedLoad(proxy, in.FlowNorm, flux)
}

// NitrogenProducts builds the land-side products. The flux-weighted base
// load and leaching potential are left out when no sample falls in the
// window.
func (s *Service) NitrogenProducts() ([]*raster.Raster, error) {
	ev, err := s.currentEvaluator()
	if err != nil {
		return nil, err
	}
	in := landInputs(ev)
	var products []*raster.Raster

	flux, ok, err := s.flux(ev)
	if err != nil {
		return nil, err
	}
	if ok {
		base, err := nri.BaseLoad(in, flux)
		if err != nil {
			return nil, err
		}
		leach, err := nri.LeachingPotential(in, flux)
		if err != nil {
			return nil, err
		}
		products = append(products, base, leach)
	}

	buildup, err := nri.BuildupPotential(in)
	if err != nil {
		return nil, err
	}
	cover, err := nri.NitrogenCover(in)
	if err != nil {
		return nil, err
	}
	return append(products, buildup, cover), nil
}

func (s *Service) exportNitrogenProducts() ([]string, error) {
	products, err := s.NitrogenProducts()
	if err != nil {
		return nil, err
	}
	var exports []string
	for _, r := range products {
		path, err := s.outputPath(r.Name + ".tif")
		if err != nil {
			return nil, err
		}
		if err := s.io.WriteGeoTIFF(path, r, s.cfg.MaxPixels); err != nil {
			return nil, fmt.Errorf("%s: %w", r.Name, err)
		}
		s.exported("geotiff")
		exports = append(exports, path)
	}
	return exports, nil
}

// ExportBufferStats writes the per-radius buffer table, the nitrogen
// product GeoTIFFs and the 3-hour water-quality series.
func (s *Service) ExportBufferStats() ([]nri.BufferStat, []string, error) {
	ev, err := s.currentEvaluator()
	if err != nil {
		return nil, nil, err
	}
	load, err := s.NitrateLoad()
	if err != nil {
		return nil, nil, fmt.Errorf("nitrate load: %w", err)
	}
	stats, err := nri.BufferStats(ev.Layers, riparian.StatisticsRadii, load)
	if err != nil {
		return nil, nil, err
	}

	var exports []string
	path, err := s.outputPath("buffer_stats")
	if err != nil {
		return nil, nil, err
	}
	if path, err = output.CreateBufferStatsCsv(stats, path); err != nil {
		return nil, nil, err
	}
	s.exported("csv")
	exports = append(exports, path)

	products, err := s.exportNitrogenProducts()
	if err != nil {
		return nil, nil, fmt.Errorf("nitrogen products: %w", err)
	}
	exports = append(exports, products...)

	if buckets := waterquality.ThreeHourMeans(ev.Samples); len(buckets) > 0 {
		series, err := s.outputPath("nitrate_3h")
		if err != nil {
			return nil, nil, err
		}
		if series, err = output.CreateSeriesCsv(buckets, series); err != nil {
			return nil, nil, err
		}
		s.exported("csv")
		exports = append(exports, series)
	}
	return stats, exports, nil
}
