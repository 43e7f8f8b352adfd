package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dryfly-scientist/Hydro-Map/internal/nri"
	"github.com/dryfly-scientist/Hydro-Map/internal/properties"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/tnri"
	"github.com/dryfly-scientist/Hydro-Map/internal/waterquality"
	"github.com/dryfly-scientist/Hydro-Map/internal/watershed"
	"github.com/dryfly-scientist/Hydro-Map/output"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func (s *Service) newEvaluator(layers *nri.Layers) (*tnri.Evaluator, error) {
	cfg := s.cfg
	watersheds, err := s.io.Features(properties.Path(cfg.WatershedsPath), cfg.WatershedField)
	if err != nil {
		return nil, fmt.Errorf("watersheds: %w", err)
	}
	flowAcc, err := s.io.Raster(properties.Path(cfg.FlowAccPath), layers.Grid, "flow_accumulation", raster.Nearest)
	if err != nil {
		return nil, fmt.Errorf("flow accumulation: %w", err)
	}
	samples, err := waterquality.LoadSamples(properties.Path(cfg.SamplesPath))
	if err != nil {
		return nil, fmt.Errorf("water quality samples: %w", err)
	}

	s.mu.Lock()
	projector := s.projector
	if projector == nil {
		if projector, err = s.io.Projector(); err == nil {
			s.projector = projector
		}
	}
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("click projection: %w", err)
	}

	return &tnri.Evaluator{
		Layers: layers,
		Resolver: watershed.Resolver{
			Watersheds: watersheds.FilterBounds(layers.Grid.Bounds()),
			IDField:    cfg.WatershedField,
			NameField:  cfg.WatershedName,
		},
		FlowAcc:   flowAcc,
		Samples:   samples,
		Window:    waterquality.Window{Start: cfg.SampleStart, End: cfg.SampleEnd},
		Projector: projector,
		Clock:     s.clock,
		Logger:    s.logger,
	}, nil
}

func (s *Service) currentEvaluator() (*tnri.Evaluator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.evaluator == nil {
		return nil, ErrNotReady
	}
	return s.evaluator, nil
}

func clickOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidClick):
		return "invalid"
	case errors.Is(err, watershed.ErrUnresolvedGeometry):
		return "unresolved"
	case errors.Is(err, waterquality.ErrInsufficientSampleData):
		return "insufficient"
	default:
		return "error"
	}
}

// EvaluateClick computes the TNRI for the watershed under the click and
// exports it. Nothing is written when the evaluation fails.
func (s *Service) EvaluateClick(ctx context.Context, c tnri.Click) (*tnri.Summary, error) {
	start := s.clock.Now()
	summary, err := s.evaluateClick(ctx, c)
	outcome := clickOutcome(err)
	if s.metrics != nil {
		s.metrics.ClickDuration.Observe(s.clock.Since(start).Seconds())
		s.metrics.ClicksTotal.WithLabelValues(outcome).Inc()
	}
	switch outcome {
	case "success":
	case "error":
		s.logger.Error("click failed", "lon", c.Lon, "lat", c.Lat, "error", err)
		s.notifyError(fmt.Sprintf("TNRI click at %.5f,%.5f failed: %v", c.Lon, c.Lat, err))
	default:
		s.logger.Warn("click rejected", "lon", c.Lon, "lat", c.Lat, "reason", outcome, "error", err)
	}
	return summary, err
}

func (s *Service) evaluateClick(ctx context.Context, c tnri.Click) (*tnri.Summary, error) {
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClick, err)
	}
	ev, err := s.currentEvaluator()
	if err != nil {
		return nil, err
	}
	res, err := ev.Evaluate(ctx, c)
	if err != nil {
		return nil, err
	}
	summary := res.Summary()
	if summary.Exports, err = s.exportClick(res, ev); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) exportClick(res *tnri.Result, ev *tnri.Evaluator) ([]string, error) {
	base := fmt.Sprintf("tnri_%s_%s", res.Watershed.ID, res.ID.String()[:8])
	var exports []string

	tif, err := s.outputPath(base + ".tif")
	if err != nil {
		return nil, err
	}
	if err := s.io.WriteGeoTIFF(tif, res.TNRI, s.cfg.MaxPixels); err != nil {
		return nil, err
	}
	s.exported("geotiff")
	exports = append(exports, tif)

	png, err := s.outputPath(base)
	if err != nil {
		return nil, err
	}
	if png, err = output.CreateIndexImage(res.TNRI, properties.TNRIPalette, quicklookScale, png); err != nil {
		if !errors.Is(err, output.ErrNothingToDraw) {
			return nil, err
		}
		s.logger.Warn("tnri quicklook skipped", "watershed", res.Watershed.ID, "error", err)
	} else {
		s.exported("png")
		exports = append(exports, png)
	}

	geo, err := s.outputPath(base)
	if err != nil {
		return nil, err
	}
	fc, err := output.ToWGS84(output.WatershedCollection(res.Watershed, ev.Layers.Corridor), ev.Projector.Inverse)
	if err != nil {
		return nil, err
	}
	if geo, err = output.CreateWatershedGeoJson(fc, geo); err != nil {
		return nil, err
	}
	s.exported("geojson")
	exports = append(exports, geo)

	summaryPath, err := s.outputPath(base + ".json")
	if err != nil {
		return nil, err
	}
	summary := res.Summary()
	summary.Exports = exports
	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(summaryPath, raw, 0644); err != nil {
		return nil, fmt.Errorf("error writing click summary: %w", err)
	}
	exports = append(exports, summaryPath)

	s.logger.Info("click exported", "watershed", res.Watershed.ID, "files", len(exports))
	return exports, nil
}

// ListWatersheds returns the watersheds clicks can resolve to. Before the
// first batch every watershed in the input file is listed.
func (s *Service) ListWatersheds() ([]watershed.Watershed, error) {
	if ev, err := s.currentEvaluator(); err == nil {
		return ev.Resolver.List(), nil
	}
	fc, err := s.io.Features(properties.Path(s.cfg.WatershedsPath), s.cfg.WatershedField)
	if err != nil {
		return nil, fmt.Errorf("watersheds: %w", err)
	}
	r := watershed.Resolver{Watersheds: fc, IDField: s.cfg.WatershedField, NameField: s.cfg.WatershedName}
	return r.List(), nil
}
