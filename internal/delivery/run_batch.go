package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dryfly-scientist/Hydro-Map/internal/landsat"
	"github.com/dryfly-scientist/Hydro-Map/internal/nri"
	"github.com/dryfly-scientist/Hydro-Map/internal/properties"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
)

// BatchReport lists what a batch run produced.
type BatchReport struct {
	Scenes   int
	Cached   bool
	Coverage float64
	NRI      raster.Stats
	Exports  []string
}

// RunBatch loads the study region, builds the batch layers, exports the NRI
// and prepares the click evaluator. A failed batch keeps the previous layers.
func (s *Service) RunBatch(ctx context.Context) (*BatchReport, error) {
	start := s.clock.Now()
	report, err := s.runBatch(ctx)
	if s.metrics != nil {
		s.metrics.BatchDuration.Observe(s.clock.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.BatchRuns.WithLabelValues("error").Inc()
		}
		s.logger.Error("batch failed", "error", err)
		s.notifyError(fmt.Sprintf("NRI batch failed: %v", err))
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BatchRuns.WithLabelValues("success").Inc()
		s.metrics.ScenesUsed.Set(float64(report.Scenes))
		s.metrics.NRICoverage.Set(report.Coverage)
	}
	s.notifySuccess(fmt.Sprintf("NRI batch finished: %d scenes, coverage %.1f%%, mean %.3f",
		report.Scenes, report.Coverage*100, report.NRI.Mean))
	return report, nil
}

func (s *Service) runBatch(ctx context.Context) (*BatchReport, error) {
	cfg := s.cfg
	region, err := s.io.Features(properties.Path(cfg.RegionPath), cfg.RegionField)
	if err != nil {
		return nil, fmt.Errorf("region: %w", err)
	}
	if len(cfg.RegionNames) > 0 {
		region = region.FilterIn(cfg.RegionField, cfg.RegionNames)
	}
	if region.Len() == 0 {
		return nil, fmt.Errorf("region: no feature matches %s in %v", cfg.RegionField, cfg.RegionNames)
	}
	grid := raster.NewGrid(region.Bound(), cfg.Resolution, cfg.EPSG)
	if err := grid.CheckBudget(cfg.MaxPixels); err != nil {
		return nil, err
	}
	s.logger.Info("working grid", "cols", grid.Cols, "rows", grid.Rows, "cell_size", grid.CellSize, "epsg", grid.EPSG)

	window := landsat.SpringWindow(cfg.Year)
	files, err := landsat.DiscoverScenes(properties.Path(cfg.ScenesDir))
	if err != nil {
		return nil, fmt.Errorf("scenes: %w", err)
	}
	files = landsat.Filter(files, window)

	var (
		layers *nri.Layers
		cached bool
		key    string
	)
	if s.cache != nil {
		key = s.batchKey(grid, files)
		layers, cached = s.cache.Get(key)
	}

	if !cached {
		flowlines, err := s.io.Features(properties.Path(cfg.FlowlinesPath), "")
		if err != nil {
			return nil, fmt.Errorf("flowlines: %w", err)
		}
		dem, err := s.io.Raster(properties.Path(cfg.DEMPath), grid, "elevation", raster.Bilinear)
		if err != nil {
			return nil, fmt.Errorf("elevation: %w", err)
		}
		scenes, err := s.io.Scenes(files, grid)
		if err != nil {
			return nil, err
		}

		builder := nri.Builder{
			Compositor:      landsat.Compositor{Workers: cfg.Workers, Logger: s.logger},
			Logger:          s.logger,
			SaturationLimit: cfg.SaturationLimit,
		}
		layers, err = builder.Build(ctx, nri.BatchInputs{
			Grid:         grid,
			Region:       region.Geometries(),
			Scenes:       scenes,
			Window:       window,
			DEM:          dem,
			Flowlines:    flowlines.FilterBounds(grid.Bounds().Pad(cfg.GatingRadius)).Lines(),
			GatingRadius: cfg.GatingRadius,
		})
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(key, layers); err != nil {
				s.logger.Warn("failed to cache batch layers", "error", err)
			}
		}
	} else {
		s.logger.Info("batch layers loaded from cache", "key", key)
	}

	report := &BatchReport{
		Scenes:   len(files),
		Cached:   cached,
		Coverage: layers.NRI.Coverage(),
		NRI:      layers.NRI.Stats(),
	}
	if report.Exports, err = s.exportBatch(layers); err != nil {
		return nil, err
	}

	evaluator, err := s.newEvaluator(layers)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.layers = layers
	s.evaluator = evaluator
	s.mu.Unlock()

	s.logger.Info("batch finished",
		slog.Int("scenes", report.Scenes),
		slog.Bool("cached", cached),
		slog.Float64("coverage", report.Coverage),
		slog.Float64("nri_mean", report.NRI.Mean),
	)
	return report, nil
}

func (s *Service) batchKey(g raster.Grid, files []landsat.SceneFiles) string {
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	sort.Strings(ids)
	return s.cache.GenerateKey("nri", g.OriginX, g.OriginY, g.CellSize, g.Cols, g.Rows, g.EPSG,
		s.cfg.Year, s.cfg.GatingRadius, s.cfg.RegionPath, s.cfg.FlowlinesPath, s.cfg.DEMPath,
		strings.Join(ids, ","))
}
