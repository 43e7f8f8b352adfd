package nri

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dryfly-scientist/Hydro-Map/internal/geometry"
	"github.com/dryfly-scientist/Hydro-Map/internal/landsat"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/riparian"
	"github.com/dryfly-scientist/Hydro-Map/internal/stream"
	"github.com/dryfly-scientist/Hydro-Map/internal/terrain"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

const defaultSaturationLimit = 0.5

// BatchInputs are the study-region inputs, already on the working grid.
type BatchInputs struct {
	Grid         raster.Grid
	Region       []orb.Geometry
	Scenes       []landsat.Scene
	Window       landsat.Window
	DEM          *raster.Raster
	Flowlines    []orb.LineString
	GatingRadius float64
}

// Layers is the immutable result of a batch run. Click evaluation reads it
// concurrently and never writes to it.
type Layers struct {
	Grid      raster.Grid
	NDVI      *raster.Raster
	Greenness *raster.Raster
	Terrain   terrain.Layers
	Stream    stream.Layers
	Corridor  riparian.Corridor
	Buffer    *raster.Raster
	Region    *raster.Raster
	NRI       *raster.Raster
}

type Builder struct {
	Compositor      landsat.Compositor
	Logger          *slog.Logger
	SaturationLimit float64
}

func (b Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Build runs greenness, terrain, proximity and buffer concurrently, then
// composites the index.
func (b Builder) Build(ctx context.Context, in BatchInputs) (*Layers, error) {
	if in.DEM == nil {
		return nil, errors.New("batch: missing elevation model")
	}
	if !in.DEM.Grid.Equal(in.Grid) {
		return nil, fmt.Errorf("batch: elevation model: %w", raster.ErrGridMismatch)
	}
	radius := in.GatingRadius
	if radius <= 0 {
		radius = riparian.GatingRadius
	}
	log := b.logger()
	out := &Layers{Grid: in.Grid}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ndvi, err := b.Compositor.Composite(gctx, in.Scenes, in.Window)
		if err != nil {
			return fmt.Errorf("greenness: %w", err)
		}
		out.NDVI = ndvi
		out.Greenness = landsat.Greenness(ndvi)
		return nil
	})
	g.Go(func() error {
		layers, err := terrain.Normalize(in.DEM)
		if err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
		out.Terrain = layers
		return nil
	})
	g.Go(func() error {
		out.Stream = stream.Build(in.Grid, in.Flowlines, radius)
		return nil
	})
	g.Go(func() error {
		out.Corridor = riparian.NewCorridor(in.Flowlines, radius)
		out.Buffer = out.Corridor.Mask(in.Grid)
		if len(in.Region) > 0 {
			out.Region = geometry.PolygonMask(in.Grid, "region", in.Region)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	limit := b.SaturationLimit
	if limit <= 0 {
		limit = defaultSaturationLimit
	}
	for _, r := range []*raster.Raster{out.Greenness, out.Terrain.ElevationNorm, out.Terrain.SlopeNorm} {
		if rep := raster.SaturationReport(r, 0, 1); rep.Exceeds(limit) {
			log.Warn("normalization range pins most samples",
				slog.String("layer", rep.Name),
				slog.Float64("low", rep.Low),
				slog.Float64("high", rep.High),
			)
		}
	}

	index, err := Composite(Inputs{
		Greenness: out.Greenness,
		Proximity: out.Stream.Proximity,
		Lowland:   out.Terrain.Lowland,
		FlowProxy: out.Terrain.FlowProxy,
		Buffer:    out.Buffer,
		Region:    out.Region,
	})
	if err != nil {
		return nil, err
	}
	out.NRI = index

	s := index.Stats()
	log.Info("nri built",
		slog.Int("cols", in.Grid.Cols),
		slog.Int("rows", in.Grid.Rows),
		slog.Int("cells", s.Count),
		slog.Float64("mean", s.Mean),
	)
	return out, nil
}
