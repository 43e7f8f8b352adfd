package delivery

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dryfly-scientist/Hydro-Map/internal/cache"
	"github.com/dryfly-scientist/Hydro-Map/internal/geometry"
	"github.com/dryfly-scientist/Hydro-Map/internal/landsat"
	"github.com/dryfly-scientist/Hydro-Map/internal/notification"
	"github.com/dryfly-scientist/Hydro-Map/internal/nri"
	"github.com/dryfly-scientist/Hydro-Map/internal/observability"
	"github.com/dryfly-scientist/Hydro-Map/internal/properties"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/tnri"
	"github.com/jonboulle/clockwork"
)

var (
	ErrNotReady     = errors.New("batch layers not built")
	ErrInvalidClick = errors.New("invalid click")
)

// GeoIO is the file boundary of the pipeline.
type GeoIO interface {
	Features(path, idField string) (geometry.FeatureCollection, error)
	Raster(path string, g raster.Grid, name, resampling string) (*raster.Raster, error)
	Scenes(files []landsat.SceneFiles, g raster.Grid) ([]landsat.Scene, error)
	WriteGeoTIFF(path string, r *raster.Raster, maxPixels int64) error
	Projector() (tnri.Projector, error)
}

type Deps struct {
	IO       GeoIO
	Cache    cache.CacheService[*nri.Layers]
	Notifier *notification.Discord
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Clock    clockwork.Clock
}

// Service owns the batch layers and the click evaluator built on them.
// Clicks only read the layers; a new batch replaces them atomically.
type Service struct {
	cfg      *properties.Config
	io       GeoIO
	cache    cache.CacheService[*nri.Layers]
	notifier *notification.Discord
	metrics  *observability.Metrics
	logger   *slog.Logger
	clock    clockwork.Clock

	mu        sync.RWMutex
	layers    *nri.Layers
	evaluator *tnri.Evaluator
	projector tnri.Projector
}

func NewService(cfg *properties.Config, deps Deps) *Service {
	s := &Service{
		cfg:      cfg,
		io:       deps.IO,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		clock:    deps.Clock,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	return s
}

// Ready reports whether clicks can be evaluated.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evaluator != nil
}

func (s *Service) Layers() *nri.Layers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layers
}

// Close releases the click projector.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.projector.(interface{ Close() }); ok {
		c.Close()
	}
	s.projector = nil
}

func (s *Service) outputPath(name string) (string, error) {
	dir := properties.Path(s.cfg.OutputDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (s *Service) notifyError(msg string) {
	if nerr := s.notifier.SendError(msg); nerr != nil {
		s.logger.Warn("discord notification failed", "error", nerr)
	}
}

func (s *Service) notifySuccess(msg string) {
	if nerr := s.notifier.SendSuccess(msg); nerr != nil {
		s.logger.Warn("discord notification failed", "error", nerr)
	}
}

func (s *Service) exported(kind string) {
	if s.metrics != nil {
		s.metrics.ExportsWritten.WithLabelValues(kind).Inc()
	}
}
