package landsat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
)

var ErrEmptyInputCollection = errors.New("no imagery left after filtering")

// Window is a half-open acquisition date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// SpringWindow runs from February 1 up to, not including, May 31 of year.
func SpringWindow(year int) Window {
	return Window{
		Start: time.Date(year, time.February, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC),
	}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

type Compositor struct {
	Workers int
	Quiet   bool
	Logger  *slog.Logger
}

// Composite computes the per-pixel median NDVI of the scenes acquired inside
// window. Scenes must share a grid.
func (c Compositor) Composite(ctx context.Context, scenes []Scene, window Window) (*raster.Raster, error) {
	var selected []Scene
	for _, s := range scenes {
		if window.Contains(s.Acquired) {
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%d scenes, none between %s and %s: %w",
			len(scenes), window.Start.Format(time.DateOnly), window.End.Format(time.DateOnly), ErrEmptyInputCollection)
	}

	workers := c.Workers
	if workers < 1 {
		workers = 4
	}
	var progressBar *progressbar.ProgressBar
	if c.Quiet {
		progressBar = progressbar.DefaultSilent(int64(len(selected)), "Computing NDVI")
	} else {
		progressBar = progressbar.Default(int64(len(selected)), "Computing NDVI")
	}

	var (
		mu             sync.Mutex
		ndvis          = make([]*raster.Raster, len(selected))
		errChan        = make(chan error, 1)
		stopProcessing sync.Once
	)
	wp := workerpool.New(workers)
	for i, s := range selected {
		wp.Submit(func() {
			if ctx.Err() != nil {
				stopProcessing.Do(func() { errChan <- ctx.Err() })
				return
			}
			ndvi, err := SceneNDVI(s)
			if err != nil {
				stopProcessing.Do(func() { errChan <- fmt.Errorf("scene %s: %w", s.ID, err) })
				return
			}
			mu.Lock()
			ndvis[i] = ndvi
			progressBar.Add(1)
			mu.Unlock()
		})
	}

	go func() {
		wp.StopWait()
		close(errChan)
	}()
	if err := <-errChan; err != nil {
		return nil, err
	}

	composite, err := Median("ndvi", ndvis)
	if err != nil {
		return nil, err
	}
	if composite.Empty() {
		return nil, fmt.Errorf("%d scenes fully masked: %w", len(selected), ErrEmptyInputCollection)
	}
	if c.Logger != nil {
		c.Logger.Info("ndvi composite built",
			slog.Int("scenes", len(selected)),
			slog.Float64("coverage", composite.Coverage()),
		)
	}
	return composite, nil
}

// Median is the per-pixel median of the present samples of each layer.
func Median(name string, layers []*raster.Raster) (*raster.Raster, error) {
	if len(layers) == 0 {
		return nil, ErrEmptyInputCollection
	}
	g := layers[0].Grid
	for _, l := range layers[1:] {
		if !l.Grid.Equal(g) {
			return nil, fmt.Errorf("median of %s: %w", l.Name, raster.ErrGridMismatch)
		}
	}
	out := raster.New(g, name)
	values := make([]float64, 0, len(layers))
	for i := range out.Data {
		values = values[:0]
		for _, l := range layers {
			if l.Valid[i] {
				values = append(values, l.Data[i])
			}
		}
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		n := len(values)
		m := values[n/2]
		if n%2 == 0 {
			m = (values[n/2-1] + values[n/2]) / 2
		}
		out.Data[i] = m
		out.Valid[i] = true
	}
	return out, nil
}

// Greenness rescales NDVI 0..0.8 onto 0..1.
func Greenness(ndvi *raster.Raster) *raster.Raster {
	return ndvi.UnitScale(0, 0.8).Clamp(0, 1).Rename("greenness")
}
