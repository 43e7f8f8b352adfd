package gdalio

import (
	"fmt"

	"github.com/dryfly-scientist/Hydro-Map/internal/landsat"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/schollz/progressbar/v3"
)

// LoadScenes warps the QA, NIR and red bands of every scene onto g.
func LoadScenes(files []landsat.SceneFiles, g raster.Grid) ([]landsat.Scene, error) {
	progressBar := progressbar.Default(int64(len(files)), "Loading Landsat scenes")
	scenes := make([]landsat.Scene, 0, len(files))
	for _, f := range files {
		qa, err := ReadRaster(f.QA, g, "QA_PIXEL", Nearest)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", f.ID, err)
		}
		nir, err := ReadRaster(f.NIR, g, f.Sensor.NIR, Nearest)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", f.ID, err)
		}
		red, err := ReadRaster(f.Red, g, f.Sensor.Red, Nearest)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", f.ID, err)
		}
		scenes = append(scenes, landsat.Scene{
			ID:       f.ID,
			Sensor:   f.Sensor,
			Acquired: f.Acquired,
			QA:       qa,
			NIR:      nir,
			Red:      red,
		})
		progressBar.Add(1)
	}
	return scenes, nil
}
