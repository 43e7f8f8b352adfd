package landsat

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SceneFiles are the band files of one product found on disk.
type SceneFiles struct {
	ID       string
	Sensor   Sensor
	Acquired time.Time
	QA       string
	NIR      string
	Red      string
}

const qaSuffix = "_QA_PIXEL"

// DiscoverScenes finds every product in dir with a QA_PIXEL band and the
// NIR and red bands its sensor needs. Files follow the USGS naming
// <product id>_<band>.TIF. Products of unknown sensors are skipped.
func DiscoverScenes(dir string) ([]SceneFiles, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene directory: %w", err)
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, ".tif") && !strings.EqualFold(ext, ".tiff") {
			continue
		}
		files[strings.ToUpper(strings.TrimSuffix(name, ext))] = filepath.Join(dir, name)
	}

	var scenes []SceneFiles
	for stem, qaPath := range files {
		if !strings.HasSuffix(stem, qaSuffix) {
			continue
		}
		id := strings.TrimSuffix(stem, qaSuffix)
		sensor, err := SensorFor(id)
		if err != nil {
			continue
		}
		acquired, err := AcquisitionDate(id)
		if err != nil {
			return nil, err
		}
		nir, ok := files[id+"_"+sensor.NIR]
		if !ok {
			return nil, fmt.Errorf("product %s: missing band %s", id, sensor.NIR)
		}
		red, ok := files[id+"_"+sensor.Red]
		if !ok {
			return nil, fmt.Errorf("product %s: missing band %s", id, sensor.Red)
		}
		scenes = append(scenes, SceneFiles{ID: id, Sensor: sensor, Acquired: acquired, QA: qaPath, NIR: nir, Red: red})
	}
	sort.Slice(scenes, func(i, j int) bool {
		if scenes[i].Acquired.Equal(scenes[j].Acquired) {
			return scenes[i].ID < scenes[j].ID
		}
		return scenes[i].Acquired.Before(scenes[j].Acquired)
	})
	return scenes, nil
}

// Filter keeps the scene files acquired inside w.
func Filter(files []SceneFiles, w Window) []SceneFiles {
	var out []SceneFiles
	for _, f := range files {
		if w.Contains(f.Acquired) {
			out = append(out, f)
		}
	}
	return out
}
