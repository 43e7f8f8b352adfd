package gdalio

import (
	"github.com/dryfly-scientist/Hydro-Map/internal/geometry"
	"github.com/dryfly-scientist/Hydro-Map/internal/landsat"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/tnri"
)

// Source reads and writes every input and export of the pipeline through
// GDAL, reprojecting vectors to EPSG.
type Source struct {
	EPSG int
}

func (s Source) Features(path, idField string) (geometry.FeatureCollection, error) {
	return ReadFeatures(path, s.EPSG, idField)
}

func (s Source) Raster(path string, g raster.Grid, name, resampling string) (*raster.Raster, error) {
	return ReadRaster(path, g, name, resampling)
}

func (s Source) Scenes(files []landsat.SceneFiles, g raster.Grid) ([]landsat.Scene, error) {
	return LoadScenes(files, g)
}

func (s Source) WriteGeoTIFF(path string, r *raster.Raster, maxPixels int64) error {
	return WriteGeoTIFF(path, r, maxPixels)
}

func (s Source) Projector() (tnri.Projector, error) {
	if s.EPSG == wgs84 {
		return tnri.IdentityProjector{}, nil
	}
	return NewProjector(s.EPSG)
}
