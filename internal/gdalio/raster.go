package gdalio

import (
	"fmt"
	"math"
	"strconv"

	"github.com/airbusgeo/godal"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/utils"
)

var ErrPixelBudget = raster.ErrPixelBudget

const nodata = -9999.0

const (
	Nearest  = raster.Nearest
	Bilinear = raster.Bilinear
)

// ReadRaster warps the first band of path onto g.
func ReadRaster(path string, g raster.Grid, name, resampling string) (*raster.Raster, error) {
	src, err := open(path, godal.RasterOnly())
	if err != nil {
		return nil, err
	}
	defer src.Close()

	b := g.Bounds()
	switches := []string{
		"-of", "MEM",
		"-t_srs", "EPSG:" + strconv.Itoa(g.EPSG),
		"-te", ftoa(b.Min[0]), ftoa(b.Min[1]), ftoa(b.Max[0]), ftoa(b.Max[1]),
		"-ts", strconv.Itoa(g.Cols), strconv.Itoa(g.Rows),
		"-r", resampling,
		"-ot", "Float64",
		"-dstnodata", ftoa(nodata),
	}

	data := make([]float64, g.Size())
	utils.ExecuteWithMutex(func() {
		var warped *godal.Dataset
		warped, err = src.Warp("", switches, godal.ErrLogger(quietLogger()))
		if err != nil {
			return
		}
		defer warped.Close()
		bands := warped.Bands()
		if len(bands) == 0 {
			err = fmt.Errorf("no raster band")
			return
		}
		err = bands[0].Read(0, 0, data, g.Cols, g.Rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to warp %s: %w", path, err)
	}
	for i, v := range data {
		if v == nodata {
			data[i] = math.NaN()
		}
	}
	return raster.FromValues(g, name, data)
}

// WriteGeoTIFF writes r as a single-band Float32 GeoTIFF with nodata -9999.
func WriteGeoTIFF(path string, r *raster.Raster, maxPixels int64) error {
	if err := r.CheckBudget(maxPixels); err != nil {
		return err
	}
	register()
	buf := make([]float32, r.Size())
	for i, v := range r.Values(nodata) {
		buf[i] = float32(v)
	}

	var err error
	utils.ExecuteWithMutex(func() {
		var ds *godal.Dataset
		ds, err = godal.Create(godal.GTiff, path, 1, godal.Float32, r.Cols, r.Rows,
			godal.CreationOption("COMPRESS=DEFLATE", "TILED=YES"))
		if err != nil {
			return
		}
		defer func() {
			if cerr := ds.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		if err = ds.SetGeoTransform(r.GeoTransform()); err != nil {
			return
		}
		var sr *godal.SpatialRef
		if sr, err = godal.NewSpatialRefFromEPSG(r.EPSG); err != nil {
			return
		}
		defer sr.Close()
		if err = ds.SetSpatialRef(sr); err != nil {
			return
		}
		band := ds.Bands()[0]
		if err = band.SetNoData(nodata); err != nil {
			return
		}
		err = band.Write(0, 0, buf, r.Cols, r.Rows)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
