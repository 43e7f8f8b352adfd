// Package gdalio is the GDAL boundary of the pipeline: it reads vector and
// raster inputs onto the working grid and writes GeoTIFF exports.
package gdalio

import (
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/dryfly-scientist/Hydro-Map/internal/utils"
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(godal.RegisterAll)
}

func quietLogger() godal.ErrorHandler {
	return func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}
}

func open(path string, opts ...godal.OpenOption) (*godal.Dataset, error) {
	register()
	var (
		ds  *godal.Dataset
		err error
	)
	opts = append(opts, godal.ErrLogger(quietLogger()))
	utils.ExecuteWithMutex(func() {
		ds, err = godal.Open(path, opts...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return ds, nil
}
