package nri

import (
	"fmt"
	"math"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
)

// RetentionProxy is sqrt(greenness) * proximity * (1 - slope_norm) * flow_norm.
func RetentionProxy(greenness, proximity, slopeNorm, flowNorm *raster.Raster) (*raster.Raster, error) {
	p, err := raster.Combine("retention_proxy", func(vs []float64) float64 {
		return math.Sqrt(vs[0]) * vs[1] * (1 - vs[2]) * vs[3]
	}, greenness, proximity, slopeNorm, flowNorm)
	if err != nil {
		return nil, fmt.Errorf("retention proxy: %w", err)
	}
	return p, nil
}

// SpatializedLoad distributes flux (mg/s) by the flow-weighted retention
// proxy: flux * flow_norm * proxy.
func SpatializedLoad(proxy, flowNorm *raster.Raster, flux float64) (*raster.Raster, error) {
	load, err := raster.Combine("nitrate_load", func(vs []float64) float64 {
		return flux * vs[0] * vs[1]
	}, flowNorm, proxy)
	if err != nil {
		return nil, fmt.Errorf("spatialized load: %w", err)
	}
	return load, nil
}
