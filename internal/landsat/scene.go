package landsat

import (
	"time"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
)

const (
	reflectanceScale  = 0.0000275
	reflectanceOffset = -0.2
)

// QA_PIXEL bits that disqualify a pixel.
const (
	qaDilatedCloud = 1 << 1
	qaCloud        = 1 << 3
	qaCloudShadow  = 1 << 4
	qaSnow         = 1 << 5

	qaRejectMask = qaDilatedCloud | qaCloud | qaCloudShadow | qaSnow
)

// Scene holds the bands of one product already aligned to the working grid.
type Scene struct {
	ID       string
	Sensor   Sensor
	Acquired time.Time
	QA       *raster.Raster
	NIR      *raster.Raster
	Red      *raster.Raster
}

// MaskQA drops the pixels of band flagged as dilated cloud, cloud, shadow or snow.
func MaskQA(band, qa *raster.Raster) (*raster.Raster, error) {
	clearSky := qa.Map("qa_clear", func(v float64) float64 {
		if int64(v)&qaRejectMask != 0 {
			return 0
		}
		return 1
	})
	return band.UpdateMask(clearSky)
}

func ScaleReflectance(dn *raster.Raster) *raster.Raster {
	return dn.Map(dn.Name, func(v float64) float64 {
		return v*reflectanceScale + reflectanceOffset
	})
}

// NDVI is (nir - red) / (nir + red); a zero denominator leaves the pixel absent.
func NDVI(nir, red *raster.Raster) (*raster.Raster, error) {
	return raster.Combine("ndvi", func(vs []float64) float64 {
		return (vs[0] - vs[1]) / (vs[0] + vs[1])
	}, nir, red)
}

// SceneNDVI masks, rescales and combines the bands of one scene.
func SceneNDVI(s Scene) (*raster.Raster, error) {
	nir, err := MaskQA(s.NIR, s.QA)
	if err != nil {
		return nil, err
	}
	red, err := MaskQA(s.Red, s.QA)
	if err != nil {
		return nil, err
	}
	return NDVI(ScaleReflectance(nir), ScaleReflectance(red))
}
