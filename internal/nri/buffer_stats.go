package nri

import (
	"fmt"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/riparian"
)

// BufferStat holds the means of each layer inside one corridor width.
// A mean with no samples is left empty.
type BufferStat struct {
	RadiusM     float64  `csv:"Buffer_m" json:"buffer_m"`
	Cells       int      `csv:"cells" json:"cells"`
	NDVI        *float64 `csv:"NDVI" json:"ndvi"`
	NRI         *float64 `csv:"NRI" json:"nri"`
	NitrateLoad *float64 `csv:"Nitrate_Load" json:"nitrate_load"`
}

// BufferStats reports the mean NDVI, NRI and load (when given) inside the
// corridor of each radius.
func BufferStats(layers *Layers, radii []float64, load *raster.Raster) ([]BufferStat, error) {
	if len(radii) == 0 {
		radii = riparian.StatisticsRadii
	}
	stats := make([]BufferStat, 0, len(radii))
	for _, r := range radii {
		mask := riparian.NewCorridor(layers.Corridor.Flowlines, r).Mask(layers.Grid)
		if layers.Region != nil {
			var err error
			if mask, err = mask.UpdateMask(layers.Region); err != nil {
				return nil, err
			}
		}
		stat := BufferStat{RadiusM: r}
		for _, v := range mask.Data {
			if v != 0 {
				stat.Cells++
			}
		}
		var err error
		if stat.NDVI, err = meanWithin(layers.NDVI, mask); err != nil {
			return nil, err
		}
		if stat.NRI, err = meanWithin(layers.NRI, mask); err != nil {
			return nil, err
		}
		if load != nil {
			if stat.NitrateLoad, err = meanWithin(load, mask); err != nil {
				return nil, err
			}
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

func meanWithin(r, mask *raster.Raster) (*float64, error) {
	if r == nil {
		return nil, nil
	}
	m, ok, err := r.MeanWhere(mask)
	if err != nil {
		return nil, fmt.Errorf("buffer mean of %s: %w", r.Name, err)
	}
	if !ok {
		return nil, nil
	}
	return &m, nil
}
