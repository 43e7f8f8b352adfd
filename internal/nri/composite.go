// Package nri fuses greenness, stream proximity and terrain wetness into the
// Nitrogen Retention Index, and runs the batch phase that produces it.
package nri

import (
	"errors"
	"fmt"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
)

var ErrFactorRange = errors.New("factor outside [0, 1]")

const rangeTolerance = 1e-9

// Inputs are the aligned layers of the index. Buffer and Region are
// 0/1 masks.
type Inputs struct {
	Greenness *raster.Raster
	Proximity *raster.Raster
	Lowland   *raster.Raster
	FlowProxy *raster.Raster
	Buffer    *raster.Raster
	Region    *raster.Raster
}

func checkRange(r *raster.Raster) error {
	for i, v := range r.Data {
		if !r.Valid[i] {
			continue
		}
		if v < -rangeTolerance || v > 1+rangeTolerance {
			col, row := i%r.Cols, i/r.Cols
			return fmt.Errorf("%s = %g at %d,%d: %w", r.Name, v, col, row, ErrFactorRange)
		}
	}
	return nil
}

// Composite multiplies the four factors, restricts the product to the
// corridor and the region, and stretches it onto 0..1.
func Composite(in Inputs) (*raster.Raster, error) {
	factors := []*raster.Raster{in.Greenness, in.Proximity, in.Lowland, in.FlowProxy}
	for _, f := range factors {
		if f == nil {
			return nil, errors.New("nri: missing factor")
		}
		if err := checkRange(f); err != nil {
			return nil, err
		}
	}
	product, err := raster.Multiply("nri", factors...)
	if err != nil {
		return nil, fmt.Errorf("nri product: %w", err)
	}
	if in.Buffer != nil {
		if product, err = product.UpdateMask(in.Buffer); err != nil {
			return nil, fmt.Errorf("nri buffer mask: %w", err)
		}
	}
	if in.Region != nil {
		if product, err = product.UpdateMask(in.Region); err != nil {
			return nil, fmt.Errorf("nri region mask: %w", err)
		}
	}
	return product.Renormalize().Clamp(0, 1), nil
}
