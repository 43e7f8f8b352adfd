package gdalio

import (
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/dryfly-scientist/Hydro-Map/internal/utils"
	"github.com/paulmach/orb"
)

const wgs84 = 4326

// Projector transforms WGS84 longitude/latitude to a projected CRS and back.
type Projector struct {
	src *godal.SpatialRef
	dst *godal.SpatialRef
	tr  *godal.Transform
	inv *godal.Transform
}

func NewProjector(epsg int) (*Projector, error) {
	register()
	src, err := godal.NewSpatialRefFromEPSG(wgs84)
	if err != nil {
		return nil, err
	}
	dst, err := godal.NewSpatialRefFromEPSG(epsg)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("EPSG:%d: %w", epsg, err)
	}
	tr, err := godal.NewTransform(src, dst)
	if err != nil {
		src.Close()
		dst.Close()
		return nil, fmt.Errorf("transform to EPSG:%d: %w", epsg, err)
	}
	inv, err := godal.NewTransform(dst, src)
	if err != nil {
		tr.Close()
		src.Close()
		dst.Close()
		return nil, fmt.Errorf("transform from EPSG:%d: %w", epsg, err)
	}
	return &Projector{src: src, dst: dst, tr: tr, inv: inv}, nil
}

func transform(tr *godal.Transform, x, y float64) (orb.Point, error) {
	xs := []float64{x}
	ys := []float64{y}
	var err error
	utils.ExecuteWithMutex(func() {
		err = tr.TransformEx(xs, ys, nil, nil)
	})
	if err != nil {
		return orb.Point{}, fmt.Errorf("transform error: %w", err)
	}
	return orb.Point{xs[0], ys[0]}, nil
}

func (p *Projector) Forward(lon, lat float64) (orb.Point, error) {
	return transform(p.tr, lon, lat)
}

// Inverse maps projected x/y back to WGS84 longitude/latitude.
func (p *Projector) Inverse(x, y float64) (orb.Point, error) {
	return transform(p.inv, x, y)
}

func (p *Projector) Close() {
	p.inv.Close()
	p.tr.Close()
	p.dst.Close()
	p.src.Close()
}
