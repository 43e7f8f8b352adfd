package gdalio

import (
	"fmt"
	"strconv"

	"github.com/airbusgeo/godal"
	"github.com/dryfly-scientist/Hydro-Map/internal/geometry"
	"github.com/dryfly-scientist/Hydro-Map/internal/utils"
	"github.com/paulmach/orb/encoding/wkb"
)

// ReadFeatures reads every feature of the first layer of path, reprojected
// to epsg. The feature ID is taken from idField when set, otherwise from the
// feature index.
func ReadFeatures(path string, epsg int, idField string) (geometry.FeatureCollection, error) {
	ds, err := open(path, godal.VectorOnly())
	if err != nil {
		return geometry.FeatureCollection{}, err
	}
	defer ds.Close()

	layers := ds.Layers()
	if len(layers) == 0 {
		return geometry.FeatureCollection{}, fmt.Errorf("%s has no vector layer", path)
	}
	target, err := godal.NewSpatialRefFromEPSG(epsg)
	if err != nil {
		return geometry.FeatureCollection{}, fmt.Errorf("EPSG:%d: %w", epsg, err)
	}
	defer target.Close()

	var fc geometry.FeatureCollection
	utils.ExecuteWithMutex(func() {
		layer := layers[0]
		layer.ResetReading()
		for i := 0; ; i++ {
			feat := layer.NextFeature()
			if feat == nil {
				break
			}
			f, ferr := convertFeature(feat, target, i, idField)
			feat.Close()
			if ferr != nil {
				err = fmt.Errorf("%s feature %d: %w", path, i, ferr)
				return
			}
			if f.Geometry != nil {
				fc.Features = append(fc.Features, f)
			}
		}
	})
	if err != nil {
		return geometry.FeatureCollection{}, err
	}
	return fc, nil
}

func convertFeature(feat *godal.Feature, target *godal.SpatialRef, index int, idField string) (geometry.Feature, error) {
	props := make(map[string]string)
	for name, field := range feat.Fields() {
		props[name] = field.String()
	}
	f := geometry.Feature{ID: strconv.Itoa(index), Properties: props}
	if idField != "" && props[idField] != "" {
		f.ID = props[idField]
	}

	geom := feat.Geometry()
	if geom == nil {
		return f, nil
	}
	defer geom.Close()
	if geom.Empty() {
		return f, nil
	}
	if err := geom.Reproject(target); err != nil {
		return f, fmt.Errorf("reproject: %w", err)
	}
	raw, err := geom.WKB()
	if err != nil {
		return f, fmt.Errorf("wkb export: %w", err)
	}
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return f, fmt.Errorf("wkb decode: %w", err)
	}
	f.Geometry = g
	return f, nil
}
