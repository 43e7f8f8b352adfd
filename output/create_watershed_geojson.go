package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dryfly-scientist/Hydro-Map/internal/riparian"
	"github.com/dryfly-scientist/Hydro-Map/internal/watershed"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

const corridorSegments = 16

// WatershedCollection holds the watershed polygon and the part of the
// riparian corridor whose flowlines touch it, in the working projection.
// Pass it through ToWGS84 before writing.
func WatershedCollection(ws watershed.Watershed, corridor riparian.Corridor) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	wf := geojson.NewFeature(ws.Geometry)
	wf.ID = ws.ID
	wf.Properties["kind"] = "watershed"
	wf.Properties["id"] = ws.ID
	wf.Properties["name"] = ws.Name
	fc.Append(wf)

	bound := ws.Geometry.Bound().Pad(corridor.Radius)
	var local []orb.LineString
	for _, l := range corridor.Flowlines {
		if l.Bound().Intersects(bound) {
			local = append(local, l)
		}
	}
	if len(local) > 0 {
		clipped := riparian.NewCorridor(local, corridor.Radius)
		cf := geojson.NewFeature(clipped.Polygons(corridorSegments))
		cf.Properties["kind"] = "riparian_corridor"
		cf.Properties["radius_m"] = corridor.Radius
		fc.Append(cf)
	}
	return fc
}

// ToWGS84 returns a copy of fc with every coordinate passed through inverse,
// which maps projected x/y to longitude/latitude.
func ToWGS84(fc *geojson.FeatureCollection, inverse func(x, y float64) (orb.Point, error)) (*geojson.FeatureCollection, error) {
	var firstErr error
	proj := func(p orb.Point) orb.Point {
		out, err := inverse(p[0], p[1])
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return out
	}

	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		g := project.Geometry(orb.Clone(f.Geometry), proj)
		if firstErr != nil {
			return nil, fmt.Errorf("reproject feature %v: %w", f.ID, firstErr)
		}
		nf := geojson.NewFeature(g)
		nf.ID = f.ID
		for k, v := range f.Properties {
			nf.Properties[k] = v
		}
		out.Append(nf)
	}
	return out, nil
}

// CreateWatershedGeoJson writes fc, which must already be in WGS84.
func CreateWatershedGeoJson(fc *geojson.FeatureCollection, outputGeojsonPath string) (string, error) {
	if !strings.HasSuffix(outputGeojsonPath, ".geojson") {
		outputGeojsonPath += ".geojson"
	}
	file, err := os.Create(outputGeojsonPath)
	if err != nil {
		return "", fmt.Errorf("error creating GeoJSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fc); err != nil {
		return "", fmt.Errorf("error encoding GeoJSON: %w", err)
	}
	return outputGeojsonPath, nil
}
