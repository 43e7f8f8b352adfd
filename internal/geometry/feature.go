// Package geometry wraps orb geometries with the feature filters and
// rasterization helpers the index pipeline needs.
package geometry

import (
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type Feature struct {
	ID         string            `json:"id"`
	Geometry   orb.Geometry      `json:"-"`
	Properties map[string]string `json:"properties"`
}

func (f Feature) Property(name string) string {
	if f.Properties == nil {
		return ""
	}
	return f.Properties[name]
}

type FeatureCollection struct {
	Features []Feature
}

func (fc FeatureCollection) Len() int {
	return len(fc.Features)
}

// FilterIn keeps the features whose field value is one of names.
func (fc FeatureCollection) FilterIn(field string, names []string) FeatureCollection {
	var out FeatureCollection
	for _, f := range fc.Features {
		if slices.Contains(names, f.Property(field)) {
			out.Features = append(out.Features, f)
		}
	}
	return out
}

// FilterBounds keeps the features whose bound intersects b.
func (fc FeatureCollection) FilterBounds(b orb.Bound) FeatureCollection {
	var out FeatureCollection
	for _, f := range fc.Features {
		if f.Geometry != nil && f.Geometry.Bound().Intersects(b) {
			out.Features = append(out.Features, f)
		}
	}
	return out
}

// Containing returns the first feature in collection order whose polygon
// contains p.
func (fc FeatureCollection) Containing(p orb.Point) (Feature, bool) {
	for _, f := range fc.Features {
		if Contains(f.Geometry, p) {
			return f, true
		}
	}
	return Feature{}, false
}

func (fc FeatureCollection) Bound() orb.Bound {
	var b orb.Bound
	first := true
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		if first {
			b = f.Geometry.Bound()
			first = false
			continue
		}
		b = b.Union(f.Geometry.Bound())
	}
	return b
}

// Union bags every polygon of the collection into one multipolygon.
func (fc FeatureCollection) Union() orb.MultiPolygon {
	var mp orb.MultiPolygon
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			mp = append(mp, g)
		case orb.MultiPolygon:
			mp = append(mp, g...)
		}
	}
	return mp
}

// Lines flattens every line geometry of the collection.
func (fc FeatureCollection) Lines() []orb.LineString {
	var lines []orb.LineString
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = append(lines, g)
		case orb.MultiLineString:
			lines = append(lines, g...)
		}
	}
	return lines
}

func (fc FeatureCollection) Geometries() []orb.Geometry {
	out := make([]orb.Geometry, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry != nil {
			out = append(out, f.Geometry)
		}
	}
	return out
}

func Contains(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Collection:
		for _, c := range g {
			if Contains(c, p) {
				return true
			}
		}
	}
	return false
}

// DistanceToLines is the planar distance from p to the nearest line.
func DistanceToLines(p orb.Point, lines []orb.LineString) (float64, bool) {
	best, found := 0.0, false
	for _, l := range lines {
		if len(l) == 0 {
			continue
		}
		d := planar.DistanceFrom(l, p)
		if !found || d < best {
			best, found = d, true
		}
	}
	return best, found
}
