// Package watershed maps a clicked point to the watershed containing it and
// clips layers to that watershed.
package watershed

import (
	"errors"
	"fmt"

	"github.com/dryfly-scientist/Hydro-Map/internal/geometry"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/paulmach/orb"
)

var ErrUnresolvedGeometry = errors.New("point is not inside any watershed")

// State is the interactive phase reported with each click.
type State string

const (
	Idle     State = "idle"
	Resolved State = "resolved"
)

// Watershed is a resolved drainage unit.
type Watershed struct {
	ID       string
	Name     string
	Geometry orb.Geometry
}

type Resolver struct {
	Watersheds geometry.FeatureCollection
	IDField    string
	NameField  string
}

// Resolve returns the first watershed, in collection order, containing p.
func (r Resolver) Resolve(p orb.Point) (Watershed, error) {
	f, ok := r.Watersheds.Containing(p)
	if !ok {
		return Watershed{}, fmt.Errorf("point %.1f,%.1f: %w", p[0], p[1], ErrUnresolvedGeometry)
	}
	ws := Watershed{ID: f.ID, Geometry: f.Geometry}
	if r.IDField != "" {
		if id := f.Property(r.IDField); id != "" {
			ws.ID = id
		}
	}
	if r.NameField != "" {
		ws.Name = f.Property(r.NameField)
	}
	return ws, nil
}

// List returns every watershed in collection order.
func (r Resolver) List() []Watershed {
	out := make([]Watershed, 0, r.Watersheds.Len())
	for _, f := range r.Watersheds.Features {
		ws := Watershed{ID: f.ID, Geometry: f.Geometry}
		if r.IDField != "" && f.Property(r.IDField) != "" {
			ws.ID = f.Property(r.IDField)
		}
		if r.NameField != "" {
			ws.Name = f.Property(r.NameField)
		}
		out = append(out, ws)
	}
	return out
}

// Clip crops r to the bounding window of ws and drops cells whose centre
// falls outside the watershed.
func Clip(r *raster.Raster, ws Watershed) (*raster.Raster, error) {
	window, ok := r.Grid.Window(ws.Geometry.Bound())
	if !ok {
		return nil, fmt.Errorf("watershed %s does not overlap %s: %w", ws.ID, r.Name, ErrUnresolvedGeometry)
	}
	cropped, err := r.Crop(window)
	if err != nil {
		return nil, err
	}
	inside := geometry.PolygonMask(window, "watershed", []orb.Geometry{ws.Geometry})
	return cropped.UpdateMask(inside)
}
