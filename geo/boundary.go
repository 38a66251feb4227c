// Package geo holds borough boundaries and the map projection used to place
// listings inside the map viewport.
package geo

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// NameProperty is the feature property carrying the borough name.
const NameProperty = "boro_name"

// BoroughBoundary is one named borough polygon. Immutable after load.
type BoroughBoundary struct {
	Name     string
	Geometry orb.Geometry
	Bound    orb.Bound
}

// Contains reports whether the lon/lat point falls inside the boundary.
func (b *BoroughBoundary) Contains(lon, lat float64) bool {
	p := orb.Point{lon, lat}
	if !b.Bound.Contains(p) {
		return false
	}
	switch g := b.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	default:
		return false
	}
}

// Rings returns every ring of the boundary, outer and inner.
func (b *BoroughBoundary) Rings() []orb.Ring {
	switch g := b.Geometry.(type) {
	case orb.Polygon:
		return g
	case orb.MultiPolygon:
		var rings []orb.Ring
		for _, poly := range g {
			rings = append(rings, poly...)
		}
		return rings
	default:
		return nil
	}
}

// BoundarySet is the full borough collection plus the raw document it was
// decoded from.
type BoundarySet struct {
	Boroughs []*BoroughBoundary
	raw      []byte
}

// ParseBoundaries decodes a GeoJSON FeatureCollection. Features without a
// polygonal geometry are skipped; a feature without a name is an error.
func ParseBoundaries(data []byte) (*BoundarySet, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("geo: decode feature collection: %w", err)
	}

	set := &BoundarySet{raw: data}
	for i, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		name := strings.TrimSpace(f.Properties.MustString(NameProperty, ""))
		if name == "" {
			return nil, fmt.Errorf("geo: feature %d has no %s property", i, NameProperty)
		}
		set.Boroughs = append(set.Boroughs, &BoroughBoundary{
			Name:     name,
			Geometry: f.Geometry,
			Bound:    f.Geometry.Bound(),
		})
	}
	return set, nil
}

// Raw returns the GeoJSON document as loaded.
func (s *BoundarySet) Raw() []byte {
	return s.raw
}

// Find returns the boundary with the given name, or nil.
func (s *BoundarySet) Find(name string) *BoroughBoundary {
	for _, b := range s.Boroughs {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Locate returns the name of the first boundary containing the point, or ""
// when the point lies outside every borough.
func (s *BoundarySet) Locate(lon, lat float64) string {
	for _, b := range s.Boroughs {
		if b.Contains(lon, lat) {
			return b.Name
		}
	}
	return ""
}

// Names lists the boundary names in document order.
func (s *BoundarySet) Names() []string {
	names := make([]string, 0, len(s.Boroughs))
	for _, b := range s.Boroughs {
		names = append(names, b.Name)
	}
	return names
}
