package geomops

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// TotalBounds returns the combined bounds of all feature geometries in
// the given collections. ok is false when no geometry was seen.
func TotalBounds(fcs ...*geojson.FeatureCollection) (b *geom.Bounds, ok bool) {
	bounds := geom.NewBounds(geom.XY)
	for _, fc := range fcs {
		if fc == nil {
			continue
		}
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			bounds = bounds.Extend(f.Geometry)
			ok = true
		}
	}
	if !ok {
		return nil, false
	}
	return bounds, true
}

// Center returns the midpoint of b as (lat, lng).
func Center(b *geom.Bounds) (lat, lng float64) {
	lng = (b.Min(0) + b.Max(0)) / 2
	lat = (b.Min(1) + b.Max(1)) / 2
	return lat, lng
}
