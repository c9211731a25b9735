// Package geojson reads and writes layer files as GeoJSON feature
// collections and normalizes properties for embedding in the map page.
package geojson

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Accepted CRS names, all aliases of WGS84 lon/lat.
var wgs84Names = map[string]bool{
	"EPSG:4326":                     true,
	"urn:ogc:def:crs:EPSG::4326":    true,
	"urn:ogc:def:crs:OGC:1.3:CRS84": true,
	"CRS84":                         true,
}

type crsEnvelope struct {
	CRS *struct {
		Type       string `json:"type"`
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// Read loads a feature collection from path. A declared CRS other than
// WGS84 is an error; a missing CRS is assumed WGS84 with a warning.
func Read(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geojson: read %s", path)
	}

	if err := checkCRS(data, path); err != nil {
		return nil, err
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "geojson: parse %s", path)
	}
	return &fc, nil
}

func checkCRS(data []byte, path string) error {
	var env crsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return eris.Wrapf(err, "geojson: parse %s", path)
	}
	if env.CRS == nil {
		zap.L().Warn("no crs declared, assuming EPSG:4326", zap.String("path", path))
		return nil
	}
	name := env.CRS.Properties.Name
	if !wgs84Names[name] {
		return eris.Errorf("geojson: %s declares CRS %q, expected EPSG:4326", path, name)
	}
	return nil
}

// Write marshals fc to path, creating or truncating the file.
func Write(path string, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "geojson: marshal")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return eris.Wrapf(err, "geojson: write %s", path)
	}
	return nil
}

// Sanitize rewrites property values that do not survive JSON embedding.
// time.Time values become RFC3339 strings; everything else passes
// through untouched.
func Sanitize(fc *geojson.FeatureCollection) {
	for _, f := range fc.Features {
		for k, v := range f.Properties {
			if t, ok := v.(time.Time); ok {
				f.Properties[k] = t.Format(time.RFC3339)
			}
		}
	}
}

// Preferred property names, surfaced first in tooltips and exports.
var preferredColumns = []string{"NAME", "GEOID", "COUNTY_NAME", "COUNTY", "STATE"}

// Columns returns up to limit property names across fc, preferred names
// first and the rest alphabetical. It mirrors the leading columns a
// tabular view of the layer would show.
func Columns(fc *geojson.FeatureCollection, limit int) []string {
	seen := map[string]bool{}
	for _, f := range fc.Features {
		for k := range f.Properties {
			seen[k] = true
		}
	}

	var cols []string
	for _, p := range preferredColumns {
		if seen[p] {
			cols = append(cols, p)
			delete(seen, p)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	cols = append(cols, rest...)

	if limit > 0 && len(cols) > limit {
		cols = cols[:limit]
	}
	return cols
}

// StringProp returns the named property as a string, or "" when absent.
func StringProp(f *geojson.Feature, name string) string {
	v, ok := f.Properties[name]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", s), ".0")
	default:
		return fmt.Sprintf("%v", s)
	}
}
