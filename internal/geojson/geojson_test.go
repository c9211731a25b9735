package geojson

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	gj "github.com/twpayne/go-geom/encoding/geojson"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"GEOID": "51760010100", "NAME": "Tract 101"},
      "geometry": {"type": "Polygon", "coordinates": [[[-77.5,37.5],[-77.4,37.5],[-77.4,37.6],[-77.5,37.6],[-77.5,37.5]]]}
    }
  ]
}`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layer.geojson")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRead(t *testing.T) {
	path := writeTemp(t, sampleCollection)

	fc, err := Read(path)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "51760010100", fc.Features[0].Properties["GEOID"])
	assert.IsType(t, &geom.Polygon{}, fc.Features[0].Geometry)
}

func TestReadDeclaredWGS84(t *testing.T) {
	doc := `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:OGC:1.3:CRS84"}},
  "features": []
}`
	path := writeTemp(t, doc)

	_, err := Read(path)
	assert.NoError(t, err)
}

func TestReadRejectsForeignCRS(t *testing.T) {
	doc := `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "EPSG:3857"}},
  "features": []
}`
	path := writeTemp(t, doc)

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EPSG:3857")
	assert.Contains(t, err.Error(), "expected EPSG:4326")
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.geojson"))
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	path := writeTemp(t, sampleCollection)
	fc, err := Read(path)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.geojson")
	require.NoError(t, Write(out, fc))

	back, err := Read(out)
	require.NoError(t, err)
	require.Len(t, back.Features, 1)
	assert.Equal(t, "Tract 101", back.Features[0].Properties["NAME"])
}

func TestSanitize(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fc := &gj.FeatureCollection{
		Features: []*gj.Feature{
			{Properties: map[string]interface{}{
				"fetched_at": ts,
				"NAME":       "Tract 101",
			}},
		},
	}

	Sanitize(fc)

	assert.Equal(t, "2025-06-01T12:00:00Z", fc.Features[0].Properties["fetched_at"])
	assert.Equal(t, "Tract 101", fc.Features[0].Properties["NAME"])
}

func TestColumns(t *testing.T) {
	fc := &gj.FeatureCollection{
		Features: []*gj.Feature{
			{Properties: map[string]interface{}{
				"zz_extra": 1, "NAME": "a", "GEOID": "b", "aa_extra": 2,
			}},
		},
	}

	cols := Columns(fc, 3)
	assert.Equal(t, []string{"NAME", "GEOID", "aa_extra"}, cols)

	all := Columns(fc, 0)
	assert.Equal(t, []string{"NAME", "GEOID", "aa_extra", "zz_extra"}, all)
}

func TestStringProp(t *testing.T) {
	f := &gj.Feature{Properties: map[string]interface{}{
		"NAME":   "Tract 101",
		"COUNTY": float64(760),
	}}

	assert.Equal(t, "Tract 101", StringProp(f, "NAME"))
	assert.Equal(t, "760", StringProp(f, "COUNTY"))
	assert.Equal(t, "", StringProp(f, "MISSING"))
}
