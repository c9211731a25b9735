// Package render writes the interactive HTML map the field reps open
// on their phones: base tile layers, one colored overlay per map
// layer, tooltips, a layer control, a legend, and GPS locate and
// fullscreen controls. The page is fully self-contained apart from
// tile and plugin CDNs.
package render

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"os"
	"time"

	"github.com/rotisserie/eris"
	gj "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/emg-field-ops/fieldmap/internal/geojson"
	"github.com/emg-field-ops/fieldmap/internal/layer"
)

//go:embed map.html.tmpl
var mapTemplate string

// Overlay is one layer ready for embedding.
type Overlay struct {
	Name    string
	Data    template.JS
	Style   layer.Style
	Tooltip []string
	Show    bool
}

// Page is everything the map template needs.
type Page struct {
	Title       string
	CenterLat   float64
	CenterLng   float64
	Zoom        int
	Overlays    []Overlay
	GeneratedAt string
}

// BuildPage assembles a Page from prepared layers. Layers with no
// features are left off the map with a warning. Tooltips show the
// leading property columns of each layer.
func BuildPage(title string, lat, lng float64, zoom int, layers []layer.Layer) (Page, error) {
	p := Page{
		Title:       title,
		CenterLat:   lat,
		CenterLng:   lng,
		Zoom:        zoom,
		GeneratedAt: time.Now().Format("2006-01-02 15:04 MST"),
	}

	for _, l := range layers {
		if l.Collection == nil || len(l.Collection.Features) == 0 {
			zap.L().Warn("layer empty, leaving off map", zap.String("layer", string(l.Kind)))
			continue
		}

		geojson.Sanitize(l.Collection)
		data, err := json.Marshal(l.Collection)
		if err != nil {
			return Page{}, eris.Wrapf(err, "render: marshal layer %s", l.Kind)
		}

		p.Overlays = append(p.Overlays, Overlay{
			Name:    l.Kind.Name(),
			Data:    template.JS(data),
			Style:   layer.StyleFor(l.Kind),
			Tooltip: geojson.Columns(l.Collection, 3),
			Show:    true,
		})
	}

	return p, nil
}

// WriteMap renders the page to path.
func WriteMap(path string, p Page) error {
	tmpl, err := template.New("map").Parse(mapTemplate)
	if err != nil {
		return eris.Wrap(err, "render: parse template")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	defer f.Close()

	if err := tmpl.Execute(f, p); err != nil {
		return eris.Wrap(err, "render: execute template")
	}
	return nil
}

// FeatureCount sums the features across collections, for summaries.
func FeatureCount(fcs ...*gj.FeatureCollection) int {
	n := 0
	for _, fc := range fcs {
		if fc != nil {
			n += len(fc.Features)
		}
	}
	return n
}
