// Package layer defines the map layers, their render styles, and
// per-market input definitions.
package layer

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"gopkg.in/yaml.v3"
)

// Kind identifies one of the four layer roles.
type Kind string

const (
	KindBoundary         Kind = "boundary"
	KindOpportunityZones Kind = "opportunity_zones"
	KindQCT              Kind = "qct"
	KindStreets          Kind = "streets"
)

// Kinds lists all layer kinds in render order, boundary first so the
// overlays draw on top of it.
var Kinds = []Kind{KindBoundary, KindOpportunityZones, KindQCT, KindStreets}

// Layer pairs a feature collection with its role on the map.
type Layer struct {
	Kind       Kind
	Collection *geojson.FeatureCollection
}

// Name returns the display name used in the layer control and legend.
func (k Kind) Name() string {
	switch k {
	case KindBoundary:
		return "Service Territory"
	case KindOpportunityZones:
		return "Opportunity Zones"
	case KindQCT:
		return "Qualified Census Tracts"
	case KindStreets:
		return "Extracted Streets"
	default:
		return string(k)
	}
}

// Style is the Leaflet path style for a layer.
type Style struct {
	Color       string
	FillColor   string
	Weight      int
	FillOpacity float64
	DashArray   string
}

// StyleFor returns the render style for a layer kind.
func StyleFor(k Kind) Style {
	switch k {
	case KindBoundary:
		return Style{Color: "#505050", FillColor: "#808080", Weight: 2, FillOpacity: 0.05, DashArray: "6 4"}
	case KindOpportunityZones:
		return Style{Color: "#1d4ed8", FillColor: "#2563eb", Weight: 1, FillOpacity: 0.35}
	case KindQCT:
		return Style{Color: "#cc6000", FillColor: "#ff7800", Weight: 1, FillOpacity: 0.35}
	case KindStreets:
		return Style{Color: "#16a34a", FillColor: "#22c55e", Weight: 2, FillOpacity: 0.8}
	default:
		return Style{Color: "#333333", FillColor: "#999999", Weight: 1, FillOpacity: 0.3}
	}
}

// Market names the input and output paths for one market build.
// Fields left empty fall back to the configured defaults.
type Market struct {
	Title            string `yaml:"title"`
	Boundary         string `yaml:"boundary"`
	OpportunityZones string `yaml:"opportunity_zones"`
	QCT              string `yaml:"qct"`
	Streets          string `yaml:"streets"`
	Output           string `yaml:"output"`
}

type marketsFile struct {
	Markets map[string]Market `yaml:"markets"`
}

// Markets holds named market definitions loaded from a YAML file.
type Markets struct {
	byName map[string]Market
}

// LoadMarkets parses a markets YAML file.
func LoadMarkets(path string) (*Markets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: read markets %s", path)
	}
	var mf marketsFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, eris.Wrapf(err, "layer: parse markets %s", path)
	}
	return &Markets{byName: mf.Markets}, nil
}

// Get returns the named market definition.
func (m *Markets) Get(name string) (Market, error) {
	mk, ok := m.byName[name]
	if !ok {
		return Market{}, eris.Errorf("layer: unknown market %q (known: %v)", name, m.Names())
	}
	return mk, nil
}

// Names lists known market names, sorted.
func (m *Markets) Names() []string {
	names := make([]string, 0, len(m.byName))
	for n := range m.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
