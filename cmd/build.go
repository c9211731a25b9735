package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	gj "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/emg-field-ops/fieldmap/internal/geojson"
	"github.com/emg-field-ops/fieldmap/internal/geomops"
	"github.com/emg-field-ops/fieldmap/internal/layer"
	"github.com/emg-field-ops/fieldmap/internal/render"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the verification map from the configured layer files",
	Long: `Loads the territory boundary plus the opportunity zone, QCT, and street
layers, clips the zone layers to the boundary, and renders the HTML map.

Optional layers that are missing on disk are skipped with a warning.
The boundary is required. Use --market to pull paths from the markets
file instead of the top-level config.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("build"); err != nil {
			return err
		}

		in := buildInputs{
			Boundary:         cfg.Inputs.Boundary,
			OpportunityZones: cfg.Inputs.OpportunityZones,
			QCT:              cfg.Inputs.QCT,
			Streets:          cfg.Inputs.Streets,
			Output:           cfg.Output.HTML,
			Title:            cfg.Map.Title,
			CenterLat:        cfg.Map.CenterLat,
			CenterLng:        cfg.Map.CenterLng,
			Zoom:             cfg.Map.Zoom,
			ClipStreets:      cfg.Clip.Streets,
		}

		market, _ := cmd.Flags().GetString("market")
		if market != "" {
			markets, err := layer.LoadMarkets(cfg.Markets.File)
			if err != nil {
				return err
			}
			mk, err := markets.Get(market)
			if err != nil {
				return err
			}
			in.applyMarket(mk)
		}
		if clip, _ := cmd.Flags().GetBool("clip-streets"); clip {
			in.ClipStreets = true
		}

		return runBuild(in)
	},
}

func init() {
	buildCmd.Flags().String("market", "", "named market from the markets file")
	buildCmd.Flags().Bool("clip-streets", false, "clip the streets layer to the boundary")
	rootCmd.AddCommand(buildCmd)
}

type buildInputs struct {
	Boundary         string
	OpportunityZones string
	QCT              string
	Streets          string
	Output           string
	Title            string
	CenterLat        float64
	CenterLng        float64
	Zoom             int
	ClipStreets      bool
}

func (in *buildInputs) applyMarket(mk layer.Market) {
	if mk.Title != "" {
		in.Title = mk.Title
	}
	if mk.Boundary != "" {
		in.Boundary = mk.Boundary
	}
	if mk.OpportunityZones != "" {
		in.OpportunityZones = mk.OpportunityZones
	}
	if mk.QCT != "" {
		in.QCT = mk.QCT
	}
	if mk.Streets != "" {
		in.Streets = mk.Streets
	}
	if mk.Output != "" {
		in.Output = mk.Output
	}
}

func runBuild(in buildInputs) error {
	log := zap.L().With(zap.String("command", "build"))

	boundary, err := geojson.Read(in.Boundary)
	if err != nil {
		return eris.Wrap(err, "build: boundary layer")
	}

	oz, err := readOptionalLayer(in.OpportunityZones, layer.KindOpportunityZones)
	if err != nil {
		return err
	}
	qctFC, err := readOptionalLayer(in.QCT, layer.KindQCT)
	if err != nil {
		return err
	}
	streets, err := readOptionalLayer(in.Streets, layer.KindStreets)
	if err != nil {
		return err
	}

	clipper, err := geomops.NewClipper(boundary)
	if err != nil {
		return err
	}

	if oz != nil {
		before := len(oz.Features)
		if oz, err = clipper.Clip(oz); err != nil {
			return eris.Wrap(err, "build: clip opportunity zones")
		}
		log.Info("clipped opportunity zones",
			zap.Int("before", before), zap.Int("after", len(oz.Features)))
	}
	if qctFC != nil {
		before := len(qctFC.Features)
		if qctFC, err = clipper.Clip(qctFC); err != nil {
			return eris.Wrap(err, "build: clip qct")
		}
		log.Info("clipped qct tracts",
			zap.Int("before", before), zap.Int("after", len(qctFC.Features)))
	}
	if streets != nil && in.ClipStreets {
		if streets, err = clipper.Clip(streets); err != nil {
			return eris.Wrap(err, "build: clip streets")
		}
	}

	lat, lng := in.CenterLat, in.CenterLng
	if bounds, ok := geomops.TotalBounds(boundary); ok {
		lat, lng = geomops.Center(bounds)
	}

	layers := []layer.Layer{
		{Kind: layer.KindBoundary, Collection: boundary},
		{Kind: layer.KindOpportunityZones, Collection: oz},
		{Kind: layer.KindQCT, Collection: qctFC},
		{Kind: layer.KindStreets, Collection: streets},
	}

	page, err := render.BuildPage(in.Title, lat, lng, in.Zoom, layers)
	if err != nil {
		return err
	}
	if err := render.WriteMap(in.Output, page); err != nil {
		return err
	}

	printBuildSummary(os.Stdout, in.Output, layers)
	return nil
}

// readOptionalLayer returns nil when the file does not exist. A file
// that exists but cannot be parsed is still an error.
func readOptionalLayer(path string, kind layer.Kind) (*gj.FeatureCollection, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		zap.L().Warn("layer file missing, skipping",
			zap.String("layer", string(kind)), zap.String("path", path))
		return nil, nil
	}
	fc, err := geojson.Read(path)
	if err != nil {
		return nil, eris.Wrapf(err, "build: %s layer", kind)
	}
	return fc, nil
}

func printBuildSummary(w io.Writer, output string, layers []layer.Layer) {
	printer.Fprintln(w, "Map written:", output)
	collections := make([]*gj.FeatureCollection, 0, len(layers))
	for _, l := range layers {
		n := 0
		if l.Collection != nil {
			n = len(l.Collection.Features)
		}
		printer.Fprintf(w, "  %-24s %d features\n", l.Kind.Name(), n)
		collections = append(collections, l.Collection)
	}
	printer.Fprintf(w, "  %-24s %d features\n", "Total", render.FeatureCount(collections...))
}
