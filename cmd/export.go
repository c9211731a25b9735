package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/emg-field-ops/fieldmap/internal/export"
	"github.com/emg-field-ops/fieldmap/internal/layer"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the zone inventory to XLSX",
	Long: `Flattens the configured layers into a zone inventory (layer, GEOID,
name, county, region) and writes it as a spreadsheet for canvassing
route planning.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return eris.New("export: --out is required")
		}

		kinds := layer.Kinds
		if s, _ := cmd.Flags().GetString("layers"); s != "" {
			kinds = nil
			for _, name := range splitAndTrim(s) {
				kinds = append(kinds, layer.Kind(name))
			}
		}

		var layers []layer.Layer
		for _, kind := range kinds {
			fc, err := readOptionalLayer(layerPath(kind), kind)
			if err != nil {
				return err
			}
			if fc != nil {
				layers = append(layers, layer.Layer{Kind: kind, Collection: fc})
			}
		}
		if len(layers) == 0 {
			return eris.New("export: no layer files found")
		}

		rows := export.BuildInventory(layers)
		if err := export.WriteXLSX(out, rows); err != nil {
			return err
		}

		printer.Printf("Wrote %d zones to %s\n", len(rows), out)
		return nil
	},
}

// layerPath maps a layer kind to its configured input file.
func layerPath(kind layer.Kind) string {
	switch kind {
	case layer.KindBoundary:
		return cfg.Inputs.Boundary
	case layer.KindOpportunityZones:
		return cfg.Inputs.OpportunityZones
	case layer.KindQCT:
		return cfg.Inputs.QCT
	case layer.KindStreets:
		return cfg.Inputs.Streets
	default:
		return ""
	}
}

func init() {
	exportCmd.Flags().String("out", "", "output XLSX path")
	exportCmd.Flags().String("layers", "", "comma-separated layer kinds to include")
	rootCmd.AddCommand(exportCmd)
}
