package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emg-field-ops/fieldmap/internal/geojson"
	"github.com/emg-field-ops/fieldmap/internal/geomops"
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify",
	Short: "Simplify a layer's geometry for mobile payloads",
	Long: `Reduces a GeoJSON layer's size with tolerance-based geometry
simplification and an optional property whitelist, and reports the
before and after file sizes.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		if in == "" || out == "" {
			return eris.New("simplify: --in and --out are required")
		}

		tolerance, _ := cmd.Flags().GetFloat64("tolerance")
		if !cmd.Flags().Changed("tolerance") {
			tolerance = cfg.Simplify.Tolerance
		}
		if tolerance < 0 {
			return eris.New("simplify: tolerance must be >= 0")
		}

		keep := cfg.Simplify.KeepProps
		if s, _ := cmd.Flags().GetString("keep"); s != "" {
			keep = splitAndTrim(s)
		}

		fc, err := geojson.Read(in)
		if err != nil {
			return err
		}
		before := fileSize(in)

		simplified, err := geomops.Simplify(fc, tolerance, keep)
		if err != nil {
			return err
		}
		if err := geojson.Write(out, simplified); err != nil {
			return err
		}
		after := fileSize(out)

		zap.L().Info("simplified layer",
			zap.String("in", in), zap.String("out", out),
			zap.Float64("tolerance", tolerance),
			zap.Int("features_before", len(fc.Features)),
			zap.Int("features_after", len(simplified.Features)),
		)
		printer.Printf("%s: %d bytes -> %s: %d bytes (%d features)\n",
			in, before, out, after, len(simplified.Features))
		return nil
	},
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func init() {
	simplifyCmd.Flags().String("in", "", "input GeoJSON path")
	simplifyCmd.Flags().String("out", "", "output GeoJSON path")
	simplifyCmd.Flags().Float64("tolerance", 0, "simplification tolerance in degrees")
	simplifyCmd.Flags().String("keep", "", "comma-separated properties to keep")
	rootCmd.AddCommand(simplifyCmd)
}
