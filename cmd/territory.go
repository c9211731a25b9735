package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/emg-field-ops/fieldmap/internal/geojson"
	"github.com/emg-field-ops/fieldmap/internal/shapefile"
	"github.com/emg-field-ops/fieldmap/internal/territory"
)

var territoryCmd = &cobra.Command{
	Use:   "territory",
	Short: "Service territory boundary operations",
}

var territoryImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a boundary from a shapefile ZIP",
	Long: `Downloads a shapefile ZIP (Census or HIFLD boundary products),
extracts it, and converts the shapes to a GeoJSON boundary layer.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		url, _ := cmd.Flags().GetString("url")
		out, _ := cmd.Flags().GetString("out")
		if url == "" || out == "" {
			return eris.New("territory import: --url and --out are required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tmpDir, err := os.MkdirTemp("", "territory-import-*")
		if err != nil {
			return eris.Wrap(err, "territory import: temp dir")
		}
		defer os.RemoveAll(tmpDir)

		shpPath, err := shapefile.DownloadZip(ctx, url, tmpDir)
		if err != nil {
			return err
		}
		fc, err := shapefile.ReadFeatures(shpPath)
		if err != nil {
			return err
		}
		if err := geojson.Write(out, fc); err != nil {
			return err
		}

		printer.Printf("Wrote %d boundary features to %s\n", len(fc.Features), out)
		return nil
	},
}

var territoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the territory counties by canvassing region",
	RunE: func(cmd *cobra.Command, _ []string) error {
		summary := territory.Summary()
		byRegion := map[territory.Region][]territory.County{}
		for _, c := range territory.Counties() {
			byRegion[c.Region] = append(byRegion[c.Region], c)
		}

		total := 0
		for _, region := range territory.Regions() {
			printer.Printf("%s (%d)\n", string(region), summary[region])
			for _, c := range byRegion[region] {
				printer.Printf("  %s  %s\n", c.FIPS, c.Name)
			}
			total += summary[region]
		}
		printer.Printf("\n%d counties and cities in territory\n", total)
		return nil
	},
}

func init() {
	territoryImportCmd.Flags().String("url", "", "shapefile ZIP URL")
	territoryImportCmd.Flags().String("out", "", "output GeoJSON path")
	territoryCmd.AddCommand(territoryImportCmd)
	territoryCmd.AddCommand(territoryListCmd)
	rootCmd.AddCommand(territoryCmd)
}
