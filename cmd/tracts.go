package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gj "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/emg-field-ops/fieldmap/internal/cache"
	"github.com/emg-field-ops/fieldmap/internal/geojson"
	"github.com/emg-field-ops/fieldmap/internal/qct"
	"github.com/emg-field-ops/fieldmap/internal/territory"
	"github.com/emg-field-ops/fieldmap/internal/tigerweb"
)

var tractsCmd = &cobra.Command{
	Use:   "tracts",
	Short: "Census tract boundary operations",
}

var tractsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch tract boundaries from TIGERweb",
	Long: `Pulls census tract boundaries county by county from the Census
TIGERweb API, tags each tract with its county name, and writes the
result as a GeoJSON layer file. Responses are cached locally so
repeated runs stay off the API.

By default the county list is derived from the QCT designations; pass
--counties to override. With --qct-only, only designated QCT tracts
are kept.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("tracts"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "tracts fetch"))

		counties := qct.Counties()
		if s, _ := cmd.Flags().GetString("counties"); s != "" {
			counties = splitAndTrim(s)
		}
		qctOnly, _ := cmd.Flags().GetBool("qct-only")
		out, _ := cmd.Flags().GetString("out")

		client := tigerweb.NewClient(tigerweb.Options{
			BaseURL:   cfg.TigerWeb.BaseURL,
			UserAgent: cfg.TigerWeb.UserAgent,
			Timeout:   time.Duration(cfg.TigerWeb.TimeoutSecs) * time.Second,
			Rate:      cfg.TigerWeb.Rate,
			Burst:     cfg.TigerWeb.Burst,
		})

		var responseCache tigerweb.ResponseCache
		if cfg.Cache.Path != "" {
			c, err := cache.Open(cfg.Cache.Path, time.Duration(cfg.Cache.TTLHours)*time.Hour)
			if err != nil {
				return err
			}
			defer c.Close()
			if n, err := c.Purge(); err != nil {
				log.Warn("cache purge failed", zap.Error(err))
			} else if n > 0 {
				log.Debug("purged expired cache entries", zap.Int64("entries", n))
			}
			responseCache = c
		}

		fetcher := tigerweb.NewFetcher(client, responseCache, cfg.TigerWeb.Concurrency)
		fetcher.CountyName = territory.NameOf

		fc, err := fetcher.FetchCounties(ctx, cfg.TigerWeb.StateFIPS, counties)
		if err != nil {
			return err
		}

		total := len(fc.Features)
		if qctOnly {
			fc = qct.Filter(fc)
			log.Info("filtered to QCT designations",
				zap.Int("fetched", total), zap.Int("kept", len(fc.Features)))
			if missing := missingDesignations(fc); len(missing) > 0 {
				log.Warn("designated tracts absent from fetch",
					zap.Int("count", len(missing)))
			}
		}

		if err := geojson.Write(out, fc); err != nil {
			return err
		}

		printer.Printf("Wrote %d tracts to %s (%d counties queried)\n",
			len(fc.Features), out, len(counties))
		return nil
	},
}

// missingDesignations reports designated QCT GEOIDs absent from the
// fetched collection, usually tracts renumbered since the designation
// list was published.
func missingDesignations(fc *gj.FeatureCollection) []string {
	fetched := make(map[string]bool, len(fc.Features))
	for _, f := range fc.Features {
		fetched[geojson.StringProp(f, "GEOID")] = true
	}
	var missing []string
	for _, id := range qct.GEOIDs() {
		if !fetched[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func init() {
	tractsFetchCmd.Flags().String("counties", "", "comma-separated 3-digit county codes")
	tractsFetchCmd.Flags().Bool("qct-only", false, "keep only designated QCT tracts")
	tractsFetchCmd.Flags().String("out", "virginia_tracts.geojson", "output GeoJSON path")
	tractsCmd.AddCommand(tractsFetchCmd)
	rootCmd.AddCommand(tractsCmd)
}
