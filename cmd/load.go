package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emg-field-ops/fieldmap/internal/layer"
	"github.com/emg-field-ops/fieldmap/internal/pgstore"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk-load prepared layers into PostGIS",
	Long: `Loads the configured layer files into the shared PostGIS layer table,
replacing the previous rows for the market. Teams without a spatial
database never need this; the HTML map stands alone.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("load"); err != nil {
			return err
		}

		market, _ := cmd.Flags().GetString("market")
		if market == "" {
			return eris.New("load: --market is required")
		}

		kinds := layer.Kinds
		if s, _ := cmd.Flags().GetString("layers"); s != "" {
			kinds = nil
			for _, name := range splitAndTrim(s) {
				kinds = append(kinds, layer.Kind(name))
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := pgstore.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		store, err := pgstore.New(pool, cfg.Store.Table)
		if err != nil {
			return err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "load"), zap.String("market", market))
		var total int64
		for _, kind := range kinds {
			fc, err := readOptionalLayer(layerPath(kind), kind)
			if err != nil {
				return err
			}
			if fc == nil {
				continue
			}

			n, err := store.ReplaceLayer(ctx, market, string(kind), fc)
			if err != nil {
				return err
			}
			log.Info("loaded layer", zap.String("layer", string(kind)), zap.Int64("rows", n))
			total += n
		}

		printer.Printf("Loaded %d features into %s for market %s\n",
			total, cfg.Store.Table, market)
		return nil
	},
}

func init() {
	loadCmd.Flags().String("market", "", "market name to load under")
	loadCmd.Flags().String("layers", "", "comma-separated layer kinds to load")
	rootCmd.AddCommand(loadCmd)
}
