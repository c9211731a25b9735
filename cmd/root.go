package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/emg-field-ops/fieldmap/internal/config"
)

var cfg *config.Config

// printer groups digits in summary counts.
var printer = message.NewPrinter(language.English)

var rootCmd = &cobra.Command{
	Use:   "fieldmap",
	Short: "Builds interactive canvassing maps for a utility service territory",
	Long: `Prepares and renders the market maps field reps use for door-to-door
verification: loads territory, opportunity zone, QCT, and street layers,
clips them to the service boundary, and writes a self-contained HTML map.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
