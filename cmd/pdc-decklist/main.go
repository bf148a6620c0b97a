// Command pdc-decklist renders, exports and serves Commander decklists.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ramonehamilton/pdc-decklist/internal/config"
	"github.com/ramonehamilton/pdc-decklist/internal/version"
)

var (
	// Global flags
	verbose    bool
	configPath string
	envFile    string
	timeout    time.Duration

	// Set up in PersistentPreRunE
	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pdc-decklist",
	Short: "Decklist parsing, card enrichment and export for Commander decks",
	Long: `pdc-decklist reads plain-text decklists ("1 Sol Ring" per line), looks every
card up on Scryfall, and prints the deck sorted and grouped by type with
statistics. It can also export MTGO and Moxfield lists, draw the mana curve,
and serve everything over a JSON API.`,
	Version:      version.GetVersion(),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		zapConfig := zap.NewProductionConfig()
		if verbose || cfg.App.DebugMode {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.pdc-decklist/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file with PDC_* overrides")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	renderCmd.Flags().StringVar(&commanderName, "commander", "", "Commander card name")
	renderCmd.Flags().StringVar(&partnerName, "partner", "", "Partner card name")
	renderCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the prepared deck as JSON")
	renderCmd.Flags().BoolVar(&watchFile, "watch", false, "Render again whenever the file changes")

	exportCmd.Flags().StringVar(&commanderName, "commander", "", "Commander card name")
	exportCmd.Flags().StringVar(&partnerName, "partner", "", "Partner card name")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "mtgo", "Export format: mtgo or moxfield")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().StringVar(&deckName, "name", "", "Deck name used for the suggested filename")
	exportCmd.Flags().BoolVar(&sortedExport, "sorted", false, "Look cards up and export in display order (unresolved commanders are dropped)")

	curveCmd.Flags().StringVarP(&outputPath, "output", "o", "mana-curve.html", "Output HTML file")
	curveCmd.Flags().BoolVar(&openChart, "open", false, "Open the chart in a browser")

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default: from config)")

	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
