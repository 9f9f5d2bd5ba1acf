// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the laundry-analytics CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/laundry-analytics/internal/secrets"
	"github.com/pdiddy/laundry-analytics/internal/store"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the loaded configuration, set by the root PersistentPreRunE.
	cfg = types.DefaultConfig()

	logger = zap.NewNop()
)

// rootCmd is the base command for the laundry-analytics CLI.
var rootCmd = &cobra.Command{
	Use:   "laundry-analytics",
	Short: "Demand forecasting and resource analytics for laundry services",
	Long: `laundry-analytics ingests laundry order data into a local SQLite store and
analyses it: Random Forest demand forecasts per customer and per laundry,
peak and low-demand planning, Isolation Forest resource anomaly detection,
and markdown business reports.

The same analyses are served as a JSON API by the serve subcommand.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		verbose, _ := cmd.Flags().GetBool("verbose")
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l

		cfgFile, _ := cmd.Flags().GetString("config")
		loaded, used, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		if used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}
		if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
			loaded.Store.DataDir = dataDir
		}

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		if loaded.Notify.Token == "" {
			loaded.Notify.Token = s.Get(secrets.WebhookToken)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./laundry-analytics.yaml or ~/.config/laundry-analytics/laundry-analytics.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the order database (overrides store.data_dir)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// openStore opens the configured order store.
func openStore() (*store.Store, error) {
	return store.Open(cfg.Store)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
