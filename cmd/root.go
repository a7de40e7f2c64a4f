package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teatrade/auction-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "auction-cli",
	Short: "Auction market data ingestion pipeline",
	Long:  "Ingests weekly auction exports (xlsx catalogues, summaries, pdf/docx/txt reports) from a drop directory, normalizes them and merges them into a local SQLite dataset.",
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
