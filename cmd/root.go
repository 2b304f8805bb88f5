package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/i94-warehouse/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "i94etl",
	Short: "I-94 immigration warehouse ETL",
	Long:  "Loads the I-94 immigration extract with city temperatures, US demographics and airport codes, and writes a Parquet star schema of one fact and four dimension tables.",
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
