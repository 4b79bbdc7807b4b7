package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridscape/hexsight/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "hexsight",
	Short: "Hexagonal region-of-interest geospatial analysis",
	Long:  "Computes elevation, road, building, water, and land use statistics for a hexagonal region around a point, from a projected DEM and OSM shapefile extracts.",
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
