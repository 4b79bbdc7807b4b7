package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	analyzeLat    float64
	analyzeLon    float64
	analyzeRadius float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one region analysis and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := validateRegion(analyzeLat, analyzeLon, analyzeRadius); err != nil {
			return err
		}

		api, err := buildAnalyzer(cfg)
		if err != nil {
			return err
		}

		res, err := api.Analyze(cmd.Context(), analyzeLat, analyzeLon, analyzeRadius)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(res.Map(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		return nil
	},
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeLat, "lat", 0, "latitude of the hexagon center (degrees)")
	analyzeCmd.Flags().Float64Var(&analyzeLon, "lon", 0, "longitude of the hexagon center (degrees)")
	analyzeCmd.Flags().Float64Var(&analyzeRadius, "radius", defaultRadiusKM, "hexagon radius in km")
	analyzeCmd.MarkFlagRequired("lat")
	analyzeCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(analyzeCmd)
}
