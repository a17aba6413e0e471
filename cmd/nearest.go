package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/restaurant-cli/internal/catalog"
)

var (
	nearestData   string
	nearestLat    float64
	nearestLng    float64
	nearestOpts   catalog.NearestOptions
	nearestAsJSON bool
)

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "List restaurants closest to a coordinate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if nearestLat < -90 || nearestLat > 90 || nearestLng < -180 || nearestLng > 180 {
			return eris.Errorf("nearest: coordinate out of range (%f, %f)", nearestLat, nearestLng)
		}

		cat, err := loadCatalog(cmd, nearestData)
		if err != nil {
			return err
		}

		ranked := cat.Nearest(nearestLat, nearestLng, nearestOpts)
		if nearestAsJSON {
			if ranked == nil {
				ranked = []catalog.Ranked{}
			}
			return eris.Wrap(writeIndentedJSON(cmd.OutOrStdout(), ranked), "nearest: encode json")
		}
		formatNearest(cmd.OutOrStdout(), ranked)
		return nil
	},
}

func init() {
	nearestCmd.Flags().StringVar(&nearestData, "data", "", "JSON file produced by convert (default: read from the store)")
	nearestCmd.Flags().Float64Var(&nearestLat, "lat", 0, "latitude (required)")
	nearestCmd.Flags().Float64Var(&nearestLng, "lng", 0, "longitude (required)")
	nearestCmd.Flags().StringVar(&nearestOpts.Category, "category", "", "category filter")
	nearestCmd.Flags().StringVar(&nearestOpts.Purpose, "purpose", "", "purpose tag filter")
	nearestCmd.Flags().IntVar(&nearestOpts.Limit, "limit", catalog.DefaultNearestLimit, "max results")
	nearestCmd.Flags().BoolVar(&nearestAsJSON, "json", false, "print JSON instead of a table")
	_ = nearestCmd.MarkFlagRequired("lat")
	_ = nearestCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(nearestCmd)
}
