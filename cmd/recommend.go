package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/restaurant-cli/internal/catalog"
)

var (
	recommendData   string
	recommendFrom   []string
	recommendOpts   catalog.RecommendOptions
	recommendAsJSON bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank restaurants for a group by popularity and travel-time fairness",
	Long:  "Each --from is one member's starting point as lat,lng. Travel time is estimated from distance at public transit speed; restaurants that are popular and about equally far for everyone rank first.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		origins := make([]catalog.Point, 0, len(recommendFrom))
		for _, f := range recommendFrom {
			p, err := catalog.ParsePoint(f)
			if err != nil {
				return eris.Wrap(err, "recommend: --from")
			}
			origins = append(origins, p)
		}

		cat, err := loadCatalog(cmd, recommendData)
		if err != nil {
			return err
		}

		ranked := cat.Recommend(origins, recommendOpts)
		zap.L().Debug("recommend complete",
			zap.Int("members", len(origins)),
			zap.Int("results", len(ranked)),
		)

		if recommendAsJSON {
			if ranked == nil {
				ranked = []catalog.Candidate{}
			}
			return eris.Wrap(writeIndentedJSON(cmd.OutOrStdout(), ranked), "recommend: encode json")
		}
		formatRecommendations(cmd.OutOrStdout(), ranked)
		return nil
	},
}

func init() {
	recommendCmd.Flags().StringVar(&recommendData, "data", "", "JSON file produced by convert (default: read from the store)")
	recommendCmd.Flags().StringArrayVar(&recommendFrom, "from", nil, "member starting point as lat,lng (repeat per member)")
	recommendCmd.Flags().StringVar(&recommendOpts.Region, "region", "", "region label or address fragment")
	recommendCmd.Flags().StringVar(&recommendOpts.Category, "category", "", "category filter")
	recommendCmd.Flags().StringVar(&recommendOpts.Purpose, "purpose", "", "purpose tag filter")
	recommendCmd.Flags().StringVar(&recommendOpts.Keyword, "keyword", "", "keyword filter")
	recommendCmd.Flags().IntVar(&recommendOpts.Limit, "limit", catalog.DefaultRecommendLimit, "max results")
	recommendCmd.Flags().BoolVar(&recommendAsJSON, "json", false, "print JSON instead of a table")
	_ = recommendCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(recommendCmd)
}
