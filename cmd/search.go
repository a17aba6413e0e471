package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/restaurant-cli/internal/catalog"
	"github.com/sells-group/restaurant-cli/internal/convert"
	"github.com/sells-group/restaurant-cli/internal/model"
	"github.com/sells-group/restaurant-cli/internal/store"
)

var (
	searchData   string
	searchOpts   catalog.SearchOptions
	searchLimit  int
	searchAsJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search converted restaurants by region, category, purpose or keyword",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := loadCatalog(cmd, searchData)
		if err != nil {
			return err
		}

		results := cat.Search(searchOpts)
		if searchLimit > 0 && len(results) > searchLimit {
			results = results[:searchLimit]
		}

		zap.L().Debug("search complete",
			zap.Any("options", searchOpts),
			zap.Int("matches", len(results)),
		)

		if searchAsJSON {
			return convert.WriteJSON(cmd.OutOrStdout(), results)
		}
		formatRestaurantList(cmd.OutOrStdout(), results)
		return nil
	},
}

// loadCatalog builds a catalog from a JSON file written by convert, or
// from the configured store when path is empty.
func loadCatalog(cmd *cobra.Command, path string) (*catalog.Catalog, error) {
	var (
		records []model.Restaurant
		err     error
	)
	if path != "" {
		records, err = convert.LoadJSON(path)
		if err != nil {
			return nil, err
		}
	} else {
		st, serr := openStore(cmd)
		if serr != nil {
			return nil, eris.Wrap(serr, "open store")
		}
		defer st.Close() //nolint:errcheck

		records, err = st.ListRestaurants(cmd.Context(), store.Filter{})
		if err != nil {
			return nil, eris.Wrap(err, "load restaurants from store")
		}
	}

	zap.L().Debug("catalog loaded",
		zap.String("source", path),
		zap.Int("restaurants", len(records)),
	)
	return catalog.New(records), nil
}

func init() {
	searchCmd.Flags().StringVar(&searchData, "data", "", "JSON file produced by convert (default: read from the store)")
	searchCmd.Flags().StringVar(&searchOpts.Region, "region", "", "region label or address fragment")
	searchCmd.Flags().StringVar(&searchOpts.Category, "category", "", "category, e.g. 한식")
	searchCmd.Flags().StringVar(&searchOpts.Purpose, "purpose", "", "purpose tag, e.g. 회식")
	searchCmd.Flags().StringVar(&searchOpts.Keyword, "keyword", "", "keyword in name, category, description or tags")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "max results (0 for all)")
	searchCmd.Flags().BoolVar(&searchAsJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(searchCmd)
}
