package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/restaurant-cli/internal/convert"
	"github.com/sells-group/restaurant-cli/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage persisted restaurants",
	Long:  "Commands for migrating, importing, listing, and summarizing restaurants in the configured store (SQLite or PostgreSQL).",
}

// -- store migrate --

var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the restaurants table if missing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		zap.L().Info("store migrated", zap.String("driver", cfg.Store.Driver))
		return nil
	},
}

// -- store import --

var storeImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Upsert a JSON file produced by convert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := convert.LoadJSON(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.SaveRestaurants(cmd.Context(), records)
		if err != nil {
			return eris.Wrap(err, "store import")
		}

		zap.L().Info("import complete",
			zap.String("file", args[0]),
			zap.Int("records", len(records)),
			zap.Int64("written", n),
		)
		return nil
	},
}

// -- store list --

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored restaurants",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		region, _ := cmd.Flags().GetString("region")
		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		records, err := st.ListRestaurants(cmd.Context(), store.Filter{
			Region:   region,
			Category: category,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return eris.Wrap(err, "store list")
		}

		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No restaurants found.")
			return nil
		}
		formatRestaurantList(cmd.OutOrStdout(), records)
		return nil
	},
}

// -- store stats --

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count stored restaurants per region",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		counts, err := st.CountByRegion(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "store stats")
		}

		classifier, err := buildClassifier()
		if err != nil {
			return err
		}
		formatRegionCounts(cmd.OutOrStdout(), regionOrder(classifier.Regions(), counts), counts)
		return nil
	},
}

// regionOrder lists known regions first, then any others found in counts
// sorted by name.
func regionOrder(known []string, counts map[string]int) []string {
	seen := make(map[string]bool, len(known))
	out := make([]string, 0, len(known)+len(counts))
	for _, r := range known {
		seen[r] = true
		out = append(out, r)
	}
	var extra []string
	for r := range counts {
		if !seen[r] {
			extra = append(extra, r)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func init() {
	storeListCmd.Flags().String("region", "", "exact region label")
	storeListCmd.Flags().String("category", "", "exact category")
	storeListCmd.Flags().Int("limit", 50, "max rows (0 for all)")
	storeListCmd.Flags().Int("offset", 0, "rows to skip")

	storeCmd.AddCommand(storeMigrateCmd, storeImportCmd, storeListCmd, storeStatsCmd)
	rootCmd.AddCommand(storeCmd)
}
