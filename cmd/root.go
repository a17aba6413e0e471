package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/restaurant-cli/internal/config"
	"github.com/sells-group/restaurant-cli/internal/region"
	"github.com/sells-group/restaurant-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "restaurant-cli",
	Short: "Restaurant list converter and region classifier",
	Long:  "Converts restaurant spreadsheets (CSV, TSV, XLSX) to JSON, tags each entry with a Seoul neighborhood region derived from its address, and serves the result over HTTP.",
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
	SilenceUsage: true,
}

var mappingFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&mappingFile, "mapping", "", "YAML district mapping file (default from config, else built-in Seoul table)")
}

// buildClassifier returns the classifier for the --mapping flag, then
// region.mapping_file, then the built-in table.
func buildClassifier() (*region.Classifier, error) {
	path := mappingFile
	if path == "" && cfg != nil {
		path = cfg.Region.MappingFile
	}

	fallback := ""
	if cfg != nil {
		fallback = cfg.Region.Fallback
	}

	if path == "" {
		return region.NewClassifier(region.DefaultMapping(), fallback), nil
	}

	c, err := region.LoadMapping(path)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("loaded region mapping",
		zap.String("path", path),
		zap.Int("districts", len(c.Mapping())),
		zap.String("fallback", c.Fallback()),
	)
	return c, nil
}

// openStore opens the configured backend.
func openStore(cmd *cobra.Command) (store.Store, error) {
	if err := cfg.Validate("save"); err != nil {
		return nil, err
	}
	return store.Open(cmd.Context(), cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.Pool.MaxConns,
		MinConns: cfg.Store.Pool.MinConns,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
