// Package store persists converted restaurant records.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/restaurant-cli/internal/model"
)

// Filter specifies criteria for listing restaurants. Empty fields match all.
type Filter struct {
	Region   string `json:"region,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for restaurant records.
type Store interface {
	// SaveRestaurants inserts or updates records keyed by (name, address)
	// and returns the number of rows written.
	SaveRestaurants(ctx context.Context, records []model.Restaurant) (int64, error)
	ListRestaurants(ctx context.Context, filter Filter) ([]model.Restaurant, error)
	CountByRegion(ctx context.Context) (map[string]int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// Open connects to the configured backend and runs its migration.
func Open(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch strings.ToLower(driver) {
	case "", "sqlite":
		if dsn == "" {
			dsn = "restaurants.db"
		}
		st, err = NewSQLite(dsn)
	case "postgres", "postgresql":
		if dsn == "" {
			return nil, eris.New("store: postgres requires store.database_url (RESTAURANT_STORE_DATABASE_URL)")
		}
		st, err = NewPostgres(ctx, dsn, poolCfg)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "store: migrate")
	}
	return st, nil
}

// dedupe trims name and address, then keeps the first record for each
// key so a single batch never upserts the same row twice and the stored
// values match the UNIQUE (name, address) key.
func dedupe(records []model.Restaurant) []model.Restaurant {
	seen := make(map[string]bool, len(records))
	out := make([]model.Restaurant, 0, len(records))
	for _, r := range records {
		r.Name = strings.TrimSpace(r.Name)
		r.Address = strings.TrimSpace(r.Address)
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// restaurantColumns is the column order shared by both backends.
var restaurantColumns = []string{
	"id", "name", "category", "address", "latitude", "longitude",
	"description", "tags", "image_url", "review_count", "region",
	"price_range", "convenience",
}

const selectColumns = `name, category, address, latitude, longitude, description, tags, image_url, review_count, region, price_range, convenience`

type scanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row scanner) (model.Restaurant, error) {
	var r model.Restaurant
	err := row.Scan(
		&r.Name, &r.Category, &r.Address, &r.Latitude, &r.Longitude,
		&r.Description, &r.Tags, &r.ImageURL, &r.ReviewCount, &r.Region,
		&r.PriceRange, &r.Convenience,
	)
	return r, err
}
