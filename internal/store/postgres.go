package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/restaurant-cli/internal/db"
	"github.com/sells-group/restaurant-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS restaurants (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	address      TEXT NOT NULL DEFAULT '',
	latitude     DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude    DOUBLE PRECISION NOT NULL DEFAULT 0,
	description  TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '',
	image_url    TEXT NOT NULL DEFAULT '',
	review_count INTEGER NOT NULL DEFAULT 0,
	region       TEXT NOT NULL,
	price_range  TEXT NOT NULL DEFAULT '',
	convenience  TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, address)
);

CREATE INDEX IF NOT EXISTS idx_restaurants_region ON restaurants(region);
CREATE INDEX IF NOT EXISTS idx_restaurants_category ON restaurants(category);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// upsertColumns adds updated_at so re-imports refresh the timestamp.
var upsertColumns = append(append([]string{}, restaurantColumns...), "updated_at")

func (s *PostgresStore) SaveRestaurants(ctx context.Context, records []model.Restaurant) (int64, error) {
	records = dedupe(records)
	if len(records) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			uuid.New().String(), r.Name, r.Category, r.Address, r.Latitude, r.Longitude,
			r.Description, r.Tags, r.ImageURL, r.ReviewCount, r.Region,
			r.PriceRange, r.Convenience, now,
		}
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "restaurants",
		Columns:      upsertColumns,
		ConflictKeys: []string{"name", "address"},
		UpdateCols: []string{
			"category", "latitude", "longitude", "description", "tags", "image_url",
			"review_count", "region", "price_range", "convenience", "updated_at",
		},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save restaurants")
	}
	return n, nil
}

func (s *PostgresStore) ListRestaurants(ctx context.Context, filter Filter) ([]model.Restaurant, error) {
	query := `SELECT ` + selectColumns + ` FROM restaurants WHERE 1=1`
	var args []any

	if filter.Region != "" {
		args = append(args, filter.Region)
		query += fmt.Sprintf(` AND region = $%d`, len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	query += ` ORDER BY review_count DESC, name ASC`
	switch {
	case filter.Limit > 0:
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	case filter.Offset > 0:
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list restaurants")
	}
	defer rows.Close()

	var out []model.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan restaurant")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate restaurants")
}

func (s *PostgresStore) CountByRegion(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT region, COUNT(*) FROM restaurants GROUP BY region`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count by region")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var region string
		var n int
		if err := rows.Scan(&region, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan region count")
		}
		counts[region] = n
	}
	return counts, eris.Wrap(rows.Err(), "postgres: iterate region counts")
}
