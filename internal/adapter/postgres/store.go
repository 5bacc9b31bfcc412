// Package postgres persists validated fire polygons to the analytical store.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emberwatch/hotspot-etl-service/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// db is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in
// tests.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Store writes fire polygon records to Postgres.
// It implements pipeline.Sink.
type Store struct {
	db     db
	logger *slog.Logger
}

// New connects a pgx pool to the given database URL and verifies the
// connection with a ping.
func New(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: pool, logger: logger}, nil
}

const insertPolygon = `
	INSERT INTO fire_polygons (id, acq_datetime, ingested_at, member_count, products, degenerate, fire_wkt, fire_geojson)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING
`

// Persist inserts one row per polygon. Rows are independent and the record
// IDs are deterministic, so replays of the same run are no-ops.
func (s *Store) Persist(ctx context.Context, polygons []domain.FirePolygon) error {
	for _, p := range polygons {
		_, err := s.db.Exec(ctx, insertPolygon,
			p.ID,
			p.RepresentativeTime,
			p.IngestedAt,
			p.MemberCount,
			p.Products,
			p.Degenerate,
			p.BoundaryWKT,
			[]byte(p.BoundaryGeoJSON),
		)
		if err != nil {
			return fmt.Errorf("insert fire polygon %s: %w", p.ID, err)
		}
	}
	s.logger.Debug("persisted fire polygons", "count", len(polygons))
	return nil
}

func (s *Store) Close() {
	s.db.Close()
}
