package storage

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/boardwatch/doski-crawler/internal/scraper"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool used for listing rows.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore writes listings into Postgres.
type PostgresStore struct {
	pool  pgPool
	table string
}

// NewPostgresStore creates a Postgres-backed store using the provided
// config and ensures the listings table exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "listings"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store := &PostgresStore{pool: pool, table: table}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool
// (primarily for testing). The schema is not touched.
func NewPostgresStoreWithPool(pool pgPool, table string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "listings"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id          text PRIMARY KEY,
	title       text NOT NULL,
	url         text NOT NULL DEFAULT '',
	price       text NOT NULL DEFAULT '',
	description text NOT NULL DEFAULT '',
	location    text NOT NULL DEFAULT '',
	images      text[] NOT NULL DEFAULT '{}',
	parsed_at   timestamptz NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure listings schema: %w", err)
	}
	return nil
}

// SaveListing inserts a listing row, skipping IDs already present.
func (s *PostgresStore) SaveListing(ctx context.Context, listing scraper.Listing) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("postgres store is not configured")
	}
	if listing.ID == "" {
		return fmt.Errorf("listing id is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	title,
	url,
	price,
	description,
	location,
	images,
	parsed_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8
) ON CONFLICT (id) DO NOTHING`, s.table)

	images := listing.Images
	if images == nil {
		images = []string{}
	}
	args := []any{
		listing.ID,
		listing.Title,
		listing.URL,
		listing.Price,
		listing.Description,
		listing.Location,
		images,
		listing.ParsedAt,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// TotalCount returns the number of stored listings.
func (s *PostgresStore) TotalCount(ctx context.Context) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("postgres store is not configured")
	}
	var count int64
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)
	if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

// Statistics returns aggregate counters over the stored listings.
func (s *PostgresStore) Statistics(ctx context.Context) (Stats, error) {
	if s == nil || s.pool == nil {
		return Stats{}, fmt.Errorf("postgres store is not configured")
	}
	var stats Stats
	var last *time.Time
	query := fmt.Sprintf(`SELECT count(*), max(parsed_at) FROM %s`, s.table)
	if err := s.pool.QueryRow(ctx, query).Scan(&stats.TotalListings, &last); err != nil {
		return Stats{}, fmt.Errorf("listing statistics: %w", err)
	}
	if last != nil {
		stats.LastParsedAt = *last
	}
	return stats, nil
}
