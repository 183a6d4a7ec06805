package sink

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool behind the Postgres sink.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Postgres upserts snapshot rows into a table, keyed by the profile's source
// URL. It assumes a schema like:
//
//	CREATE TABLE founders (
//	    source_url    TEXT PRIMARY KEY,
//	    name          TEXT NOT NULL,
//	    linkedin      TEXT,
//	    company_name  TEXT,
//	    company_page  TEXT,
//	    website       TEXT,
//	    batch         TEXT,
//	    location      TEXT,
//	    discovered_at TIMESTAMPTZ,
//	    updated_at    TIMESTAMPTZ DEFAULT NOW()
//	);
type Postgres struct {
	pool  execCloser
	table string
}

// NewPostgres connects a pool and builds the sink.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sinks.postgres.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "founders"
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
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{pool: pool, table: table}, nil
}

// NewPostgresWithPool constructs the sink from an existing pool, primarily
// for testing.
func NewPostgresWithPool(pool execCloser, table string) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "founders"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Postgres{pool: pool, table: table}, nil
}

// Name identifies the sink in status reports.
func (s *Postgres) Name() string { return "postgres" }

// Close releases the underlying pool.
func (s *Postgres) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Publish upserts every row. Rows without a source URL carry no stable key
// and are skipped.
func (s *Postgres) Publish(ctx context.Context, header []string, rows [][]string) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("postgres sink is not configured")
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	keyIdx, ok := idx["sourceUrl"]
	if !ok {
		return fmt.Errorf("snapshot header missing sourceUrl column")
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	source_url, name, linkedin, company_name, company_page,
	website, batch, location, discovered_at, updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,NOW()
)
ON CONFLICT (source_url) DO UPDATE SET
	name = EXCLUDED.name,
	linkedin = EXCLUDED.linkedin,
	company_name = EXCLUDED.company_name,
	company_page = EXCLUDED.company_page,
	website = EXCLUDED.website,
	batch = EXCLUDED.batch,
	location = EXCLUDED.location,
	discovered_at = EXCLUDED.discovered_at,
	updated_at = NOW()`, s.table)

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	for _, row := range rows {
		if keyIdx >= len(row) || row[keyIdx] == "" {
			continue
		}
		var discovered any
		if ts := cell(row, "discoveredAt"); ts != "" {
			parsed, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return fmt.Errorf("parse discoveredAt for %s: %w", row[keyIdx], err)
			}
			discovered = parsed
		}
		args := []any{
			row[keyIdx],
			cell(row, "name"),
			cell(row, "linkedin"),
			cell(row, "companyName"),
			cell(row, "companyPage"),
			cell(row, "website"),
			cell(row, "batch"),
			cell(row, "location"),
			discovered,
		}
		if _, err := s.pool.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert founder %s: %w", row[keyIdx], err)
		}
	}
	return nil
}
