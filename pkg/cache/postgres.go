package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/rhetorik/internal/util"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres shares entries between processes through a database table.
// Values are stored as text.
type Postgres struct {
	db            dbConn
	pool          *pgxpool.Pool
	maxEntryBytes int
}

const createPostgresSQL = `
CREATE TABLE IF NOT EXISTS rhetorik_cache (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertPostgresSQL = `
INSERT INTO rhetorik_cache (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// OpenPostgres connects to databaseURL and ensures the cache table exists.
func OpenPostgres(ctx context.Context, databaseURL string, maxEntryBytes int) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect cache database: %w", err)
	}
	p, err := newPostgres(ctx, pool, maxEntryBytes)
	if err != nil {
		pool.Close()
		return nil, err
	}
	p.pool = pool
	return p, nil
}

func newPostgres(ctx context.Context, db dbConn, maxEntryBytes int) (*Postgres, error) {
	if _, err := db.Exec(ctx, createPostgresSQL); err != nil {
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return &Postgres{db: db, maxEntryBytes: maxEntryBytes}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := p.db.QueryRow(ctx, `SELECT value FROM rhetorik_cache WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	return []byte(value), true, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	if p.maxEntryBytes > 0 && len(value) > p.maxEntryBytes {
		return ErrQuotaExceeded
	}
	if _, err := p.db.Exec(ctx, upsertPostgresSQL, key, util.SanitizePostgresText(string(value))); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
