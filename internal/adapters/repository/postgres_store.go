package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

var _ domain.Storage = (*PostgresStore)(nil)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps each key as one row of the kv_store table.
type PostgresStore struct {
	db  *sqlx.DB
	key string
}

// ConnectPostgres opens a pool with either the "pgx" or the "postgres"
// (lib/pq) driver.
func ConnectPostgres(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres (%s): %w", driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}

func NewPostgresStore(db *sqlx.DB, key string) *PostgresStore {
	return &PostgresStore{db: db, key: key}
}

func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, kvSchema); err != nil {
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return nil
}

func (r *PostgresStore) Read(ctx context.Context) ([]byte, bool, error) {
	query := r.db.Rebind(`SELECT value FROM kv_store WHERE key = ?`)

	var value []byte
	err := r.db.GetContext(ctx, &value, query, r.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv read query failed: %w", err)
	}
	return value, true, nil
}

func (r *PostgresStore) Write(ctx context.Context, data []byte) error {
	query := r.db.Rebind(`
        INSERT INTO kv_store (key, value, updated_at)
        VALUES (?, ?, NOW())
        ON CONFLICT (key) DO UPDATE
        SET value = EXCLUDED.value, updated_at = NOW()`)

	if _, err := r.db.ExecContext(ctx, query, r.key, data); err != nil {
		return fmt.Errorf("kv write query failed: %w", err)
	}
	return nil
}

func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
