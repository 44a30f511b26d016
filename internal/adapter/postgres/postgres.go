// Package postgres implements the profile and weight repositories on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"meowscale/internal/domain"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var (
	_ domain.ProfileRepository = (*DB)(nil)
	_ domain.WeightRepository  = (*DB)(nil)
)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(ctx context.Context, connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			height DOUBLE PRECISION NOT NULL,
			gender TEXT NOT NULL DEFAULT '',
			partner_code TEXT UNIQUE NOT NULL,
			partner_uid TEXT,
			target_weight DOUBLE PRECISION,
			reminder_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			reminder_time TEXT NOT NULL DEFAULT '',
			timezone TEXT NOT NULL DEFAULT '',
			theme TEXT NOT NULL DEFAULT 'auto',
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS weights (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			weight DOUBLE PRECISION NOT NULL,
			bmi DOUBLE PRECISION NOT NULL,
			ts TIMESTAMPTZ NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_weights_user_ts ON weights(user_id, ts DESC);",
		"CREATE INDEX IF NOT EXISTS idx_users_reminder ON users(reminder_enabled) WHERE reminder_enabled;",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
