// ABOUTME: Idempotent schema creation for both storage backends
// ABOUTME: Tables, indices, and the weekly leaderboard view

package store

import (
	"context"
	"fmt"
)

// sqliteSchema and postgresSchema create the same logical schema. The
// statements are executed one at a time so the postgres extended protocol
// accepts them; all DDL is IF NOT EXISTS and safe to re-run.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		external_id INTEGER NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS memberships (
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		group_id INTEGER NOT NULL REFERENCES groups(id),
		joined_at TEXT NOT NULL,
		PRIMARY KEY (account_id, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS drink_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		group_id INTEGER REFERENCES groups(id),
		drink_name TEXT NOT NULL,
		category TEXT,
		caption TEXT,
		media_ref TEXT,
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_drink_events_account_created
		ON drink_events(account_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_drink_events_created
		ON drink_events(created_at)`,
	// Most recent Monday 00:00 UTC: step back six days, then forward to Monday.
	`CREATE VIEW IF NOT EXISTS weekly_leaderboard AS
		SELECT a.display_name AS display_name, COUNT(e.id) AS drinks_this_week
		FROM drink_events e
		JOIN accounts a ON a.id = e.account_id
		WHERE e.created_at >= strftime('%Y-%m-%dT00:00:00Z', 'now', '-6 days', 'weekday 1')
		GROUP BY a.display_name`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		external_id BIGINT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS memberships (
		account_id BIGINT NOT NULL REFERENCES accounts(id),
		group_id BIGINT NOT NULL REFERENCES groups(id),
		joined_at TEXT NOT NULL,
		PRIMARY KEY (account_id, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS drink_events (
		id BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES accounts(id),
		group_id BIGINT REFERENCES groups(id),
		drink_name TEXT NOT NULL,
		category TEXT,
		caption TEXT,
		media_ref TEXT,
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_drink_events_account_created
		ON drink_events(account_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_drink_events_created
		ON drink_events(created_at)`,
	`CREATE OR REPLACE VIEW weekly_leaderboard AS
		SELECT a.display_name AS display_name, COUNT(e.id) AS drinks_this_week
		FROM drink_events e
		JOIN accounts a ON a.id = e.account_id
		WHERE e.created_at >= to_char(date_trunc('week', now() AT TIME ZONE 'utc'), 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		GROUP BY a.display_name`,
}

// EnsureSchema creates the tables, indices, and leaderboard view if they
// do not exist. Safe to invoke on every process start.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	schema := sqliteSchema
	if s.backend == BackendPostgres {
		schema = postgresSchema
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	s.logger.Info("schema ready", "backend", s.backend)
	return nil
}
