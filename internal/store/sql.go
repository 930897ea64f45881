// ABOUTME: SQL-backed Store implementation over database/sql
// ABOUTME: Selects the SQLite or Postgres driver once at startup

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// PostgresOptions are connection parameters for the networked backend.
type PostgresOptions struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Options selects and configures the storage backend. The choice is made
// once at Open and never re-evaluated.
type Options struct {
	Backend  string // "sqlite" or "postgres"
	Path     string // database file path (sqlite)
	Postgres PostgresOptions
}

// SQLStore implements Store over database/sql. Connections are pooled and
// scoped per call; no connection is held across unrelated operations.
type SQLStore struct {
	db      *sql.DB
	backend string
	logger  *slog.Logger
}

// Open creates a store for the configured backend. The schema is not
// touched here; call EnsureSchema before serving.
func Open(opts Options) (*SQLStore, error) {
	logger := slog.Default().With("component", "store")

	var db *sql.DB
	switch opts.Backend {
	case BackendSQLite, "":
		path := opts.Path
		if path == "" {
			path = "beerbot.db"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		var err error
		db, err = sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		// WAL mode for concurrent chat+web readers
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
		logger.Info("opened sqlite store", "path", path)
		return &SQLStore{db: db, backend: BackendSQLite, logger: logger}, nil

	case BackendPostgres:
		dsn := postgresDSN(opts.Postgres)
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("opening postgres database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		logger.Info("opened postgres store", "host", opts.Postgres.Host, "database", opts.Postgres.DBName)
		return &SQLStore{db: db, backend: BackendPostgres, logger: logger}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// postgresDSN builds a connection URL. SSL defaults to required.
func postgresDSN(p PostgresOptions) string {
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	port := p.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   p.Host + ":" + strconv.Itoa(port),
		Path:   "/" + p.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	s.logger.Info("closing store", "backend", s.backend)
	return s.db.Close()
}

// rebind rewrites ? placeholders to the $n form for postgres. Queries in
// this package never contain a literal question mark.
func (s *SQLStore) rebind(query string) string {
	if s.backend != BackendPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// withTx runs fn inside a single transaction; each call either fully
// commits or fully rolls back.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// formatTime renders a timestamp in the stored RFC3339 UTC form.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads a stored RFC3339 timestamp.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored timestamp: %w", err)
	}
	return t, nil
}

// nullString converts an optional string for storage.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
