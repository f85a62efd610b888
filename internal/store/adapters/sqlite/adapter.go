// Package sqlite implementa el adapter SQLite (modernc.org/sqlite, sin cgo).
// Es el driver por defecto para desarrollo y tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	"github.com/dropDatabas3/grantbridge/internal/store"
)

func init() {
	store.RegisterAdapter(&sqliteAdapter{})
}

type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string { return "sqlite" }

func (a *sqliteAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	path := strings.TrimSpace(cfg.DSN)
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Un solo writer: serializa el DELETE ... RETURNING del canje.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return &conn{db: db}, nil
}

const dsnPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

// buildDSN agrega los pragmas al path, respetando la query que ya traiga un
// DSN "file:".
func buildDSN(path string) string {
	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		dsn = filepath.Clean(path)
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + dsnPragmas
	}
	return dsn + "?" + dsnPragmas
}

// conn representa una conexión activa a SQLite.
type conn struct {
	db *sql.DB
}

func (c *conn) Name() string { return "sqlite" }

func (c *conn) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *conn) Close() error { return c.db.Close() }

// ─── Repositorios ───

func (c *conn) Clients() repository.ClientRepository             { return &clientRepo{db: c.db} }
func (c *conn) Codes() repository.AuthCodeRepository             { return &codeRepo{db: c.db} }
func (c *conn) Services() repository.ServiceRepository           { return &serviceRepo{db: c.db} }
func (c *conn) ServiceTokens() repository.ServiceTokenRepository { return &serviceTokenRepo{db: c.db} }

func (c *conn) Migrations() store.MigrationExecutor { return &migrationExec{db: c.db} }

// ─── Migraciones ───

type migrationExec struct{ db *sql.DB }

func (m *migrationExec) Driver() string { return "sqlite" }

func (m *migrationExec) Exec(ctx context.Context, query string, args ...any) error {
	_, err := m.db.ExecContext(ctx, query, args...)
	return err
}

func (m *migrationExec) AppliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM _migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// ─── helpers ───

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

func newID() string { return uuid.NewString() }

// mapErr traduce errores del driver a los sentinels de repository.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
