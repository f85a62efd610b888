package store

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Formato de archivo: {version}_{name}.sql (ej: 0001_init.sql)
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// MigrationExecutor es lo que cada adapter le provee al Migrator.
type MigrationExecutor interface {
	// Driver retorna "postgres" o "sqlite".
	Driver() string

	// Exec ejecuta SQL sin resultados. Sin args debe aceptar varios statements.
	Exec(ctx context.Context, sql string, args ...any) error

	// AppliedVersions retorna las versiones registradas en _migrations.
	AppliedVersions(ctx context.Context) (map[int]bool, error)
}

// Migration representa una migración individual.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationResult resultado de aplicar migraciones.
type MigrationResult struct {
	Applied  []int
	Skipped  []int
	Duration time.Duration
}

// Migrator aplica migraciones SQL embebidas.
type Migrator struct {
	fsys fs.FS
	dir  string
}

// NewMigrator crea un Migrator que lee {dir}/*.sql de fsys.
func NewMigrator(fsys fs.FS, dir string) *Migrator {
	return &Migrator{fsys: fsys, dir: dir}
}

// ParseMigrations lee y ordena por versión las migraciones del FS.
func (m *Migrator) ParseMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", m.dir, err)
	}

	var out []Migration
	seen := map[int]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		matches := migrationFilePattern.FindStringSubmatch(e.Name())
		if matches == nil {
			continue
		}
		version, _ := strconv.Atoi(matches[1])
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d (%s, %s)", version, prev, e.Name())
		}
		seen[version] = e.Name()

		content, err := fs.ReadFile(m.fsys, path.Join(m.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: matches[2], SQL: string(content)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Run aplica las migraciones pendientes en orden.
func (m *Migrator) Run(ctx context.Context, exec MigrationExecutor) (*MigrationResult, error) {
	start := time.Now()
	result := &MigrationResult{}

	if err := exec.Exec(ctx, migrationsTableSQL(exec.Driver())); err != nil {
		return result, fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := exec.AppliedVersions(ctx)
	if err != nil {
		return result, fmt.Errorf("getting applied migrations: %w", err)
	}

	migrations, err := m.ParseMigrations()
	if err != nil {
		return result, fmt.Errorf("parsing migrations: %w", err)
	}

	insert := "INSERT INTO _migrations (version, name) VALUES ($1, $2)"
	if exec.Driver() == "sqlite" {
		insert = "INSERT INTO _migrations (version, name) VALUES (?, ?)"
	}

	for _, mig := range migrations {
		if applied[mig.Version] {
			result.Skipped = append(result.Skipped, mig.Version)
			continue
		}
		if err := exec.Exec(ctx, mig.SQL); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("applying migration %d_%s: %w", mig.Version, mig.Name, err)
		}
		if err := exec.Exec(ctx, insert, mig.Version, mig.Name); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("recording migration %d_%s: %w", mig.Version, mig.Name, err)
		}
		result.Applied = append(result.Applied, mig.Version)
	}

	result.Duration = time.Since(start)
	return result, nil
}

func migrationsTableSQL(driver string) string {
	if driver == "postgres" {
		return `CREATE TABLE IF NOT EXISTS _migrations (
			version INT PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	}
	return `CREATE TABLE IF NOT EXISTS _migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
}

// Status retorna las migraciones disponibles y el set de versiones aplicadas.
func (m *Migrator) Status(ctx context.Context, exec MigrationExecutor) ([]Migration, map[int]bool, error) {
	if err := exec.Exec(ctx, migrationsTableSQL(exec.Driver())); err != nil {
		return nil, nil, fmt.Errorf("creating migrations table: %w", err)
	}
	applied, err := exec.AppliedVersions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("getting applied migrations: %w", err)
	}
	all, err := m.ParseMigrations()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing migrations: %w", err)
	}
	return all, applied, nil
}
