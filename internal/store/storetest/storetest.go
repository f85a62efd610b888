// Package storetest abre un store SQLite migrado para tests de otros paquetes.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/grantbridge/internal/store"
	_ "github.com/dropDatabas3/grantbridge/internal/store/adapters/sqlite"
	"github.com/dropDatabas3/grantbridge/migrations"
)

// OpenSQLite crea una base en t.TempDir(), aplica las migraciones y la cierra
// al terminar el test.
func OpenSQLite(t testing.TB) store.Connection {
	t.Helper()

	ctx := context.Background()
	conn, err := store.Open(ctx, store.AdapterConfig{
		Name: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "grantbridge.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = store.NewMigrator(migrations.FS, migrations.SQLiteDir).Run(ctx, conn.Migrations())
	require.NoError(t, err)
	return conn
}
