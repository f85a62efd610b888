// Package migrations embebe los archivos SQL de migración.
//
// Los nombres siguen {version}_{name}.sql y se aplican en orden de versión
// con store.Migrator.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Directorios dentro de FS, uno por driver.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)

// Dir retorna el directorio de migraciones del driver.
func Dir(driver string) string {
	if driver == "postgres" {
		return PostgresDir
	}
	return SQLiteDir
}
