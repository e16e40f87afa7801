// Package migrations embeds SQL migration files into the binary so the
// device runs its schema setup without shipping loose .sql files.
package migrations

import (
	"embed"

	"github.com/openclimate-io/climasim-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	// Register embedded migrations with the database package.
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
