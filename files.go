package posts

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetDialectMigrationsFS returns the migrations for one SQL dialect,
// either "sqlite" or "postgres"
func GetDialectMigrationsFS(dialect string) (fs.FS, error) {
	dir := "data/sql/migrations/" + dialect
	if _, err := fs.Stat(migrationsFS, dir); err != nil {
		return nil, err
	}
	return fs.Sub(migrationsFS, dir)
}
