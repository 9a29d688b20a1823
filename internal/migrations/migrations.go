// Package migrations embeds the goose schema migrations, one directory per
// SQL dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// Dir returns the migration directory for a goose dialect name.
func Dir(dialect string) string {
	if dialect == "pgx" || dialect == "postgres" {
		return "postgres"
	}
	return "sqlite"
}
