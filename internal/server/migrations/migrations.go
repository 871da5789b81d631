// Package migrations embeds the goose schema migrations, one directory per
// supported backend.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// Dir returns the migration directory inside FS for a database/sql driver.
func Dir(driver string) (string, bool) {
	switch driver {
	case "sqlite", "sqlite3":
		return "sqlite", true
	case "pgx", "postgres":
		return "postgres", true
	}
	return "", false
}
