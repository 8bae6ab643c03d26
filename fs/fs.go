// Package appfs embeds the static files shipped with the binaries.
package appfs

import "embed"

// FS holds the SQL migrations, one directory per dialect: migrations/postgres and migrations/sqlite3.
//
//go:embed migrations
var FS embed.FS

// MigrationsDir returns the migrations directory of dialect inside FS.
func MigrationsDir(dialect string) string {
	return "migrations/" + dialect
}
