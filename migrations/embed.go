// Package migrations embeds the goose SQL migrations for each supported dialect.
package migrations

import "embed"

// FS holds postgres/*.sql and sqlite/*.sql.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Directories within FS, keyed by dialect name.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
