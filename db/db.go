// Package db embeds the SQL migration files so the binary can migrate
// the schema without shipping the files separately.
package db

import "embed"

// Migrations holds the schema migration files applied by
// internal/database at startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS
