// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS holds the ordered schema migrations for Postgres.
//
//go:embed *.sql
var FS embed.FS
