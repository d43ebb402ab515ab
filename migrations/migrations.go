// Package migrations embeds the database schema migration files.
package migrations

import "embed"

// FS holds the embedded .up.sql migration files, applied in sorted order.
//
//go:embed *.sql
var FS embed.FS
