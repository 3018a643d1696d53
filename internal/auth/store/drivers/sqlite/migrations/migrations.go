// Package migrations embeds the SQL migration files so they compile into
// the binary and apply on startup without any external tooling.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
