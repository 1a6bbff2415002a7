// Package migrations embeds the SQL schema applied by tern at startup.
package migrations

import "embed"

//go:embed *.sql
var MigrationFiles embed.FS
