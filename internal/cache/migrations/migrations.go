// Package migrations embeds the schema of the SQLite snapshot cache.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
