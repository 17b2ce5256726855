// Package migrations embeds the service's SQL schema migrations.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
