// Package migrations embeds the forward-only SQL schema files
package migrations

import "embed"

// FS holds every .sql file in this directory, applied in name order
//
//go:embed *.sql
var FS embed.FS
