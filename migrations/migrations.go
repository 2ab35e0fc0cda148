// Package migrations embeds the SQL schema migrations applied by
// golang-migrate at startup and by the migrate command.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
