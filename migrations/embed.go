// Package migrations embeds the SQL migration files so binaries can
// apply them without access to the source tree.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
