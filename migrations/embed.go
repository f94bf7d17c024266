// Package migrations embeds the per-dialect SQL migrations so binaries and
// tests do not depend on the working directory.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
