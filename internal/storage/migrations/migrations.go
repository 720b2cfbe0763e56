// Package migrations embeds the schema for every supported dialect. Each
// dialect has its own directory of goose files with identical version numbers.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
