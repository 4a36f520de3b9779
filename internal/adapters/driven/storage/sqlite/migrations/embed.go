// Package migrations embeds the versioned SQL schema for the quest store.
// Files are named NNN_description.up.sql / .down.sql; only up files run.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
