// Package migrations embeds the SQL schema so the binary migrates itself
// on startup without a deploy-time copy step.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
