// Package migrations embeds the SQL schema into the binary so the service
// can migrate without the .sql files on disk.
package migrations

import "embed"

// FS holds every migration at its root, ready for database.DB.Migrate.
//
//go:embed *.sql
var FS embed.FS
