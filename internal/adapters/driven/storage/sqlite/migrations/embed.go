// Package migrations holds the numbered schema steps applied to lexrag.db.
// Files are named NNN_name.up.sql. A step that can be undone in place also
// ships NNN_name.down.sql; the vector tables have none because reset
// deletes the database file.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
