package migrations

import "embed"

// Files stores forward-only SQL migrations embedded into the binary, laid out as
// <dialect>/<service>/NNN_name.sql.
//
//go:embed sqlite/clinician/*.sql sqlite/patient/*.sql postgres/clinician/*.sql postgres/patient/*.sql
var Files embed.FS
