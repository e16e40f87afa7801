// Package database provides the SQLite persistence layer for climasim.
//
// The device core keeps all live state in memory; SQLite only stores the
// audit trail of control commands and settings changes, so the schema is
// deliberately small. The package wraps database/sql with:
//
//   - Connection setup tuned for SQLite (WAL mode, busy timeout, single
//     writer connection)
//   - Embedded schema migrations applied at startup
//   - A health check used by the API health endpoint
//
// Migrations are .sql files embedded via the migrations package and named
// YYYYMMDD_HHMMSS_description.up.sql with an optional matching .down.sql.
// Each migration runs in its own transaction and is recorded in the
// schema_migrations table.
package database
