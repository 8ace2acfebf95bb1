// Package db provides embedded database schema and migration files.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables. Every
// statement is idempotent (CREATE ... IF NOT EXISTS), so re-running the
// schema against an existing database is safe.
//
//go:embed migrations/001_schema.sql
var Schema string
