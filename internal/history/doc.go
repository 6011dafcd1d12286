// Package history records extraction runs in SQLite.
//
// Each run gets a UUID and a summary row; every processed file adds an
// outcome row and one row per written stream. The database is a convenience
// log rather than a source of truth for extracted files. Schema changes bump
// the version in schema.go; users delete the database to adopt the new
// schema.
package history
