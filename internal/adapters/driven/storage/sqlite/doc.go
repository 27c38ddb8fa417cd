// Package sqlite provides the SQLite-backed metadata store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It persists documents and their chunks; vectors live in
// the vector index, which refers to chunks by ID.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each applied version is recorded in
// schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.contextiq/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite's own locking
// in WAL mode.
package sqlite
