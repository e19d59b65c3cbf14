// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - RepositoryStore: repository configuration, sync status and the sync lease
//   - ContentStore and SearchIndexer: content items and their FTS5 vectors
//   - CategoryStore, AuthorStore, APISpecStore: derived portal metadata
//   - ImageStore: mirrored image records
//   - SyncLogStore: sync runs and the change audit
//   - ReleaseStore and TeamStore: release detection state
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docsync/data/docsync.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
