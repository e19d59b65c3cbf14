// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Fetcher, FetcherFactory: Pull files from GitHub or Azure DevOps
//   - RepositoryStore: Repository configuration, sync status and sync lease
//   - ContentStore, CategoryStore, AuthorStore, APISpecStore, ImageStore,
//     ReleaseStore, TeamStore: Synced entity persistence
//   - SyncLogStore: Sync run and change log persistence
//   - SearchIndexer: Full-text search vectors (SQLite FTS5)
//   - CredentialCipher: At-rest token encryption
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Notifier: Release and content-update notifications
//   - ImageStorage: Local image mirror. Without it, image sync is skipped.
//   - Cache: Search result cache
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
