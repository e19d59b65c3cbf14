// Package domain defines the core business entities for docsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Repository: An external source repository and its sync settings
//   - ContentItem: A synced markdown document or blog post
//   - CategoryMetadata: A node of the documentation category tree
//   - APISpec, Author, RepositoryImage, Release: Other synced entities
//   - SyncLog, DocumentChange: The audit trail of sync runs
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
