package driven

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// ContentStore persists content items.
// (RepositoryID, FilePath) must be unique.
type ContentStore interface {
	// Save creates or updates a content item.
	Save(ctx context.Context, item *domain.ContentItem) error

	// GetByPath retrieves an item by repository and file path.
	// Returns domain.ErrNotFound if it does not exist.
	GetByPath(ctx context.Context, repositoryID, filePath string) (*domain.ContentItem, error)

	// Get retrieves an item by ID.
	Get(ctx context.Context, id string) (*domain.ContentItem, error)

	// ListByRepository returns all items of a repository.
	ListByRepository(ctx context.Context, repositoryID string) ([]domain.ContentItem, error)

	// Delete removes an item.
	Delete(ctx context.Context, id string) error
}

// SearchIndexer maintains full-text search vectors for content items.
type SearchIndexer interface {
	// UpdateSearchVector regenerates the search vector of an item.
	UpdateSearchVector(ctx context.Context, itemID string) error

	// RemoveSearchVector drops the search vector of a deleted item.
	RemoveSearchVector(ctx context.Context, itemID string) error

	// Search performs a keyword search.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// Cache is a small key/value cache with namespace invalidation.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)

	// InvalidatePrefix drops every key starting with prefix.
	InvalidatePrefix(prefix string) int
}
