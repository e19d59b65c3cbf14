package driving

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// SearchService provides search over synced content.
type SearchService interface {
	// Search performs a keyword search.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
