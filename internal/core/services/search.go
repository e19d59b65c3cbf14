package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultSearchLimit is used when a query does not set a limit.
const DefaultSearchLimit = 20

// SearchService answers keyword queries over synced content. Results are
// cached under the search: namespace, which the reconciler drops whenever
// a search vector changes.
type SearchService struct {
	index        driven.SearchIndexer
	cache        driven.Cache
	defaultLimit int
}

// NewSearchService creates a search service. cache may be nil.
func NewSearchService(index driven.SearchIndexer, cache driven.Cache, defaultLimit int) *SearchService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultSearchLimit
	}
	return &SearchService{index: index, cache: cache, defaultLimit: defaultLimit}
}

// Search performs a keyword search.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if s.index == nil {
		return nil, domain.ErrSearchUnavailable
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = s.defaultLimit
	}

	key := cacheKey(query, opts)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if results, ok := v.([]domain.SearchResult); ok {
				logger.Debug("search cache hit: %q", query)
				return results, nil
			}
		}
	}

	results, err := s.index.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(key, results)
	}
	return results, nil
}

func cacheKey(query string, opts domain.SearchOptions) string {
	repos := append([]string(nil), opts.RepositoryIDs...)
	sort.Strings(repos)
	return fmt.Sprintf("%s%s|%s|%d|%s",
		searchCachePrefix, strings.ToLower(query), opts.Kind, opts.Limit, strings.Join(repos, ","))
}
