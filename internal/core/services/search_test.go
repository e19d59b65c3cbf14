package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memcache "github.com/custodia-labs/docsync/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// stubIndexer returns canned results and counts queries.
type stubIndexer struct {
	results []domain.SearchResult
	err     error
	queries int
	last    domain.SearchOptions
}

func (s *stubIndexer) UpdateSearchVector(context.Context, string) error { return nil }
func (s *stubIndexer) RemoveSearchVector(context.Context, string) error { return nil }

func (s *stubIndexer) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	s.queries++
	s.last = opts
	return s.results, s.err
}

func TestSearchService(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query returns nothing", func(t *testing.T) {
		idx := &stubIndexer{}
		svc := NewSearchService(idx, nil, 0)
		results, err := svc.Search(ctx, "   ", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Equal(t, 0, idx.queries)
	})

	t.Run("default limit applied", func(t *testing.T) {
		idx := &stubIndexer{}
		svc := NewSearchService(idx, nil, 7)
		_, err := svc.Search(ctx, "helm", domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, 7, idx.last.Limit)
	})

	t.Run("no index", func(t *testing.T) {
		svc := NewSearchService(nil, nil, 0)
		_, err := svc.Search(ctx, "helm", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	})

	t.Run("index error is wrapped", func(t *testing.T) {
		svc := NewSearchService(&stubIndexer{err: errors.New("fts5: syntax error")}, nil, 0)
		_, err := svc.Search(ctx, "helm", domain.SearchOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fts5")
	})

	t.Run("results are cached per query and options", func(t *testing.T) {
		idx := &stubIndexer{results: []domain.SearchResult{{Item: domain.ContentItem{Title: "Helm"}}}}
		svc := NewSearchService(idx, memcache.New(16, time.Minute), 0)

		for i := 0; i < 3; i++ {
			results, err := svc.Search(ctx, "Helm", domain.SearchOptions{RepositoryIDs: []string{"b", "a"}})
			require.NoError(t, err)
			require.Len(t, results, 1)
		}
		assert.Equal(t, 1, idx.queries)

		_, err := svc.Search(ctx, "helm", domain.SearchOptions{RepositoryIDs: []string{"a", "b"}})
		require.NoError(t, err)
		assert.Equal(t, 1, idx.queries, "case and repository order do not change the key")

		_, err = svc.Search(ctx, "helm", domain.SearchOptions{Kind: domain.ContentBlog})
		require.NoError(t, err)
		assert.Equal(t, 2, idx.queries)
	})
}

func TestSearchCacheInvalidatedBySync(t *testing.T) {
	ctx := context.Background()
	cache := memcache.New(16, time.Minute)
	env := newTestEnvWith(t, func(d *SyncDeps) { d.Cache = cache })
	svc := NewSearchService(env.search, cache, 0)

	env.fetcher.setDocuments(map[string]string{"docs/helm.md": "# Helm charts\n"})
	env.sync(t)

	results, err := svc.Search(ctx, "helm", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, cache.Len())

	env.fetcher.setDocuments(map[string]string{
		"docs/helm.md":    "# Helm charts\n",
		"docs/helm-ci.md": "# Helm in CI\n",
	})
	env.sync(t)
	assert.Equal(t, 0, cache.Len())

	results, err = svc.Search(ctx, "helm", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

var _ driven.SearchIndexer = (*stubIndexer)(nil)
