package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure ContentStore implements the interface.
var _ driven.ContentStore = (*ContentStore)(nil)

// ContentStore is an in-memory implementation of driven.ContentStore.
type ContentStore struct {
	mu    sync.RWMutex
	items map[string]domain.ContentItem
	// byPath maps repositoryID + "\x00" + filePath to the item ID.
	byPath map[string]string
}

// NewContentStore creates a new in-memory content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		items:  make(map[string]domain.ContentItem),
		byPath: make(map[string]string),
	}
}

func pathKey(repositoryID, filePath string) string {
	return repositoryID + "\x00" + filePath
}

// Save creates or updates an item by (RepositoryID, FilePath).
func (s *ContentStore) Save(_ context.Context, item *domain.ContentItem) error {
	if item == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := pathKey(item.RepositoryID, item.FilePath)
	if id, ok := s.byPath[key]; ok {
		item.ID = id
		item.CreatedAt = s.items[id].CreatedAt
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	s.items[item.ID] = cloneItem(*item)
	s.byPath[key] = item.ID
	return nil
}

// GetByPath retrieves an item by repository and file path.
func (s *ContentStore) GetByPath(_ context.Context, repositoryID, filePath string) (*domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPath[pathKey(repositoryID, filePath)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	item := cloneItem(s.items[id])
	return &item, nil
}

// Get retrieves an item by ID.
func (s *ContentStore) Get(_ context.Context, id string) (*domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	item = cloneItem(item)
	return &item, nil
}

// ListByRepository returns all items of a repository ordered by path.
func (s *ContentStore) ListByRepository(_ context.Context, repositoryID string) ([]domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.ContentItem
	for _, item := range s.items {
		if item.RepositoryID == repositoryID {
			result = append(result, cloneItem(item))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FilePath < result[j].FilePath })
	return result, nil
}

// Delete removes an item.
func (s *ContentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.items[id]; ok {
		delete(s.byPath, pathKey(item.RepositoryID, item.FilePath))
		delete(s.items, id)
	}
	return nil
}

func cloneItem(item domain.ContentItem) domain.ContentItem {
	item.Tags = append([]string(nil), item.Tags...)
	item.RestrictedRoles = append([]string(nil), item.RestrictedRoles...)
	if item.AuthorID != nil {
		v := *item.AuthorID
		item.AuthorID = &v
	}
	if item.PublishedAt != nil {
		v := *item.PublishedAt
		item.PublishedAt = &v
	}
	return item
}

// Ensure SearchIndexer implements the interface.
var _ driven.SearchIndexer = (*SearchIndexer)(nil)

// SearchIndexer is a substring-matching driven.SearchIndexer over a ContentStore.
// Scores follow the FTS convention: lower is better.
type SearchIndexer struct {
	mu      sync.RWMutex
	content *ContentStore
	indexed map[string]string
}

// NewSearchIndexer creates an indexer reading items from content.
func NewSearchIndexer(content *ContentStore) *SearchIndexer {
	return &SearchIndexer{
		content: content,
		indexed: make(map[string]string),
	}
}

// UpdateSearchVector snapshots the searchable text of an item.
func (s *SearchIndexer) UpdateSearchVector(ctx context.Context, itemID string) error {
	item, err := s.content.Get(ctx, itemID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexed[itemID] = strings.ToLower(item.Title)
	return nil
}

// RemoveSearchVector drops an item from the index.
func (s *SearchIndexer) RemoveSearchVector(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexed, itemID)
	return nil
}

// Indexed reports whether an item has a search vector.
func (s *SearchIndexer) Indexed(itemID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexed[itemID]
	return ok
}

// Search matches every query word against title, excerpt and body.
func (s *SearchIndexer) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	ids := make([]string, 0, len(s.indexed))
	for id := range s.indexed {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	var results []domain.SearchResult
	for _, id := range ids {
		item, err := s.content.Get(ctx, id)
		if err != nil {
			continue
		}
		if opts.Kind != domain.ContentUnknown && item.Kind != opts.Kind {
			continue
		}
		if len(opts.RepositoryIDs) > 0 && !contains(opts.RepositoryIDs, item.RepositoryID) {
			continue
		}
		title := strings.ToLower(item.Title)
		body := strings.ToLower(item.Excerpt + " " + item.Description + " " + item.Content)

		score, matched := 0.0, true
		for _, w := range words {
			switch {
			case strings.Contains(title, w):
				score -= 10
			case strings.Contains(body, w):
				score--
			default:
				matched = false
			}
		}
		if matched {
			results = append(results, domain.SearchResult{Item: *item, Score: score, Snippet: item.Excerpt})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		return results[i].Item.FilePath < results[j].Item.FilePath
	})
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
