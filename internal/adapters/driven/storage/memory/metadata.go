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

// Ensure CategoryStore implements the interface.
var _ driven.CategoryStore = (*CategoryStore)(nil)

// CategoryStore is an in-memory implementation of driven.CategoryStore.
type CategoryStore struct {
	mu   sync.RWMutex
	cats map[string]domain.CategoryMetadata
}

// NewCategoryStore creates a new in-memory category store.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{cats: make(map[string]domain.CategoryMetadata)}
}

// Save creates or updates a category by (RepositoryID, Slug).
func (s *CategoryStore) Save(_ context.Context, cat *domain.CategoryMetadata) error {
	if cat == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range s.cats {
		if existing.RepositoryID == cat.RepositoryID && existing.Slug == cat.Slug {
			cat.ID = id
			cat.CreatedAt = existing.CreatedAt
			break
		}
	}
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	if cat.CreatedAt.IsZero() {
		cat.CreatedAt = now
	}
	cat.UpdatedAt = now

	stored := *cat
	if cat.ParentSlug != nil {
		p := *cat.ParentSlug
		stored.ParentSlug = &p
	}
	s.cats[cat.ID] = stored
	return nil
}

// ListByRepository returns all categories of a repository in tree order.
func (s *CategoryStore) ListByRepository(_ context.Context, repositoryID string) ([]domain.CategoryMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.CategoryMetadata
	for _, c := range s.cats {
		if c.RepositoryID == repositoryID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Level != result[j].Level {
			return result[i].Level < result[j].Level
		}
		return result[i].Slug < result[j].Slug
	})
	return result, nil
}

// Delete removes a category.
func (s *CategoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cats, id)
	return nil
}

// Ensure AuthorStore implements the interface.
var _ driven.AuthorStore = (*AuthorStore)(nil)

// AuthorStore is an in-memory implementation of driven.AuthorStore.
// Emails are matched case-insensitively.
type AuthorStore struct {
	mu      sync.RWMutex
	authors map[string]domain.Author
}

// NewAuthorStore creates a new in-memory author store.
func NewAuthorStore() *AuthorStore {
	return &AuthorStore{authors: make(map[string]domain.Author)}
}

// Upsert creates or updates an author by email.
func (s *AuthorStore) Upsert(_ context.Context, author *domain.Author) error {
	if author == nil || author.Email == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(author.Email)
	now := time.Now().UTC()
	if existing, ok := s.authors[key]; ok {
		author.ID = existing.ID
		author.Email = existing.Email
		author.CreatedAt = existing.CreatedAt
	}
	if author.ID == "" {
		author.ID = uuid.NewString()
	}
	if author.CreatedAt.IsZero() {
		author.CreatedAt = now
	}
	author.UpdatedAt = now

	stored := *author
	stored.Links = make(map[string]string, len(author.Links))
	for k, v := range author.Links {
		stored.Links[k] = v
	}
	s.authors[key] = stored
	return nil
}

// GetByEmail retrieves an author by email.
func (s *AuthorStore) GetByEmail(_ context.Context, email string) (*domain.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.authors[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// GetByName retrieves an author by display name (case-insensitive).
func (s *AuthorStore) GetByName(_ context.Context, name string) (*domain.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.authors {
		if strings.EqualFold(a.Name, name) {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Ensure APISpecStore implements the interface.
var _ driven.APISpecStore = (*APISpecStore)(nil)

// APISpecStore is an in-memory implementation of driven.APISpecStore.
type APISpecStore struct {
	mu    sync.RWMutex
	specs map[string]domain.APISpec
}

// NewAPISpecStore creates a new in-memory API spec store.
func NewAPISpecStore() *APISpecStore {
	return &APISpecStore{specs: make(map[string]domain.APISpec)}
}

// Save creates or updates a spec by (Slug, Version).
func (s *APISpecStore) Save(_ context.Context, spec *domain.APISpec) error {
	if spec == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range s.specs {
		if existing.Slug == spec.Slug && existing.Version == spec.Version {
			spec.ID = id
			spec.CreatedAt = existing.CreatedAt
			break
		}
	}
	if spec.ID == "" {
		spec.ID = uuid.NewString()
	}
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = now
	}
	spec.UpdatedAt = now
	s.specs[spec.ID] = *spec
	return nil
}

// ListByRepository returns all specs of a repository.
func (s *APISpecStore) ListByRepository(_ context.Context, repositoryID string) ([]domain.APISpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.APISpec
	for _, sp := range s.specs {
		if sp.RepositoryID == repositoryID {
			result = append(result, sp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Slug != result[j].Slug {
			return result[i].Slug < result[j].Slug
		}
		return result[i].Version < result[j].Version
	})
	return result, nil
}

// Delete removes a spec.
func (s *APISpecStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.specs, id)
	return nil
}
