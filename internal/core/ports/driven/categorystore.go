package driven

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// CategoryStore persists the category tree. (RepositoryID, Slug) is unique.
type CategoryStore interface {
	// Save creates or updates a category by (RepositoryID, Slug).
	Save(ctx context.Context, cat *domain.CategoryMetadata) error

	// ListByRepository returns all categories of a repository.
	ListByRepository(ctx context.Context, repositoryID string) ([]domain.CategoryMetadata, error)

	// Delete removes a category.
	Delete(ctx context.Context, id string) error
}

// AuthorStore persists author profiles. Email is unique.
type AuthorStore interface {
	// Upsert creates or updates an author by email.
	Upsert(ctx context.Context, author *domain.Author) error

	// GetByEmail retrieves an author.
	// Returns domain.ErrNotFound if it does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.Author, error)

	// GetByName retrieves an author by display name (case-insensitive).
	GetByName(ctx context.Context, name string) (*domain.Author, error)
}

// APISpecStore persists API specifications. (Slug, Version) is unique.
type APISpecStore interface {
	// Save creates or updates a spec.
	Save(ctx context.Context, spec *domain.APISpec) error

	// ListByRepository returns all specs of a repository.
	ListByRepository(ctx context.Context, repositoryID string) ([]domain.APISpec, error)

	// Delete removes a spec.
	Delete(ctx context.Context, id string) error
}
