package driven

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// Fetcher retrieves the relevant files of one repository.
// Implementations exist for GitHub and Azure DevOps.
type Fetcher interface {
	// Fetch returns the documents and API specs under the configured scope.
	// A failure to list the repository tree is returned as an error;
	// individual file failures are logged and the file is skipped.
	Fetch(ctx context.Context) (*domain.FetchResult, error)

	// ListImages returns the image assets under content directories.
	ListImages(ctx context.Context) ([]domain.ImageRef, error)

	// DownloadImage returns the bytes of a listed image.
	DownloadImage(ctx context.Context, ref domain.ImageRef) ([]byte, error)

	// Close releases resources.
	Close() error
}

// FetcherBuilder creates a Fetcher for a repository using a plaintext token.
type FetcherBuilder func(repo domain.Repository, token string) (Fetcher, error)

// FetcherFactory creates fetchers from repository configuration.
type FetcherFactory interface {
	// Create returns a Fetcher for the repository.
	// Returns ErrUnsupportedType if the repository kind is unknown.
	Create(ctx context.Context, repo domain.Repository) (Fetcher, error)

	// Register adds a builder for the given kind.
	Register(kind domain.RepositoryKind, builder FetcherBuilder)

	// SupportedKinds returns all registered kinds.
	SupportedKinds() []domain.RepositoryKind
}
