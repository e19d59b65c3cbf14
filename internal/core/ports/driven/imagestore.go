package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// ImageStore persists image tracking records.
type ImageStore interface {
	// Save creates or updates an image record by (RepositoryID, FilePath).
	Save(ctx context.Context, img *domain.RepositoryImage) error

	// ListByRepository returns all tracked images of a repository.
	ListByRepository(ctx context.Context, repositoryID string) ([]domain.RepositoryImage, error)

	// Touch updates LastSyncedAt only.
	Touch(ctx context.Context, id string, at time.Time) error

	// Delete removes an image record.
	Delete(ctx context.Context, id string) error
}

// ImageStorage writes mirrored image bytes.
type ImageStorage interface {
	// Write stores data at the relative path and returns the resolved path.
	Write(ctx context.Context, relPath string, data []byte) (string, error)

	// Remove deletes a stored file. Missing files are not an error.
	Remove(ctx context.Context, relPath string) error
}
