package driven

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// SyncLogStore persists sync runs and their change log.
type SyncLogStore interface {
	// Create inserts a new in-progress sync log.
	Create(ctx context.Context, log *domain.SyncLog) error

	// Finalize writes the terminal state of a sync log.
	Finalize(ctx context.Context, log *domain.SyncLog) error

	// Get retrieves a sync log by ID.
	Get(ctx context.Context, id string) (*domain.SyncLog, error)

	// List returns recent sync logs of a repository, most recent first.
	List(ctx context.Context, repositoryID string, limit int) ([]domain.SyncLog, error)

	// SaveChanges writes a batch of change entries in one transaction.
	SaveChanges(ctx context.Context, changes []domain.DocumentChange) error

	// ListChanges returns the change entries of a sync log.
	ListChanges(ctx context.Context, syncLogID string) ([]domain.DocumentChange, error)
}
