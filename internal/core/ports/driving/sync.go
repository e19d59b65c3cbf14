package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// SyncOrchestrator coordinates repository synchronisation.
type SyncOrchestrator interface {
	// Sync runs one sync for a repository.
	// The SyncLog and repository status are always finalised before returning.
	Sync(ctx context.Context, repositoryID string) (*domain.SyncResult, error)

	// SyncDue syncs every enabled, scheduled repository that is due at now.
	// Repositories run concurrently; one failure does not affect the others.
	SyncDue(ctx context.Context, now time.Time) error

	// Status returns sync status for a repository.
	Status(ctx context.Context, repositoryID string) (*SyncStatus, error)

	// History returns recent sync logs, most recent first.
	History(ctx context.Context, repositoryID string, limit int) ([]domain.SyncLog, error)

	// Changes returns the change log of one sync run.
	Changes(ctx context.Context, syncLogID string) ([]domain.DocumentChange, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// RepositoryID identifies the repository.
	RepositoryID string

	// Running indicates if sync is currently in progress.
	Running bool

	// Phase is the pipeline step currently executing.
	Phase string

	// StartedAt is when the running sync began.
	StartedAt time.Time
}
