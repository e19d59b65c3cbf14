package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// RepositoryStore persists repository configuration and sync status.
type RepositoryStore interface {
	// Save stores or updates a repository.
	Save(ctx context.Context, repo domain.Repository) error

	// Get retrieves a repository by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Repository, error)

	// List returns all repositories.
	List(ctx context.Context) ([]domain.Repository, error)

	// UpdateSyncStatus records the outcome of a sync run.
	UpdateSyncStatus(ctx context.Context, id string, status domain.SyncStatus, at time.Time, errMsg string) error

	// AcquireSyncLock takes the sync lease for a repository.
	// Returns false if another holder owns an unexpired lease.
	AcquireSyncLock(ctx context.Context, id, holder string, ttl time.Duration) (bool, error)

	// ReleaseSyncLock drops the lease if holder still owns it.
	ReleaseSyncLock(ctx context.Context, id, holder string) error
}
