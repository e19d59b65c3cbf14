package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// ReleaseStore persists releases extracted from documents.
type ReleaseStore interface {
	// Find retrieves a release by (repositoryID, version, filePath).
	// Returns domain.ErrNotFound if it does not exist.
	Find(ctx context.Context, repositoryID, version, filePath string) (*domain.Release, error)

	// Save creates or updates a release.
	Save(ctx context.Context, release *domain.Release) error

	// MarkNotified records that the published notification was sent.
	MarkNotified(ctx context.Context, id string, at time.Time) error
}

// TeamStore persists known release teams.
type TeamStore interface {
	// Save creates or updates a team.
	Save(ctx context.Context, team domain.Team) error

	// List returns all teams.
	List(ctx context.Context) ([]domain.Team, error)
}
