package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// RepositoryService is the admin surface for repository configuration.
type RepositoryService interface {
	// Add creates a repository; token is encrypted before it is stored.
	Add(ctx context.Context, repo domain.Repository, token string) (*domain.Repository, error)

	// Get retrieves a repository by ID.
	Get(ctx context.Context, id string) (*domain.Repository, error)

	// List returns all repositories.
	List(ctx context.Context) ([]domain.Repository, error)

	// SetEnabled enables or disables a repository.
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// SetFrequency changes the scheduled sync interval. Zero means manual only.
	SetFrequency(ctx context.Context, id string, frequency time.Duration) error

	// SetToken replaces the stored token.
	SetToken(ctx context.Context, id, token string) error
}

// TeamService manages the teams that release blocks may address.
type TeamService interface {
	Save(ctx context.Context, team domain.Team) error
	List(ctx context.Context) ([]domain.Team, error)
}
