package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ensure the services implement their interfaces.
var (
	_ driving.RepositoryService = (*RepositoryService)(nil)
	_ driving.TeamService       = (*TeamService)(nil)
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// RepositoryService manages repository configuration.
type RepositoryService struct {
	repos  driven.RepositoryStore
	cipher driven.CredentialCipher
}

// NewRepositoryService creates a repository service. cipher may be nil when
// only token-less repositories are managed.
func NewRepositoryService(repos driven.RepositoryStore, cipher driven.CredentialCipher) *RepositoryService {
	return &RepositoryService{repos: repos, cipher: cipher}
}

// Add validates and stores a new repository. The token, if any, is
// encrypted before it reaches the store.
func (s *RepositoryService) Add(ctx context.Context, repo domain.Repository, token string) (*domain.Repository, error) {
	repo.Name = strings.TrimSpace(repo.Name)
	repo.Owner = strings.TrimSpace(repo.Owner)
	repo.Repo = strings.TrimSpace(repo.Repo)
	repo.Project = strings.TrimSpace(repo.Project)

	if !repo.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, repo.Kind)
	}
	if repo.Owner == "" || repo.Repo == "" {
		return nil, fmt.Errorf("%w: owner and repo are required", domain.ErrInvalidInput)
	}
	if repo.Kind == domain.RepositoryAzure && repo.Project == "" {
		return nil, fmt.Errorf("%w: azure repositories need a project", domain.ErrInvalidInput)
	}
	if repo.SyncFrequency < 0 {
		return nil, fmt.Errorf("%w: sync frequency cannot be negative", domain.ErrInvalidInput)
	}
	if repo.Name == "" {
		repo.Name = repo.Repo
	}
	if repo.Slug == "" {
		repo.Slug = slugify(repo.Name)
	}
	if repo.Slug == "" {
		return nil, fmt.Errorf("%w: cannot derive a slug from %q", domain.ErrInvalidInput, repo.Name)
	}

	existing, err := s.repos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	for _, r := range existing {
		if r.Slug == repo.Slug {
			return nil, fmt.Errorf("%w: repository %s", domain.ErrAlreadyExists, repo.Slug)
		}
	}

	if token = strings.TrimSpace(token); token != "" {
		enc, err := s.encrypt(token)
		if err != nil {
			return nil, err
		}
		repo.EncryptedToken = enc
	}

	repo.ID = uuid.NewString()
	if err := s.repos.Save(ctx, repo); err != nil {
		return nil, fmt.Errorf("save repository: %w", err)
	}
	return s.repos.Get(ctx, repo.ID)
}

// Get retrieves a repository by ID.
func (s *RepositoryService) Get(ctx context.Context, id string) (*domain.Repository, error) {
	return s.repos.Get(ctx, id)
}

// List returns all repositories.
func (s *RepositoryService) List(ctx context.Context) ([]domain.Repository, error) {
	return s.repos.List(ctx)
}

// SetEnabled enables or disables a repository.
func (s *RepositoryService) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return s.update(ctx, id, func(r *domain.Repository) error {
		r.Enabled = enabled
		return nil
	})
}

// SetFrequency changes the scheduled sync interval. Zero means manual only.
func (s *RepositoryService) SetFrequency(ctx context.Context, id string, frequency time.Duration) error {
	if frequency < 0 {
		return fmt.Errorf("%w: sync frequency cannot be negative", domain.ErrInvalidInput)
	}
	return s.update(ctx, id, func(r *domain.Repository) error {
		r.SyncFrequency = frequency
		return nil
	})
}

// SetToken replaces the stored token. An empty token clears it.
func (s *RepositoryService) SetToken(ctx context.Context, id, token string) error {
	return s.update(ctx, id, func(r *domain.Repository) error {
		token = strings.TrimSpace(token)
		if token == "" {
			r.EncryptedToken = ""
			return nil
		}
		enc, err := s.encrypt(token)
		if err != nil {
			return err
		}
		r.EncryptedToken = enc
		return nil
	})
}

func (s *RepositoryService) update(ctx context.Context, id string, mutate func(*domain.Repository) error) error {
	repo, err := s.repos.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}
	if err := mutate(repo); err != nil {
		return err
	}
	if err := s.repos.Save(ctx, *repo); err != nil {
		return fmt.Errorf("save repository: %w", err)
	}
	return nil
}

func (s *RepositoryService) encrypt(token string) (string, error) {
	if s.cipher == nil {
		return "", fmt.Errorf("%w: no encryption key configured", domain.ErrInvalidInput)
	}
	enc, err := s.cipher.Encrypt(token)
	if err != nil {
		return "", fmt.Errorf("encrypt token: %w", err)
	}
	return enc, nil
}

func slugify(name string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// TeamService manages the teams that release blocks may address.
type TeamService struct {
	teams driven.TeamStore
}

// NewTeamService creates a team service.
func NewTeamService(teams driven.TeamStore) *TeamService {
	return &TeamService{teams: teams}
}

// Save creates or updates a team. Slugs are stored lower-case so they
// match the team lists parsed from release blocks.
func (s *TeamService) Save(ctx context.Context, team domain.Team) error {
	team.Slug = strings.ToLower(strings.TrimSpace(team.Slug))
	if team.Slug == "" {
		return fmt.Errorf("%w: team slug is required", domain.ErrInvalidInput)
	}
	if team.Name == "" {
		team.Name = team.Slug
	}
	if err := s.teams.Save(ctx, team); err != nil {
		return fmt.Errorf("save team %s: %w", team.Slug, err)
	}
	return nil
}

// List returns all teams.
func (s *TeamService) List(ctx context.Context) ([]domain.Team, error) {
	return s.teams.List(ctx)
}

// Seed saves every configured team, leaving unlisted teams untouched.
func (s *TeamService) Seed(ctx context.Context, teams []domain.Team) error {
	for _, t := range teams {
		if err := s.Save(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
