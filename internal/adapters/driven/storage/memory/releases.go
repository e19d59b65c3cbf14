package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure ReleaseStore implements the interface.
var _ driven.ReleaseStore = (*ReleaseStore)(nil)

// ReleaseStore is an in-memory implementation of driven.ReleaseStore.
type ReleaseStore struct {
	mu       sync.RWMutex
	releases map[string]domain.Release
}

// NewReleaseStore creates a new in-memory release store.
func NewReleaseStore() *ReleaseStore {
	return &ReleaseStore{releases: make(map[string]domain.Release)}
}

func releaseKey(repositoryID, version, filePath string) string {
	return repositoryID + "\x00" + version + "\x00" + filePath
}

// Find retrieves a release by (repositoryID, version, filePath).
func (s *ReleaseStore) Find(_ context.Context, repositoryID, version, filePath string) (*domain.Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.releases[releaseKey(repositoryID, version, filePath)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r = cloneRelease(r)
	return &r, nil
}

// Save creates or updates a release, keeping NotifiedAt.
func (s *ReleaseStore) Save(_ context.Context, release *domain.Release) error {
	if release == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := releaseKey(release.RepositoryID, release.Version, release.FilePath)
	now := time.Now().UTC()
	stored := cloneRelease(*release)
	if existing, ok := s.releases[key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		stored.NotifiedAt = existing.NotifiedAt
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.releases[key] = stored

	release.ID = stored.ID
	release.CreatedAt = stored.CreatedAt
	release.UpdatedAt = stored.UpdatedAt
	return nil
}

// MarkNotified records that the published notification was sent.
func (s *ReleaseStore) MarkNotified(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, r := range s.releases {
		if r.ID == id {
			r.NotifiedAt = &at
			s.releases[key] = r
			return nil
		}
	}
	return domain.ErrNotFound
}

// List returns all releases ordered by version. Used by tests.
func (s *ReleaseStore) List() []domain.Release {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Release, 0, len(s.releases))
	for _, r := range s.releases {
		result = append(result, cloneRelease(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result
}

func cloneRelease(r domain.Release) domain.Release {
	r.Teams = append([]string(nil), r.Teams...)
	if r.NotifiedAt != nil {
		v := *r.NotifiedAt
		r.NotifiedAt = &v
	}
	return r
}

// Ensure TeamStore implements the interface.
var _ driven.TeamStore = (*TeamStore)(nil)

// TeamStore is an in-memory implementation of driven.TeamStore.
type TeamStore struct {
	mu    sync.RWMutex
	teams map[string]domain.Team
}

// NewTeamStore creates a new in-memory team store.
func NewTeamStore() *TeamStore {
	return &TeamStore{teams: make(map[string]domain.Team)}
}

// Save creates or updates a team.
func (s *TeamStore) Save(_ context.Context, team domain.Team) error {
	if team.Slug == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.Slug] = team
	return nil
}

// List returns all teams ordered by slug.
func (s *TeamStore) List(_ context.Context) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Team, 0, len(s.teams))
	for _, t := range s.teams {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result, nil
}
