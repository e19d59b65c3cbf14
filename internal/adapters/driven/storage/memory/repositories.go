package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure RepositoryStore implements the interface.
var _ driven.RepositoryStore = (*RepositoryStore)(nil)

type syncLease struct {
	holder  string
	expires time.Time
}

// RepositoryStore is an in-memory implementation of driven.RepositoryStore.
type RepositoryStore struct {
	mu     sync.RWMutex
	repos  map[string]domain.Repository
	leases map[string]syncLease
	now    func() time.Time
}

// NewRepositoryStore creates a new in-memory repository store.
func NewRepositoryStore() *RepositoryStore {
	return &RepositoryStore{
		repos:  make(map[string]domain.Repository),
		leases: make(map[string]syncLease),
		now:    time.Now,
	}
}

// Save stores or updates a repository, keeping its sync status.
func (s *RepositoryStore) Save(_ context.Context, repo domain.Repository) error {
	if repo.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if existing, ok := s.repos[repo.ID]; ok {
		repo.LastSyncStatus = existing.LastSyncStatus
		repo.LastSyncAt = existing.LastSyncAt
		repo.LastSyncError = existing.LastSyncError
		repo.CreatedAt = existing.CreatedAt
	}
	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = now
	}
	repo.UpdatedAt = now
	s.repos[repo.ID] = repo
	return nil
}

// Get retrieves a repository by ID.
func (s *RepositoryStore) Get(_ context.Context, id string) (*domain.Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	repo, ok := s.repos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &repo, nil
}

// List returns all repositories ordered by name.
func (s *RepositoryStore) List(_ context.Context) ([]domain.Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Repository, 0, len(s.repos))
	for _, repo := range s.repos {
		result = append(result, repo)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Slug < result[j].Slug
	})
	return result, nil
}

// UpdateSyncStatus records the outcome of a sync run.
func (s *RepositoryStore) UpdateSyncStatus(
	_ context.Context, id string, status domain.SyncStatus, at time.Time, errMsg string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, ok := s.repos[id]
	if !ok {
		return domain.ErrNotFound
	}
	repo.LastSyncStatus = status
	repo.LastSyncAt = at
	repo.LastSyncError = errMsg
	s.repos[id] = repo
	return nil
}

// AcquireSyncLock takes the lease when it is free, expired or already ours.
func (s *RepositoryStore) AcquireSyncLock(_ context.Context, id, holder string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.repos[id]; !ok {
		return false, domain.ErrNotFound
	}
	now := s.now()
	if lease, held := s.leases[id]; held && lease.holder != holder && now.Before(lease.expires) {
		return false, nil
	}
	s.leases[id] = syncLease{holder: holder, expires: now.Add(ttl)}
	return true, nil
}

// ReleaseSyncLock drops the lease if holder still owns it.
func (s *RepositoryStore) ReleaseSyncLock(_ context.Context, id, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lease, ok := s.leases[id]; ok && lease.holder == holder {
		delete(s.leases, id)
	}
	return nil
}
