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

// Ensure SyncLogStore implements the interface.
var _ driven.SyncLogStore = (*SyncLogStore)(nil)

// SyncLogStore is an in-memory implementation of driven.SyncLogStore.
type SyncLogStore struct {
	mu      sync.RWMutex
	logs    map[string]domain.SyncLog
	order   []string
	changes map[string][]domain.DocumentChange
}

// NewSyncLogStore creates a new in-memory sync log store.
func NewSyncLogStore() *SyncLogStore {
	return &SyncLogStore{
		logs:    make(map[string]domain.SyncLog),
		changes: make(map[string][]domain.DocumentChange),
	}
}

// Create inserts a new in-progress sync log.
func (s *SyncLogStore) Create(_ context.Context, log *domain.SyncLog) error {
	if log == nil || log.RepositoryID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.StartedAt.IsZero() {
		log.StartedAt = time.Now().UTC()
	}
	if log.Status == "" {
		log.Status = domain.SyncInProgress
	}
	s.logs[log.ID] = *log
	s.order = append(s.order, log.ID)
	return nil
}

// Finalize writes the terminal state of a sync log.
func (s *SyncLogStore) Finalize(_ context.Context, log *domain.SyncLog) error {
	if log == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.logs[log.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if log.FinishedAt.IsZero() {
		log.FinishedAt = time.Now().UTC()
	}
	log.RepositoryID = existing.RepositoryID
	log.StartedAt = existing.StartedAt
	s.logs[log.ID] = *log
	return nil
}

// Get retrieves a sync log by ID.
func (s *SyncLogStore) Get(_ context.Context, id string) (*domain.SyncLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.logs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

// List returns recent sync logs of a repository, most recent first.
func (s *SyncLogStore) List(_ context.Context, repositoryID string, limit int) ([]domain.SyncLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SyncLog
	for i := len(s.order) - 1; i >= 0; i-- {
		l := s.logs[s.order[i]]
		if l.RepositoryID == repositoryID {
			result = append(result, l)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].StartedAt.After(result[j].StartedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// SaveChanges appends change entries.
func (s *SyncLogStore) SaveChanges(_ context.Context, changes []domain.DocumentChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for i := range changes {
		c := &changes[i]
		if _, ok := s.logs[c.SyncLogID]; !ok {
			return domain.ErrNotFound
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
	}
	for _, c := range changes {
		s.changes[c.SyncLogID] = append(s.changes[c.SyncLogID], c)
	}
	return nil
}

// ListChanges returns the change entries of a sync log in insertion order.
func (s *SyncLogStore) ListChanges(_ context.Context, syncLogID string) ([]domain.DocumentChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DocumentChange(nil), s.changes[syncLogID]...), nil
}
