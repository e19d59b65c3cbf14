package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	opts    domain.SearchOptions
	err     error
}

func (m *mockSearchService) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.opts = opts
	return m.results, m.err
}

// mockRepositoryService is a mock implementation of driving.RepositoryService.
type mockRepositoryService struct {
	repos []domain.Repository
	err   error
}

func (m *mockRepositoryService) Add(context.Context, domain.Repository, string) (*domain.Repository, error) {
	return nil, m.err
}

func (m *mockRepositoryService) Get(context.Context, string) (*domain.Repository, error) {
	return nil, m.err
}

func (m *mockRepositoryService) List(context.Context) ([]domain.Repository, error) {
	return m.repos, m.err
}

func (m *mockRepositoryService) SetEnabled(context.Context, string, bool) error { return m.err }

func (m *mockRepositoryService) SetFrequency(context.Context, string, time.Duration) error {
	return m.err
}

func (m *mockRepositoryService) SetToken(context.Context, string, string) error { return m.err }

// mockSyncOrchestrator is a mock implementation of driving.SyncOrchestrator.
type mockSyncOrchestrator struct {
	logs      []domain.SyncLog
	lastID    string
	lastLimit int
	err       error
}

func (m *mockSyncOrchestrator) Sync(context.Context, string) (*domain.SyncResult, error) {
	return nil, m.err
}

func (m *mockSyncOrchestrator) SyncDue(context.Context, time.Time) error { return m.err }

func (m *mockSyncOrchestrator) Status(context.Context, string) (*driving.SyncStatus, error) {
	return nil, m.err
}

func (m *mockSyncOrchestrator) History(_ context.Context, id string, limit int) ([]domain.SyncLog, error) {
	m.lastID, m.lastLimit = id, limit
	return m.logs, m.err
}

func (m *mockSyncOrchestrator) Changes(context.Context, string) ([]domain.DocumentChange, error) {
	return nil, m.err
}
