package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/core/services"
)

// mockSyncOrchestrator implements driving.SyncOrchestrator for testing.
type mockSyncOrchestrator struct {
	mu      sync.Mutex
	synced  []string
	due     int
	result  *domain.SyncResult
	err     error
	history []domain.SyncLog
	changes []domain.DocumentChange
}

func (m *mockSyncOrchestrator) Sync(_ context.Context, id string) (*domain.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced = append(m.synced, id)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.SyncResult{}, nil
}

func (m *mockSyncOrchestrator) SyncDue(context.Context, time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.due++
	return m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context, id string) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{RepositoryID: id}, nil
}

func (m *mockSyncOrchestrator) History(_ context.Context, _ string, limit int) ([]domain.SyncLog, error) {
	if limit < len(m.history) {
		return m.history[:limit], nil
	}
	return m.history, nil
}

func (m *mockSyncOrchestrator) Changes(context.Context, string) ([]domain.DocumentChange, error) {
	return m.changes, nil
}

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	query   string
	opts    domain.SearchOptions
	results []domain.SearchResult
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, nil
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	started bool
}

func (m *mockScheduler) Start(context.Context) error {
	m.started = true
	return nil
}

func (m *mockScheduler) Stop() error { return nil }

type testServices struct {
	sync     *mockSyncOrchestrator
	search   *mockSearchService
	repos    *services.RepositoryService
	teams    *services.TeamService
	config   *memory.ConfigStore
	schedule *mockScheduler
}

// setupTestServices installs fresh services and returns them with a
// cleanup that restores the previous ones.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	old := Services{
		Sync:         syncOrchestrator,
		Search:       searchService,
		Repositories: repositoryService,
		Teams:        teamService,
		Settings:     settingsService,
		Scheduler:    scheduler,
		Watch:        watchConfig,
	}

	ts := &testServices{
		sync:     &mockSyncOrchestrator{},
		search:   &mockSearchService{},
		repos:    services.NewRepositoryService(memory.NewRepositoryStore(), nil),
		teams:    services.NewTeamService(memory.NewTeamStore()),
		config:   memory.NewConfigStore(nil),
		schedule: &mockScheduler{},
	}
	Configure(Services{
		Sync:         ts.sync,
		Search:       ts.search,
		Repositories: ts.repos,
		Teams:        ts.teams,
		Settings:     services.NewSettingsService(ts.config),
		Scheduler:    ts.schedule,
	})

	t.Cleanup(func() { Configure(old) })
	return ts
}

// execute runs the root command with args and returns its output.
// Flags of every command are reset first since they are package state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
