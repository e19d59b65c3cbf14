package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// --- Test doubles shared by the service tests ---

// fakeFetcher serves a fixed file set.
type fakeFetcher struct {
	mu          sync.Mutex
	result      domain.FetchResult
	fetchErr    error
	images      []domain.ImageRef
	listErr     error
	imageData   map[string][]byte
	downloadErr map[string]error
	downloads   int
	closed      bool
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		imageData:   make(map[string][]byte),
		downloadErr: make(map[string]error),
	}
}

func (f *fakeFetcher) setDocuments(files map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result.Documents = nil
	for p, c := range files {
		f.result.Documents = append(f.result.Documents, domain.SourceFile{Path: p, Content: c})
	}
}

func (f *fakeFetcher) setSpecs(files map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result.APISpecs = nil
	for p, c := range files {
		f.result.APISpecs = append(f.result.APISpecs, domain.SourceFile{Path: p, Content: c})
	}
}

func (f *fakeFetcher) setUnreadable(paths ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result.Unreadable = paths
}

func (f *fakeFetcher) Fetch(_ context.Context) (*domain.FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	res := domain.FetchResult{
		Documents:  append([]domain.SourceFile(nil), f.result.Documents...),
		APISpecs:   append([]domain.SourceFile(nil), f.result.APISpecs...),
		Unreadable: append([]string(nil), f.result.Unreadable...),
	}
	return &res, nil
}

func (f *fakeFetcher) ListImages(_ context.Context) ([]domain.ImageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.ImageRef(nil), f.images...), nil
}

func (f *fakeFetcher) DownloadImage(_ context.Context, ref domain.ImageRef) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	if err := f.downloadErr[ref.Path]; err != nil {
		return nil, err
	}
	return f.imageData[ref.Path], nil
}

func (f *fakeFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// fakeFactory hands out one fetcher per repository.
type fakeFactory struct {
	fetchers  map[string]driven.Fetcher
	createErr error
}

func (f *fakeFactory) Create(_ context.Context, repo domain.Repository) (driven.Fetcher, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	fetcher, ok := f.fetchers[repo.ID]
	if !ok {
		return nil, domain.ErrUnsupportedType
	}
	return fetcher, nil
}

func (f *fakeFactory) Register(domain.RepositoryKind, driven.FetcherBuilder) {}

func (f *fakeFactory) SupportedKinds() []domain.RepositoryKind {
	return []domain.RepositoryKind{domain.RepositoryGitHub}
}

// recordingNotifier counts deliveries.
type recordingNotifier struct {
	mu       sync.Mutex
	releases []driven.ReleaseEvent
	updates  []driven.ContentUpdateEvent
	err      error
}

func (n *recordingNotifier) NotifyReleasePublished(_ context.Context, event driven.ReleaseEvent) (driven.NotifyResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.releases = append(n.releases, event)
	if n.err != nil {
		return driven.NotifyResult{Failed: 1}, n.err
	}
	return driven.NotifyResult{Sent: 1}, nil
}

func (n *recordingNotifier) NotifyContentUpdate(_ context.Context, event driven.ContentUpdateEvent) (driven.NotifyResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, event)
	if n.err != nil {
		return driven.NotifyResult{Failed: 1}, n.err
	}
	return driven.NotifyResult{Sent: 1}, nil
}

func (n *recordingNotifier) releaseCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.releases)
}

func (n *recordingNotifier) updateCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.updates)
}

// countingIndexer counts search vector writes.
type countingIndexer struct {
	*memory.SearchIndexer
	mu       sync.Mutex
	updates  int
	removals int
}

func (c *countingIndexer) UpdateSearchVector(ctx context.Context, itemID string) error {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
	return c.SearchIndexer.UpdateSearchVector(ctx, itemID)
}

func (c *countingIndexer) RemoveSearchVector(ctx context.Context, itemID string) error {
	c.mu.Lock()
	c.removals++
	c.mu.Unlock()
	return c.SearchIndexer.RemoveSearchVector(ctx, itemID)
}

func (c *countingIndexer) counts() (updates, removals int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates, c.removals
}

// fakeImageStorage keeps written images in memory.
type fakeImageStorage struct {
	mu       sync.Mutex
	files    map[string][]byte
	writeErr error
}

func newFakeImageStorage() *fakeImageStorage {
	return &fakeImageStorage{files: make(map[string][]byte)}
}

func (s *fakeImageStorage) Write(_ context.Context, relPath string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return "", s.writeErr
	}
	s.files[relPath] = append([]byte(nil), data...)
	return "/mirror/" + relPath, nil
}

func (s *fakeImageStorage) Remove(_ context.Context, relPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, relPath)
	return nil
}

func (s *fakeImageStorage) has(relPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[relPath]
	return ok
}

// failingChangeLog wraps a SyncLogStore and rejects change batches.
type failingChangeLog struct {
	*memory.SyncLogStore
}

func (f failingChangeLog) SaveChanges(context.Context, []domain.DocumentChange) error {
	return errors.New("disk full")
}

// testEnv wires a SyncOrchestrator to in-memory stores.
type testEnv struct {
	repos      *memory.RepositoryStore
	content    *memory.ContentStore
	search     *countingIndexer
	categories *memory.CategoryStore
	authors    *memory.AuthorStore
	specs      *memory.APISpecStore
	images     *memory.ImageStore
	storage    *fakeImageStorage
	logs       *memory.SyncLogStore
	releases   *memory.ReleaseStore
	teams      *memory.TeamStore
	notifier   *recordingNotifier
	factory    *fakeFactory
	fetcher    *fakeFetcher
	repo       domain.Repository
	orch       *SyncOrchestrator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith lets a test replace deps before the orchestrator is built.
func newTestEnvWith(t *testing.T, adjust func(*SyncDeps)) *testEnv {
	t.Helper()
	ctx := context.Background()

	content := memory.NewContentStore()
	env := &testEnv{
		repos:      memory.NewRepositoryStore(),
		content:    content,
		search:     &countingIndexer{SearchIndexer: memory.NewSearchIndexer(content)},
		categories: memory.NewCategoryStore(),
		authors:    memory.NewAuthorStore(),
		specs:      memory.NewAPISpecStore(),
		images:     memory.NewImageStore(),
		storage:    newFakeImageStorage(),
		logs:       memory.NewSyncLogStore(),
		releases:   memory.NewReleaseStore(),
		teams:      memory.NewTeamStore(),
		notifier:   &recordingNotifier{},
		fetcher:    newFakeFetcher(),
	}

	env.repo = domain.Repository{
		ID:            "repo-1",
		Name:          "Handbook",
		Slug:          "handbook",
		Kind:          domain.RepositoryGitHub,
		Owner:         "acme",
		Repo:          "handbook",
		Branch:        "main",
		Enabled:       true,
		SyncFrequency: 0,
	}
	require.NoError(t, env.repos.Save(ctx, env.repo))
	env.factory = &fakeFactory{fetchers: map[string]driven.Fetcher{env.repo.ID: env.fetcher}}

	deps := SyncDeps{
		Repositories: env.repos,
		Content:      env.content,
		Search:       env.search,
		Categories:   env.categories,
		Authors:      env.authors,
		APISpecs:     env.specs,
		Images:       env.images,
		ImageStorage: env.storage,
		SyncLogs:     env.logs,
		Releases:     env.releases,
		Teams:        env.teams,
		Fetchers:     env.factory,
		Notifier:     env.notifier,
	}
	if adjust != nil {
		adjust(&deps)
	}
	env.orch = NewSyncOrchestrator(deps, domain.DefaultSchedulerConfig())
	return env
}

func (e *testEnv) sync(t *testing.T) *domain.SyncResult {
	t.Helper()
	result, err := e.orch.Sync(context.Background(), e.repo.ID)
	require.NoError(t, err)
	return result
}

func (e *testEnv) item(t *testing.T, path string) *domain.ContentItem {
	t.Helper()
	item, err := e.content.GetByPath(context.Background(), e.repo.ID, path)
	require.NoError(t, err)
	return item
}

func (e *testEnv) categorySlugs(t *testing.T) []string {
	t.Helper()
	cats, err := e.categories.ListByRepository(context.Background(), e.repo.ID)
	require.NoError(t, err)
	slugs := make([]string, 0, len(cats))
	for _, c := range cats {
		slugs = append(slugs, c.Slug)
	}
	return slugs
}
