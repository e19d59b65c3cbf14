package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/normalisers/markdown"
)

const (
	setupDoc   = "---\ntitle: Setup\ncategory: guides\n---\n# Setup\n\nInstall the CLI.\n"
	deployDoc  = "# Deploy\n\nShip it with helm.\n"
	apiDoc     = "# API\n\nEndpoints.\n"
	launchPost = "---\ntitle: Launch\ndate: 2024-03-01\n---\nWe launched.\n"
	rootMeta   = `{"guides": "Guides", "reference": {"title": "Reference", "icon": "book"}}`
)

func baseFiles() map[string]string {
	return map[string]string{
		"docs/_meta.json":       rootMeta,
		"docs/guides/setup.md":  setupDoc,
		"docs/guides/deploy.md": deployDoc,
		"docs/reference/api.md": apiDoc,
		"blog/2024/launch.md":   launchPost,
	}
}

func TestSync_FirstRunCreatesEverything(t *testing.T) {
	env := newTestEnv(t)
	env.fetcher.setDocuments(baseFiles())

	result := env.sync(t)

	assert.Equal(t, 4, result.Added)
	assert.Equal(t, 0, result.Modified)
	assert.Equal(t, 0, result.Deleted)
	assert.Equal(t, 2, result.CategoriesSaved)
	assert.Empty(t, result.Errors)
	assert.True(t, env.fetcher.closed)

	log, err := env.logs.Get(context.Background(), result.SyncLogID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSuccess, log.Status)
	assert.Equal(t, 4, log.FilesAdded)
	assert.False(t, log.FinishedAt.IsZero())

	repo, err := env.repos.Get(context.Background(), env.repo.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSuccess, repo.LastSyncStatus)
	assert.False(t, repo.LastSyncAt.IsZero())

	post := env.item(t, "blog/2024/launch.md")
	assert.Equal(t, domain.ContentBlog, post.Kind)
	assert.Equal(t, "Launch", post.Title)
	require.NotNil(t, post.PublishedAt)

	setup := env.item(t, "docs/guides/setup.md")
	assert.Equal(t, domain.ContentDocument, setup.Kind)
	assert.Equal(t, "docs/guides/setup", setup.Slug)
	assert.Equal(t, "guides", setup.Category)
	assert.True(t, env.search.Indexed(setup.ID))

	assert.ElementsMatch(t, []string{"guides", "reference"}, env.categorySlugs(t))

	changes, err := env.orch.Changes(context.Background(), result.SyncLogID)
	require.NoError(t, err)
	assert.Len(t, changes, 4)
	for _, c := range changes {
		assert.Equal(t, domain.ChangeAdded, c.ChangeType)
		assert.NotEmpty(t, c.NewHash)
	}
	assert.Equal(t, 1, env.notifier.updateCount())
}

func TestSync_IdempotentOnUnchangedContent(t *testing.T) {
	env := newTestEnv(t)
	files := baseFiles()
	files["docs/guides/release.md"] = "# Notes\n<!-- release:start version=\"1.0.0\" teams=\"core\" -->\nFirst.\n<!-- release:end -->\n"
	require.NoError(t, env.teams.Save(context.Background(), domain.Team{Slug: "core", Name: "Core", Enabled: true}))
	env.fetcher.setDocuments(files)

	env.sync(t)
	updates, removals := env.search.counts()
	notifications := env.notifier.releaseCount()
	contentUpdates := env.notifier.updateCount()
	before := env.item(t, "docs/guides/setup.md")

	second := env.sync(t)

	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 0, second.Modified)
	assert.Equal(t, 0, second.Deleted)
	assert.Equal(t, 5, second.Skipped)
	assert.Equal(t, 0, second.ReleasesCreated)
	assert.Equal(t, 0, second.ReleasesUpdated)

	u, r := env.search.counts()
	assert.Equal(t, updates, u, "no search vector may be regenerated")
	assert.Equal(t, removals, r)
	assert.Equal(t, notifications, env.notifier.releaseCount())
	assert.Equal(t, contentUpdates, env.notifier.updateCount())

	after := env.item(t, "docs/guides/setup.md")
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)

	changes, err := env.orch.Changes(context.Background(), second.SyncLogID)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestSync_HashChangeModifiesOnlyThatItem(t *testing.T) {
	env := newTestEnv(t)
	files := baseFiles()
	env.fetcher.setDocuments(files)
	env.sync(t)
	oldHash := env.item(t, "docs/guides/deploy.md").SourceHash

	files["docs/guides/deploy.md"] = deployDoc + "!"
	env.fetcher.setDocuments(files)
	result := env.sync(t)

	assert.Equal(t, 1, result.Modified)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 0, result.Added)

	item := env.item(t, "docs/guides/deploy.md")
	assert.NotEqual(t, oldHash, item.SourceHash)

	changes, err := env.orch.Changes(context.Background(), result.SyncLogID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, domain.ChangeModified, changes[0].ChangeType)
	assert.Equal(t, oldHash, changes[0].OldHash)
	assert.Equal(t, item.SourceHash, changes[0].NewHash)
}

func TestSync_RemovedFileIsDeleted(t *testing.T) {
	env := newTestEnv(t)
	files := baseFiles()
	env.fetcher.setDocuments(files)
	env.sync(t)
	deploy := env.item(t, "docs/guides/deploy.md")

	delete(files, "docs/guides/deploy.md")
	env.fetcher.setDocuments(files)
	result := env.sync(t)

	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 3, result.Skipped)

	_, err := env.content.GetByPath(context.Background(), env.repo.ID, "docs/guides/deploy.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, env.search.Indexed(deploy.ID))
	env.item(t, "docs/guides/setup.md")

	changes, err := env.orch.Changes(context.Background(), result.SyncLogID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, domain.ChangeDeleted, changes[0].ChangeType)
	assert.Equal(t, "docs/guides/deploy.md", changes[0].FilePath)
	assert.Equal(t, deploy.SourceHash, changes[0].OldHash)
}

func TestSync_ThreeAddedOneModifiedOneRemoved(t *testing.T) {
	env := newTestEnv(t)
	env.fetcher.setDocuments(map[string]string{
		"docs/a.md": "# A\n",
		"docs/b.md": "# B\n",
	})
	env.sync(t)

	env.fetcher.setDocuments(map[string]string{
		"docs/a.md": "# A\n\nEdited.\n",
		"docs/c.md": "# C\n",
		"docs/d.md": "# D\n",
		"docs/e.md": "# E\n",
	})
	result := env.sync(t)

	log, err := env.logs.Get(context.Background(), result.SyncLogID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSuccess, log.Status)
	assert.Equal(t, 3, log.FilesAdded)
	assert.Equal(t, 1, log.FilesChanged)
	assert.Equal(t, 1, log.FilesDeleted)
	assert.Empty(t, log.Error)
}

func TestSync_ReleaseNotifiedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.teams.Save(ctx, domain.Team{Slug: "payments", Name: "Payments", Enabled: true}))
	require.NoError(t, env.teams.Save(ctx, domain.Team{Slug: "legacy", Name: "Legacy", Enabled: false}))

	doc := func(body string) string {
		return "# Changelog\n<!-- release:start version=\"1.4.0\" teams=\"payments, unknown\" -->\n" + body +
			"\n<!-- release:end -->\n<!-- release:start version=\"0.9.0\" teams=\"legacy\" -->\nOld.\n<!-- release:end -->\n"
	}
	env.fetcher.setDocuments(map[string]string{"docs/changelog.md": doc("New checkout.")})

	first := env.sync(t)
	assert.Equal(t, 1, first.ReleasesCreated)
	assert.Equal(t, 1, env.notifier.releaseCount())

	rel, err := env.releases.Find(ctx, env.repo.ID, "1.4.0", "docs/changelog.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"payments"}, rel.Teams)
	assert.Equal(t, "New checkout.", rel.Content)
	assert.NotNil(t, rel.NotifiedAt)

	_, err = env.releases.Find(ctx, env.repo.ID, "0.9.0", "docs/changelog.md")
	assert.ErrorIs(t, err, domain.ErrNotFound, "release naming only disabled teams is skipped")

	env.sync(t)
	assert.Equal(t, 1, env.notifier.releaseCount())

	env.fetcher.setDocuments(map[string]string{"docs/changelog.md": doc("New checkout and refunds.")})
	third := env.sync(t)
	assert.Equal(t, 1, third.ReleasesUpdated)
	assert.Equal(t, 0, third.ReleasesCreated)
	assert.Equal(t, 1, env.notifier.releaseCount(), "content edits never re-notify")

	rel, err = env.releases.Find(ctx, env.repo.ID, "1.4.0", "docs/changelog.md")
	require.NoError(t, err)
	assert.Equal(t, "New checkout and refunds.", rel.Content)
}

func TestSync_OrphanCategoryPruned(t *testing.T) {
	env := newTestEnv(t)
	files := baseFiles()
	env.fetcher.setDocuments(files)
	env.sync(t)
	require.ElementsMatch(t, []string{"guides", "reference"}, env.categorySlugs(t))

	delete(files, "docs/reference/api.md")
	env.fetcher.setDocuments(files)
	result := env.sync(t)

	assert.Equal(t, 1, result.CategoriesDeleted)
	assert.Equal(t, []string{"guides"}, env.categorySlugs(t))
}

func TestSync_CategoryRemovedFromDescriptor(t *testing.T) {
	env := newTestEnv(t)
	files := baseFiles()
	env.fetcher.setDocuments(files)
	env.sync(t)

	files["docs/_meta.json"] = `{"guides": "Guides"}`
	env.fetcher.setDocuments(files)
	env.sync(t)

	assert.Equal(t, []string{"guides"}, env.categorySlugs(t))
}

func TestSync_NestedDescriptor(t *testing.T) {
	env := newTestEnv(t)
	files := baseFiles()
	files["docs/guides/_meta.json"] = `{"setup": "Getting set up", "index": "ignored"}`
	env.fetcher.setDocuments(files)
	env.sync(t)

	cats, err := env.categories.ListByRepository(context.Background(), env.repo.ID)
	require.NoError(t, err)
	var nested *domain.CategoryMetadata
	for i := range cats {
		if cats[i].Slug == "guides/setup" {
			nested = &cats[i]
		}
	}
	require.NotNil(t, nested)
	assert.Equal(t, 1, nested.Level)
	require.NotNil(t, nested.ParentSlug)
	assert.Equal(t, "guides", *nested.ParentSlug)
	assert.Equal(t, "docs/guides/_meta.json", nested.SourcePath)
}

func TestSync_AuthorsResolvedBeforeContent(t *testing.T) {
	env := newTestEnv(t)
	env.fetcher.setDocuments(map[string]string{
		"authors/jane.json":  `{"email": "Jane@Example.com", "name": "Jane Doe", "github": "jdoe"}`,
		"authors/index.json": `{"ignored": true}`,
		"blog/hello.md":      "---\ntitle: Hello\nauthor: jane@example.com\n---\nHi.\n",
		"blog/named.md":      "---\ntitle: Named\nauthor: Jane Doe\n---\nHi.\n",
		"blog/ghost.md":      "---\ntitle: Ghost\nauthor: nobody@example.com\n---\nBoo.\n",
	})

	result := env.sync(t)
	assert.Equal(t, 1, result.AuthorsSaved)

	author, err := env.authors.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", author.Links["github"])

	hello := env.item(t, "blog/hello.md")
	require.NotNil(t, hello.AuthorID)
	assert.Equal(t, author.ID, *hello.AuthorID)

	named := env.item(t, "blog/named.md")
	require.NotNil(t, named.AuthorID)
	assert.Equal(t, author.ID, *named.AuthorID)

	assert.Nil(t, env.item(t, "blog/ghost.md").AuthorID)
}

func TestSync_APISpecs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	spec := "openapi: 3.0.0\ninfo:\n  title: Create Order\n  version: 1.2.0\n"
	env.fetcher.setSpecs(map[string]string{
		"api-specs/payments/create-order.yaml": spec,
		"api-specs/payments/broken.yaml":       "info: [unclosed",
	})

	first := env.sync(t)
	assert.Equal(t, 1, first.SpecsSaved)
	require.Len(t, first.Errors, 1)
	assert.Contains(t, first.Errors[0], "broken.yaml")

	specs, err := env.specs.ListByRepository(ctx, env.repo.ID)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "create-order", specs[0].Slug)
	assert.Equal(t, "1.2.0", specs[0].Version)
	assert.Equal(t, "payments", specs[0].Category)

	second := env.sync(t)
	assert.Equal(t, 0, second.SpecsSaved)

	env.fetcher.setSpecs(nil)
	third := env.sync(t)
	assert.Equal(t, 1, third.SpecsDeleted)
	specs, err = env.specs.ListByRepository(ctx, env.repo.ID)
	require.NoError(t, err)
	assert.Empty(t, specs)
}

func TestSync_ImagesOnlyWhenOptedIn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.fetcher.images = []domain.ImageRef{{Path: "docs/img/arch.png", SHA: "a1", Size: 3}}
	env.fetcher.imageData["docs/img/arch.png"] = []byte("png")

	result := env.sync(t)
	assert.Equal(t, 0, result.ImagesSynced)
	assert.Equal(t, 0, env.fetcher.downloads)

	env.repo.SyncImages = true
	require.NoError(t, env.repos.Save(ctx, env.repo))
	result = env.sync(t)
	assert.Equal(t, 1, result.ImagesSynced)
	assert.True(t, env.storage.has("img/handbook/docs/img/arch.png"))
}

func TestSync_ImageListingFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.repo.SyncImages = true
	require.NoError(t, env.repos.Save(ctx, env.repo))
	env.fetcher.setDocuments(map[string]string{"docs/a.md": "# A\n"})
	env.fetcher.listErr = errors.New("tree gone")

	result := env.sync(t)
	assert.Equal(t, 1, result.Added)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "tree gone")

	log, err := env.logs.Get(ctx, result.SyncLogID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSuccess, log.Status)
}

func TestSync_FetchFailureFinalizesFailed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.fetcher.fetchErr = errors.New("tree listing returned 500")

	_, err := env.orch.Sync(ctx, env.repo.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tree listing returned 500")

	logs, err := env.orch.History(ctx, env.repo.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.SyncFailed, logs[0].Status)
	assert.Contains(t, logs[0].Error, "tree listing returned 500")
	assert.False(t, logs[0].FinishedAt.IsZero())

	repo, err := env.repos.Get(ctx, env.repo.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncFailed, repo.LastSyncStatus)
	assert.Contains(t, repo.LastSyncError, "tree listing returned 500")

	ok, err := env.repos.AcquireSyncLock(ctx, env.repo.ID, "other", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock must be released after a failed run")
}

func TestSync_ChangeLogFailureFailsRun(t *testing.T) {
	ctx := context.Background()
	env := newTestEnvWith(t, func(d *SyncDeps) {
		d.SyncLogs = failingChangeLog{SyncLogStore: d.SyncLogs.(*memory.SyncLogStore)}
	})
	env.fetcher.setDocuments(map[string]string{"docs/a.md": "# A\n"})

	_, err := env.orch.Sync(ctx, env.repo.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	logs, err := env.logs.List(ctx, env.repo.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.SyncFailed, logs[0].Status)
}

// flakyContent fails to save one path.
type flakyContent struct {
	*memory.ContentStore
	failPath string
}

func (f flakyContent) Save(ctx context.Context, item *domain.ContentItem) error {
	if item.FilePath == f.failPath {
		return errors.New("constraint violation")
	}
	return f.ContentStore.Save(ctx, item)
}

func TestSync_PerFileErrorDoesNotAbort(t *testing.T) {
	env := newTestEnvWith(t, func(d *SyncDeps) {
		d.Content = flakyContent{ContentStore: d.Content.(*memory.ContentStore), failPath: "docs/broken.md"}
	})
	env.fetcher.setDocuments(map[string]string{
		"docs/ok.md":     "# OK\n",
		"docs/broken.md": "# Broken\n",
	})

	result := env.sync(t)
	assert.Equal(t, 1, result.Added)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "docs/broken.md")

	log, err := env.logs.Get(context.Background(), result.SyncLogID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSuccess, log.Status)
}

func TestSync_RejectsDisabledAndMissing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.orch.Sync(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	env.repo.Enabled = false
	require.NoError(t, env.repos.Save(ctx, env.repo))
	_, err = env.orch.Sync(ctx, env.repo.ID)
	assert.ErrorIs(t, err, domain.ErrRepositoryDisabled)

	logs, err := env.logs.List(ctx, env.repo.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestSync_LockedRepositoryIsSkipped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ok, err := env.repos.AcquireSyncLock(ctx, env.repo.ID, "other-host:1/abc", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.orch.Sync(ctx, env.repo.ID)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	logs, err := env.logs.List(ctx, env.repo.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs, "no sync log for a run that never started")
}

func TestSync_CreateFetcherFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.factory.createErr = domain.ErrDecryptionFailed

	_, err := env.orch.Sync(ctx, env.repo.ID)
	assert.ErrorIs(t, err, domain.ErrDecryptionFailed)

	repo, err := env.repos.Get(ctx, env.repo.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncFailed, repo.LastSyncStatus)
}

func TestSyncDue(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	now := time.Now()

	add := func(id string, enabled bool, freq time.Duration, lastSync time.Time, fetchErr error) *fakeFetcher {
		repo := domain.Repository{
			ID: id, Name: id, Slug: id, Kind: domain.RepositoryGitHub,
			Owner: "acme", Repo: id, Enabled: enabled, SyncFrequency: freq,
		}
		require.NoError(t, env.repos.Save(ctx, repo))
		if !lastSync.IsZero() {
			require.NoError(t, env.repos.UpdateSyncStatus(ctx, id, domain.SyncSuccess, lastSync, ""))
		}
		f := newFakeFetcher()
		f.fetchErr = fetchErr
		f.setDocuments(map[string]string{"docs/" + id + ".md": "# " + id + "\n"})
		env.factory.fetchers[id] = f
		return f
	}

	add("never-synced", true, time.Hour, time.Time{}, nil)
	add("overdue", true, time.Hour, now.Add(-2*time.Hour), nil)
	add("fresh", true, time.Hour, now.Add(-10*time.Minute), nil)
	add("disabled", false, time.Hour, time.Time{}, nil)
	add("failing", true, time.Minute, time.Time{}, errors.New("boom"))

	err := env.orch.SyncDue(ctx, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	status := func(id string) domain.SyncStatus {
		repo, err := env.repos.Get(ctx, id)
		require.NoError(t, err)
		return repo.LastSyncStatus
	}
	assert.Equal(t, domain.SyncSuccess, status("never-synced"))
	assert.Equal(t, domain.SyncSuccess, status("overdue"))
	assert.Equal(t, domain.SyncFailed, status("failing"))

	// The manual-only default repository and the fresh one were not touched.
	for _, id := range []string{env.repo.ID, "fresh", "disabled"} {
		logs, err := env.logs.List(ctx, id, 10)
		require.NoError(t, err)
		assert.Empty(t, logs, id)
	}
}

func TestSyncStatusAndHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	status, err := env.orch.Status(ctx, env.repo.ID)
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, env.repo.ID, status.RepositoryID)

	env.fetcher.setDocuments(map[string]string{"docs/a.md": "# A\n"})
	env.sync(t)
	env.sync(t)

	logs, err := env.orch.History(ctx, env.repo.ID, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	_, err = env.orch.Changes(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// blockingFetcher holds Fetch until released so a concurrent run can be observed.
type blockingFetcher struct {
	*fakeFetcher
	started chan struct{}
	release chan struct{}
}

func (b *blockingFetcher) Fetch(ctx context.Context) (*domain.FetchResult, error) {
	close(b.started)
	<-b.release
	return b.fakeFetcher.Fetch(ctx)
}

func TestSync_ConcurrentRunIsRejected(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bf := &blockingFetcher{fakeFetcher: newFakeFetcher(), started: make(chan struct{}), release: make(chan struct{})}
	env.factory.fetchers = map[string]driven.Fetcher{env.repo.ID: bf}

	done := make(chan error, 1)
	go func() {
		_, err := env.orch.Sync(ctx, env.repo.ID)
		done <- err
	}()
	<-bf.started

	status, err := env.orch.Status(ctx, env.repo.ID)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, PhaseFetch, status.Phase)

	_, err = env.orch.Sync(ctx, env.repo.ID)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	close(bf.release)
	require.NoError(t, <-done)
}

// flakyIndexer fails search vector writes while failing is set.
type flakyIndexer struct {
	*memory.SearchIndexer
	failing atomic.Bool
}

func (f *flakyIndexer) UpdateSearchVector(ctx context.Context, itemID string) error {
	if f.failing.Load() {
		return errors.New("fts busy")
	}
	return f.SearchIndexer.UpdateSearchVector(ctx, itemID)
}

func TestSync_SearchVectorFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	indexer := &flakyIndexer{}
	env := newTestEnvWith(t, func(d *SyncDeps) {
		indexer.SearchIndexer = memory.NewSearchIndexer(d.Content.(*memory.ContentStore))
		d.Search = indexer
	})

	const v1, v2 = "# Guide\n\nFirst.\n", "# Guide\n\nSecond.\n"
	env.fetcher.setDocuments(map[string]string{"docs/guide.md": v1})
	first := env.sync(t)
	require.Equal(t, 1, first.Added)

	indexer.failing.Store(true)
	env.fetcher.setDocuments(map[string]string{"docs/guide.md": v2, "docs/new.md": "# New\n"})
	failed := env.sync(t)
	assert.Equal(t, 0, failed.Modified)
	assert.Equal(t, 0, failed.Added)
	require.Len(t, failed.Errors, 2)
	assert.Contains(t, failed.Errors[0], "fts busy")
	assert.Equal(t, markdown.Hash(v1), env.item(t, "docs/guide.md").SourceHash)
	_, err := env.content.GetByPath(ctx, env.repo.ID, "docs/new.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	indexer.failing.Store(false)
	retried := env.sync(t)
	assert.Equal(t, 1, retried.Modified)
	assert.Equal(t, 1, retried.Added)
	assert.Empty(t, retried.Errors)
	assert.Equal(t, markdown.Hash(v2), env.item(t, "docs/guide.md").SourceHash)

	var changes []domain.DocumentChange
	for _, id := range []string{first.SyncLogID, failed.SyncLogID, retried.SyncLogID} {
		rows, err := env.logs.ListChanges(ctx, id)
		require.NoError(t, err)
		changes = append(changes, rows...)
	}
	var guideChanges []domain.DocumentChange
	for _, c := range changes {
		if c.FilePath == "docs/guide.md" {
			guideChanges = append(guideChanges, c)
		}
	}
	require.Len(t, guideChanges, 2)
	assert.Equal(t, domain.ChangeModified, guideChanges[1].ChangeType)
	assert.Equal(t, markdown.Hash(v1), guideChanges[1].OldHash)
	assert.Equal(t, markdown.Hash(v2), guideChanges[1].NewHash)
}

func TestSync_BasePathCategories(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.repo.BasePath = "content"
	require.NoError(t, env.repos.Save(ctx, env.repo))

	files := map[string]string{
		"content/_meta.json":              rootMeta,
		"content/guides/_meta.json":       `{"setup": "Getting set up"}`,
		"content/guides/setup/install.md": "# Install\n\nRun the installer.\n",
		"content/reference/api.md":        apiDoc,
	}
	env.fetcher.setDocuments(files)
	result := env.sync(t)

	assert.Equal(t, 3, result.CategoriesSaved)
	assert.Equal(t, 0, result.CategoriesDeleted)
	assert.ElementsMatch(t, []string{"guides", "guides/setup", "reference"}, env.categorySlugs(t))

	cats, err := env.categories.ListByRepository(ctx, env.repo.ID)
	require.NoError(t, err)
	for _, c := range cats {
		switch c.Slug {
		case "guides", "reference":
			assert.Equal(t, 0, c.Level, c.Slug)
			assert.Nil(t, c.ParentSlug, c.Slug)
		case "guides/setup":
			assert.Equal(t, 1, c.Level)
			require.NotNil(t, c.ParentSlug)
			assert.Equal(t, "guides", *c.ParentSlug)
		}
	}

	again := env.sync(t)
	assert.Equal(t, 0, again.CategoriesDeleted)
	assert.ElementsMatch(t, []string{"guides", "guides/setup", "reference"}, env.categorySlugs(t))

	delete(files, "content/reference/api.md")
	env.fetcher.setDocuments(files)
	pruned := env.sync(t)
	assert.Equal(t, 1, pruned.CategoriesDeleted)
	assert.ElementsMatch(t, []string{"guides", "guides/setup"}, env.categorySlugs(t))
}

func TestSync_UnreadableFileIsKept(t *testing.T) {
	env := newTestEnv(t)
	files := map[string]string{
		"docs/guide.md": "# Guide\n",
		"docs/api.md":   apiDoc,
	}
	env.fetcher.setDocuments(files)
	env.sync(t)

	delete(files, "docs/api.md")
	env.fetcher.setDocuments(files)
	env.fetcher.setUnreadable("docs/api.md")
	result := env.sync(t)

	assert.Equal(t, 0, result.Deleted)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "docs/api.md: content could not be read")
	assert.Equal(t, markdown.Hash(apiDoc), env.item(t, "docs/api.md").SourceHash)

	env.fetcher.setUnreadable()
	gone := env.sync(t)
	assert.Equal(t, 1, gone.Deleted)
}
