package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func TestRepositoryStore_SaveKeepsSyncStatus(t *testing.T) {
	store := NewRepositoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Repository{ID: "r1", Name: "Docs"}))
	at := time.Now()
	require.NoError(t, store.UpdateSyncStatus(ctx, "r1", domain.SyncSuccess, at, ""))
	require.NoError(t, store.Save(ctx, domain.Repository{ID: "r1", Name: "Renamed"}))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, domain.SyncSuccess, got.LastSyncStatus)
	assert.Equal(t, at, got.LastSyncAt)

	assert.ErrorIs(t, store.UpdateSyncStatus(ctx, "missing", domain.SyncFailed, at, "x"), domain.ErrNotFound)
}

func TestRepositoryStore_SyncLock(t *testing.T) {
	store := NewRepositoryStore()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(ctx, domain.Repository{ID: "r1"}))

	ok, err := store.AcquireSyncLock(ctx, "r1", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AcquireSyncLock(ctx, "r1", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = store.AcquireSyncLock(ctx, "r1", "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired lease is taken over")

	require.NoError(t, store.ReleaseSyncLock(ctx, "r1", "a"))
	ok, err = store.AcquireSyncLock(ctx, "r1", "a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "stale holder cannot release the new lease")

	_, err = store.AcquireSyncLock(ctx, "missing", "a", time.Minute)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepositoryStore_SyncLock_Concurrent(t *testing.T) {
	store := NewRepositoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Repository{ID: "r1"}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := store.AcquireSyncLock(ctx, "r1", string(rune('a'+i)), time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestContentStore_UpsertByPath(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()

	a := &domain.ContentItem{RepositoryID: "r1", FilePath: "docs/a.md", Title: "A", Tags: []string{"x"}}
	require.NoError(t, store.Save(ctx, a))
	b := &domain.ContentItem{RepositoryID: "r1", FilePath: "docs/a.md", Title: "A2"}
	require.NoError(t, store.Save(ctx, b))
	assert.Equal(t, a.ID, b.ID)

	a.Tags[0] = "mutated"
	got, err := store.GetByPath(ctx, "r1", "docs/a.md")
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Title)
	assert.Empty(t, got.Tags)

	require.NoError(t, store.Delete(ctx, a.ID))
	_, err = store.GetByPath(ctx, "r1", "docs/a.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchIndexer_Search(t *testing.T) {
	content := NewContentStore()
	index := NewSearchIndexer(content)
	ctx := context.Background()

	items := []*domain.ContentItem{
		{RepositoryID: "r1", FilePath: "docs/k8s.md", Kind: domain.ContentDocument, Title: "Kubernetes guide"},
		{RepositoryID: "r1", FilePath: "blog/news.md", Kind: domain.ContentBlog, Title: "News", Content: "kubernetes support"},
		{RepositoryID: "r2", FilePath: "docs/other.md", Kind: domain.ContentDocument, Title: "Other"},
	}
	for _, item := range items {
		require.NoError(t, content.Save(ctx, item))
		require.NoError(t, index.UpdateSearchVector(ctx, item.ID))
	}

	results, err := index.Search(ctx, "Kubernetes", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "docs/k8s.md", results[0].Item.FilePath)

	results, err = index.Search(ctx, "kubernetes", domain.SearchOptions{Kind: domain.ContentBlog})
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, index.RemoveSearchVector(ctx, items[0].ID))
	assert.False(t, index.Indexed(items[0].ID))
	results, err = index.Search(ctx, "kubernetes", domain.SearchOptions{RepositoryIDs: []string{"r1"}})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	assert.ErrorIs(t, index.UpdateSearchVector(ctx, "missing"), domain.ErrNotFound)
}

func TestCategoryStore_UpsertBySlug(t *testing.T) {
	store := NewCategoryStore()
	ctx := context.Background()

	first := &domain.CategoryMetadata{RepositoryID: "r1", Slug: "guides", Title: "Guides"}
	require.NoError(t, store.Save(ctx, first))
	second := &domain.CategoryMetadata{RepositoryID: "r1", Slug: "guides", Title: "All guides"}
	require.NoError(t, store.Save(ctx, second))
	require.NoError(t, store.Save(ctx, &domain.CategoryMetadata{RepositoryID: "r2", Slug: "guides"}))

	cats, err := store.ListByRepository(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, first.ID, cats[0].ID)
	assert.Equal(t, "All guides", cats[0].Title)
}

func TestAuthorStore_CaseInsensitiveEmail(t *testing.T) {
	store := NewAuthorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &domain.Author{Email: "Ann@Example.com", Name: "Ann"}))
	require.NoError(t, store.Upsert(ctx, &domain.Author{Email: "ann@example.com", Name: "Ann B"}))

	got, err := store.GetByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann B", got.Name)

	got, err = store.GetByName(ctx, "ann b")
	require.NoError(t, err)
	assert.Equal(t, "Ann@Example.com", got.Email)

	assert.ErrorIs(t, store.Upsert(ctx, &domain.Author{}), domain.ErrInvalidInput)
}

func TestAPISpecStore_UpsertBySlugVersion(t *testing.T) {
	store := NewAPISpecStore()
	ctx := context.Background()

	a := &domain.APISpec{RepositoryID: "r1", Slug: "pay", Version: "1"}
	require.NoError(t, store.Save(ctx, a))
	b := &domain.APISpec{RepositoryID: "r1", Slug: "pay", Version: "1", SourceHash: "h"}
	require.NoError(t, store.Save(ctx, b))
	assert.Equal(t, a.ID, b.ID)

	specs, err := store.ListByRepository(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "h", specs[0].SourceHash)
}

func TestImageStore_Touch(t *testing.T) {
	store := NewImageStore()
	ctx := context.Background()

	img := &domain.RepositoryImage{RepositoryID: "r1", FilePath: "docs/a.png", SHA: "1"}
	require.NoError(t, store.Save(ctx, img))
	at := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Touch(ctx, img.ID, at))

	images, err := store.ListByRepository(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, at, images[0].LastSyncedAt)
	assert.ErrorIs(t, store.Touch(ctx, "missing", at), domain.ErrNotFound)
}

func TestSyncLogStore_Lifecycle(t *testing.T) {
	store := NewSyncLogStore()
	ctx := context.Background()

	older := &domain.SyncLog{RepositoryID: "r1", StartedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.Create(ctx, older))
	newer := &domain.SyncLog{RepositoryID: "r1"}
	require.NoError(t, store.Create(ctx, newer))
	assert.Equal(t, domain.SyncInProgress, newer.Status)

	newer.Status = domain.SyncSuccess
	require.NoError(t, store.Finalize(ctx, newer))

	logs, err := store.List(ctx, "r1", 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, newer.ID, logs[0].ID)
	assert.Equal(t, domain.SyncSuccess, logs[0].Status)

	require.NoError(t, store.SaveChanges(ctx, []domain.DocumentChange{
		{SyncLogID: newer.ID, FilePath: "a.md", ChangeType: domain.ChangeAdded},
	}))
	changes, err := store.ListChanges(ctx, newer.ID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.NotEmpty(t, changes[0].ID)

	assert.ErrorIs(t, store.SaveChanges(ctx, []domain.DocumentChange{{SyncLogID: "missing"}}), domain.ErrNotFound)
}

func TestReleaseStore_SaveKeepsNotifiedAt(t *testing.T) {
	store := NewReleaseStore()
	ctx := context.Background()

	rel := &domain.Release{RepositoryID: "r1", Version: "1.0", FilePath: "a.md", Teams: []string{"core"}}
	require.NoError(t, store.Save(ctx, rel))
	require.NoError(t, store.MarkNotified(ctx, rel.ID, time.Now()))

	update := &domain.Release{RepositoryID: "r1", Version: "1.0", FilePath: "a.md", Content: "new"}
	require.NoError(t, store.Save(ctx, update))
	assert.Equal(t, rel.ID, update.ID)

	got, err := store.Find(ctx, "r1", "1.0", "a.md")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Content)
	assert.NotNil(t, got.NotifiedAt)
	assert.Len(t, store.List(), 1)

	assert.ErrorIs(t, store.MarkNotified(ctx, "missing", time.Now()), domain.ErrNotFound)
}

func TestTeamStore_List(t *testing.T) {
	store := NewTeamStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Team{Slug: "web", Enabled: true}))
	require.NoError(t, store.Save(ctx, domain.Team{Slug: "api"}))

	teams, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "api", teams[0].Slug)
}
