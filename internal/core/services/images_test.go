package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docsync/internal/core/domain"
)

func TestImageLocalPath(t *testing.T) {
	assert.Equal(t, "img/handbook/docs/img/a.png", ImageLocalPath("handbook", "docs/img/a.png"))
	assert.Equal(t, "img/handbook/blog/b.svg", ImageLocalPath("handbook", "/blog/b.svg"))
}

func TestImageSyncer(t *testing.T) {
	ctx := context.Background()
	repo := domain.Repository{ID: "r1", Slug: "handbook"}
	store := memory.NewImageStore()
	storage := newFakeImageStorage()
	syncer := NewImageSyncer(store, storage)

	fetcher := newFakeFetcher()
	fetcher.images = []domain.ImageRef{
		{Path: "docs/img/a.png", SHA: "sha-a"},
		{Path: "blog/b.svg", SHA: "sha-b", Size: 10},
	}
	fetcher.imageData["docs/img/a.png"] = []byte("aaaa")
	fetcher.imageData["blog/b.svg"] = []byte("<svg/>")

	t.Run("first run downloads everything", func(t *testing.T) {
		result, err := syncer.Sync(ctx, repo, fetcher)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Synced)
		assert.Equal(t, 2, fetcher.downloads)
		assert.True(t, storage.has("img/handbook/docs/img/a.png"))

		images, err := store.ListByRepository(ctx, repo.ID)
		require.NoError(t, err)
		require.Len(t, images, 2)
		byPath := map[string]domain.RepositoryImage{}
		for _, img := range images {
			byPath[img.FilePath] = img
		}
		assert.Equal(t, int64(4), byPath["docs/img/a.png"].Size)
		assert.Equal(t, "image/png", byPath["docs/img/a.png"].MIMEType)
		assert.Equal(t, int64(10), byPath["blog/b.svg"].Size)
		assert.Equal(t, "img/handbook/blog/b.svg", byPath["blog/b.svg"].LocalPath)
	})

	t.Run("unchanged sha only touches", func(t *testing.T) {
		syncer.now = func() time.Time { return time.Now().Add(time.Hour) }
		result, err := syncer.Sync(ctx, repo, fetcher)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Synced)
		assert.Equal(t, 2, result.Unchanged)
		assert.Equal(t, 2, fetcher.downloads)

		images, err := store.ListByRepository(ctx, repo.ID)
		require.NoError(t, err)
		for _, img := range images {
			assert.True(t, img.LastSyncedAt.After(time.Now()), img.FilePath)
		}
	})

	t.Run("changed sha downloads again", func(t *testing.T) {
		fetcher.images[0].SHA = "sha-a2"
		result, err := syncer.Sync(ctx, repo, fetcher)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Synced)
		assert.Equal(t, 3, fetcher.downloads)
	})

	t.Run("failed download is skipped", func(t *testing.T) {
		fetcher.images = append(fetcher.images, domain.ImageRef{Path: "docs/img/c.png", SHA: "sha-c"})
		fetcher.downloadErr["docs/img/c.png"] = errors.New("502")
		result, err := syncer.Sync(ctx, repo, fetcher)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "docs/img/c.png")
		assert.Equal(t, 2, result.Unchanged)
	})

	t.Run("unlisted images are removed", func(t *testing.T) {
		fetcher.images = fetcher.images[:1]
		result, err := syncer.Sync(ctx, repo, fetcher)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Deleted)
		assert.False(t, storage.has("img/handbook/blog/b.svg"))

		images, err := store.ListByRepository(ctx, repo.ID)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, "docs/img/a.png", images[0].FilePath)
	})

	t.Run("listing failure returns error and keeps records", func(t *testing.T) {
		fetcher.listErr = errors.New("rate limited")
		_, err := syncer.Sync(ctx, repo, fetcher)
		require.Error(t, err)

		images, err := store.ListByRepository(ctx, repo.ID)
		require.NoError(t, err)
		assert.Len(t, images, 1)
	})
}

func TestImageSyncer_WriteFailure(t *testing.T) {
	ctx := context.Background()
	storage := newFakeImageStorage()
	storage.writeErr = errors.New("read-only file system")
	syncer := NewImageSyncer(memory.NewImageStore(), storage)

	fetcher := newFakeFetcher()
	fetcher.images = []domain.ImageRef{{Path: "docs/a.png", SHA: "x"}}

	result, err := syncer.Sync(ctx, domain.Repository{ID: "r1", Slug: "s"}, fetcher)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "read-only")
}
