package services

import (
	"context"
	"fmt"
	"mime"
	"path"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// imageRoot is the top-level directory of the local image mirror.
const imageRoot = "img"

// ImageResult counts the image writes of one run.
type ImageResult struct {
	Synced    int
	Unchanged int
	Deleted   int
	Errors    []string
}

// ImageSyncer mirrors repository images into local or object storage.
type ImageSyncer struct {
	images  driven.ImageStore
	storage driven.ImageStorage
	now     func() time.Time
}

// NewImageSyncer creates an image syncer.
func NewImageSyncer(images driven.ImageStore, storage driven.ImageStorage) *ImageSyncer {
	return &ImageSyncer{images: images, storage: storage, now: time.Now}
}

// ImageLocalPath returns the stable mirror path of a repository image.
func ImageLocalPath(repositorySlug, filePath string) string {
	return path.Join(imageRoot, repositorySlug, filePath)
}

// Sync downloads new or changed images, touches unchanged ones and removes
// images that are no longer listed. A failure on one image is collected
// and the others continue; a listing failure is returned.
func (s *ImageSyncer) Sync(ctx context.Context, repo domain.Repository, fetcher driven.Fetcher) (*ImageResult, error) {
	refs, err := fetcher.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	tracked, err := s.images.ListByRepository(ctx, repo.ID)
	if err != nil {
		return nil, fmt.Errorf("list tracked images: %w", err)
	}
	byPath := make(map[string]domain.RepositoryImage, len(tracked))
	for _, img := range tracked {
		byPath[img.FilePath] = img
	}

	result := &ImageResult{}
	listed := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		listed[ref.Path] = true

		if prev, ok := byPath[ref.Path]; ok && prev.SHA == ref.SHA {
			if err := s.images.Touch(ctx, prev.ID, s.now().UTC()); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: touch: %v", ref.Path, err))
				continue
			}
			result.Unchanged++
			continue
		}

		if err := s.mirror(ctx, repo, fetcher, ref); err != nil {
			logger.Warn("image %s: %v", ref.Path, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ref.Path, err))
			continue
		}
		result.Synced++
	}

	for _, img := range tracked {
		if listed[img.FilePath] {
			continue
		}
		if err := s.storage.Remove(ctx, img.LocalPath); err != nil {
			logger.Debug("remove image file %s: %v", img.LocalPath, err)
		}
		if err := s.images.Delete(ctx, img.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: delete: %v", img.FilePath, err))
			continue
		}
		result.Deleted++
	}
	return result, nil
}

func (s *ImageSyncer) mirror(ctx context.Context, repo domain.Repository, fetcher driven.Fetcher, ref domain.ImageRef) error {
	data, err := fetcher.DownloadImage(ctx, ref)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	local := ImageLocalPath(repo.Slug, ref.Path)
	if _, err := s.storage.Write(ctx, local, data); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	size := ref.Size
	if size == 0 {
		size = int64(len(data))
	}
	img := &domain.RepositoryImage{
		RepositoryID: repo.ID,
		FilePath:     ref.Path,
		SHA:          ref.SHA,
		LocalPath:    local,
		Size:         size,
		MIMEType:     mime.TypeByExtension(path.Ext(ref.Path)),
		LastSyncedAt: s.now().UTC(),
	}
	if err := s.images.Save(ctx, img); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}
