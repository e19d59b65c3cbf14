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

// Ensure ImageStore implements the interface.
var _ driven.ImageStore = (*ImageStore)(nil)

// ImageStore is an in-memory implementation of driven.ImageStore.
type ImageStore struct {
	mu     sync.RWMutex
	images map[string]domain.RepositoryImage
}

// NewImageStore creates a new in-memory image store.
func NewImageStore() *ImageStore {
	return &ImageStore{images: make(map[string]domain.RepositoryImage)}
}

// Save creates or updates an image record by (RepositoryID, FilePath).
func (s *ImageStore) Save(_ context.Context, img *domain.RepositoryImage) error {
	if img == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for id, existing := range s.images {
		if existing.RepositoryID == img.RepositoryID && existing.FilePath == img.FilePath {
			img.ID = id
			img.CreatedAt = existing.CreatedAt
			break
		}
	}
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = now
	}
	if img.LastSyncedAt.IsZero() {
		img.LastSyncedAt = now
	}
	img.UpdatedAt = now
	s.images[img.ID] = *img
	return nil
}

// ListByRepository returns all tracked images of a repository.
func (s *ImageStore) ListByRepository(_ context.Context, repositoryID string) ([]domain.RepositoryImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.RepositoryImage
	for _, img := range s.images {
		if img.RepositoryID == repositoryID {
			result = append(result, img)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FilePath < result[j].FilePath })
	return result, nil
}

// Touch updates LastSyncedAt only.
func (s *ImageStore) Touch(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[id]
	if !ok {
		return domain.ErrNotFound
	}
	img.LastSyncedAt = at
	s.images[id] = img
	return nil
}

// Delete removes an image record.
func (s *ImageStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, id)
	return nil
}
