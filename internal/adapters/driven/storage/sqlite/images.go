package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// imageStore implements driven.ImageStore.
type imageStore struct {
	store *Store
}

var _ driven.ImageStore = (*imageStore)(nil)

// Save creates or updates an image record by (RepositoryID, FilePath).
func (s *imageStore) Save(ctx context.Context, img *domain.RepositoryImage) error {
	if img == nil {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if img.CreatedAt.IsZero() {
		img.CreatedAt = now
	}
	if img.LastSyncedAt.IsZero() {
		img.LastSyncedAt = now
	}
	img.UpdatedAt = now
	img.ID = newID(img.ID)

	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO repository_images (id, repository_id, file_path, sha, local_path, size,
			mime_type, last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, file_path) DO UPDATE SET
			sha = excluded.sha,
			local_path = excluded.local_path,
			size = excluded.size,
			mime_type = excluded.mime_type,
			last_synced_at = excluded.last_synced_at,
			updated_at = excluded.updated_at
		RETURNING id
	`, img.ID, img.RepositoryID, img.FilePath, img.SHA, img.LocalPath, img.Size, img.MIMEType,
		img.LastSyncedAt.UTC(), img.CreatedAt, img.UpdatedAt)

	if err := row.Scan(&img.ID); err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// ListByRepository returns all tracked images of a repository.
func (s *imageStore) ListByRepository(ctx context.Context, repositoryID string) ([]domain.RepositoryImage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, repository_id, file_path, sha, local_path, size, mime_type,
			last_synced_at, created_at, updated_at
		FROM repository_images WHERE repository_id = ?
		ORDER BY file_path
	`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("querying images: %w", err)
	}
	defer rows.Close()

	var images []domain.RepositoryImage //nolint:prealloc // size unknown from query
	for rows.Next() {
		var img domain.RepositoryImage
		var syncedAt, createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&img.ID, &img.RepositoryID, &img.FilePath, &img.SHA, &img.LocalPath,
			&img.Size, &img.MIMEType, &syncedAt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		if syncedAt.Valid {
			img.LastSyncedAt = syncedAt.Time
		}
		if createdAt.Valid {
			img.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			img.UpdatedAt = updatedAt.Time
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating images: %w", err)
	}
	return images, nil
}

// Touch updates LastSyncedAt only.
func (s *imageStore) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE repository_images SET last_synced_at = ? WHERE id = ?", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("touching image: %w", err)
	}
	return requireRow(res)
}

// Delete removes an image record.
func (s *imageStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM repository_images WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}
