package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// repositoryStore implements driven.RepositoryStore.
type repositoryStore struct {
	store *Store
}

var _ driven.RepositoryStore = (*repositoryStore)(nil)

const repositoryColumns = `id, name, slug, kind, owner, project, repo, branch, base_path, base_url,
	encrypted_token, sync_frequency_seconds, enabled, sync_images,
	last_sync_status, last_sync_at, last_sync_error, created_at, updated_at`

// Save stores or updates a repository. Sync status columns are only
// written by UpdateSyncStatus.
func (s *repositoryStore) Save(ctx context.Context, repo domain.Repository) error {
	if repo.ID == "" || repo.Slug == "" {
		return fmt.Errorf("%w: repository id and slug are required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if repo.CreatedAt.IsZero() {
		repo.CreatedAt = now
	}
	repo.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO repositories (id, name, slug, kind, owner, project, repo, branch, base_path, base_url,
			encrypted_token, sync_frequency_seconds, enabled, sync_images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			kind = excluded.kind,
			owner = excluded.owner,
			project = excluded.project,
			repo = excluded.repo,
			branch = excluded.branch,
			base_path = excluded.base_path,
			base_url = excluded.base_url,
			encrypted_token = excluded.encrypted_token,
			sync_frequency_seconds = excluded.sync_frequency_seconds,
			enabled = excluded.enabled,
			sync_images = excluded.sync_images,
			updated_at = excluded.updated_at
	`, repo.ID, repo.Name, repo.Slug, string(repo.Kind), repo.Owner, repo.Project, repo.Repo,
		repo.Branch, repo.BasePath, repo.BaseURL, repo.EncryptedToken,
		int64(repo.SyncFrequency/time.Second), boolInt(repo.Enabled), boolInt(repo.SyncImages),
		repo.CreatedAt, repo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving repository: %w", err)
	}
	return nil
}

// Get retrieves a repository by ID.
func (s *repositoryStore) Get(ctx context.Context, id string) (*domain.Repository, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+repositoryColumns+` FROM repositories WHERE id = ?`, id)
	return scanRepository(row)
}

// List returns all repositories ordered by name.
func (s *repositoryStore) List(ctx context.Context) ([]domain.Repository, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+repositoryColumns+` FROM repositories ORDER BY name, slug`)
	if err != nil {
		return nil, fmt.Errorf("querying repositories: %w", err)
	}
	defer rows.Close()

	var repos []domain.Repository //nolint:prealloc // size unknown from query
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, *repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating repositories: %w", err)
	}
	return repos, nil
}

// UpdateSyncStatus records the state of the last sync run.
func (s *repositoryStore) UpdateSyncStatus(
	ctx context.Context, id string, status domain.SyncStatus, at time.Time, errMsg string,
) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE repositories
		SET last_sync_status = ?, last_sync_at = ?, last_sync_error = ?, updated_at = ?
		WHERE id = ?
	`, string(status), at.UTC(), errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating sync status: %w", err)
	}
	return requireRow(res)
}

// AcquireSyncLock takes the lease when it is free, expired or already ours.
func (s *repositoryStore) AcquireSyncLock(ctx context.Context, id, holder string, ttl time.Duration) (bool, error) {
	now := time.Now()
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE repositories
		SET lock_holder = ?, lock_expires_at = ?
		WHERE id = ? AND (lock_holder = '' OR lock_holder = ? OR lock_expires_at <= ?)
	`, holder, now.Add(ttl).UnixMilli(), id, holder, now.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("acquiring sync lock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquiring sync lock: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	// Distinguish a held lease from a missing repository.
	var exists int
	if err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM repositories WHERE id = ?", id).Scan(&exists); err != nil {
		return false, notFound(err, "repository")
	}
	return false, nil
}

// ReleaseSyncLock clears the lease if holder owns it.
func (s *repositoryStore) ReleaseSyncLock(ctx context.Context, id, holder string) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE repositories SET lock_holder = '', lock_expires_at = 0
		WHERE id = ? AND lock_holder = ?
	`, id, holder)
	if err != nil {
		return fmt.Errorf("releasing sync lock: %w", err)
	}
	return nil
}

func scanRepository(row rowScanner) (*domain.Repository, error) {
	var repo domain.Repository
	var kind, status string
	var frequency int64
	var enabled, syncImages int
	var lastSyncAt sql.NullTime
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&repo.ID, &repo.Name, &repo.Slug, &kind, &repo.Owner, &repo.Project,
		&repo.Repo, &repo.Branch, &repo.BasePath, &repo.BaseURL, &repo.EncryptedToken,
		&frequency, &enabled, &syncImages, &status, &lastSyncAt, &repo.LastSyncError,
		&createdAt, &updatedAt); err != nil {
		return nil, notFound(err, "repository")
	}

	repo.Kind = domain.RepositoryKind(kind)
	repo.SyncFrequency = time.Duration(frequency) * time.Second
	repo.Enabled = enabled != 0
	repo.SyncImages = syncImages != 0
	repo.LastSyncStatus = domain.SyncStatus(status)
	if lastSyncAt.Valid {
		repo.LastSyncAt = lastSyncAt.Time
	}
	if createdAt.Valid {
		repo.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		repo.UpdatedAt = updatedAt.Time
	}
	return &repo, nil
}

// requireRow returns domain.ErrNotFound when an UPDATE matched nothing.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
