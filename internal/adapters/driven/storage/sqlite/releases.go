package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// ==================== Release Store ====================

// releaseStore implements driven.ReleaseStore.
type releaseStore struct {
	store *Store
}

var _ driven.ReleaseStore = (*releaseStore)(nil)

// Find retrieves a release by (repositoryID, version, filePath).
func (s *releaseStore) Find(ctx context.Context, repositoryID, version, filePath string) (*domain.Release, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, repository_id, version, content, teams, file_path, notified_at, created_at, updated_at
		FROM releases WHERE repository_id = ? AND version = ? AND file_path = ?
	`, repositoryID, version, filePath)

	var r domain.Release
	var teams string
	var notifiedAt, createdAt, updatedAt sql.NullTime
	if err := row.Scan(&r.ID, &r.RepositoryID, &r.Version, &r.Content, &teams, &r.FilePath,
		&notifiedAt, &createdAt, &updatedAt); err != nil {
		return nil, notFound(err, "release")
	}

	var err error
	if r.Teams, err = decodeList(teams); err != nil {
		return nil, err
	}
	r.NotifiedAt = timePtr(notifiedAt)
	if createdAt.Valid {
		r.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		r.UpdatedAt = updatedAt.Time
	}
	return &r, nil
}

// Save creates or updates a release by (RepositoryID, Version, FilePath).
// NotifiedAt is only written by MarkNotified.
func (s *releaseStore) Save(ctx context.Context, release *domain.Release) error {
	if release == nil {
		return domain.ErrInvalidInput
	}

	teams, err := encodeList(release.Teams)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if release.CreatedAt.IsZero() {
		release.CreatedAt = now
	}
	release.UpdatedAt = now
	release.ID = newID(release.ID)

	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO releases (id, repository_id, version, content, teams, file_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, version, file_path) DO UPDATE SET
			content = excluded.content,
			teams = excluded.teams,
			updated_at = excluded.updated_at
		RETURNING id
	`, release.ID, release.RepositoryID, release.Version, release.Content, teams,
		release.FilePath, release.CreatedAt, release.UpdatedAt)

	if err := row.Scan(&release.ID); err != nil {
		return fmt.Errorf("saving release: %w", err)
	}
	return nil
}

// MarkNotified records that the published notification was sent.
func (s *releaseStore) MarkNotified(ctx context.Context, id string, at time.Time) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE releases SET notified_at = ? WHERE id = ?", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("marking release notified: %w", err)
	}
	return requireRow(res)
}

// ==================== Team Store ====================

// teamStore implements driven.TeamStore.
type teamStore struct {
	store *Store
}

var _ driven.TeamStore = (*teamStore)(nil)

// Save creates or updates a team by slug.
func (s *teamStore) Save(ctx context.Context, team domain.Team) error {
	if team.Slug == "" {
		return fmt.Errorf("%w: team slug is required", domain.ErrInvalidInput)
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO teams (slug, name, enabled) VALUES (?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET name = excluded.name, enabled = excluded.enabled
	`, team.Slug, team.Name, boolInt(team.Enabled))
	if err != nil {
		return fmt.Errorf("saving team: %w", err)
	}
	return nil
}

// List returns all teams ordered by slug.
func (s *teamStore) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT slug, name, enabled FROM teams ORDER BY slug")
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team //nolint:prealloc // size unknown from query
	for rows.Next() {
		var t domain.Team
		var enabled int
		if err := rows.Scan(&t.Slug, &t.Name, &enabled); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		t.Enabled = enabled != 0
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teams: %w", err)
	}
	return teams, nil
}
