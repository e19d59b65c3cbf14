package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// ==================== Category Store ====================

// categoryStore implements driven.CategoryStore.
type categoryStore struct {
	store *Store
}

var _ driven.CategoryStore = (*categoryStore)(nil)

// Save creates or updates a category by (RepositoryID, Slug).
func (s *categoryStore) Save(ctx context.Context, cat *domain.CategoryMetadata) error {
	if cat == nil {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if cat.CreatedAt.IsZero() {
		cat.CreatedAt = now
	}
	cat.UpdatedAt = now
	cat.ID = newID(cat.ID)

	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, repository_id, slug, title, icon, description, parent_slug,
			level, sort_order, source_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, slug) DO UPDATE SET
			title = excluded.title,
			icon = excluded.icon,
			description = excluded.description,
			parent_slug = excluded.parent_slug,
			level = excluded.level,
			sort_order = excluded.sort_order,
			source_path = excluded.source_path,
			updated_at = excluded.updated_at
		RETURNING id
	`, cat.ID, cat.RepositoryID, cat.Slug, cat.Title, cat.Icon, cat.Description,
		nullString(cat.ParentSlug), cat.Level, cat.Order, cat.SourcePath, cat.CreatedAt, cat.UpdatedAt)

	if err := row.Scan(&cat.ID); err != nil {
		return fmt.Errorf("saving category: %w", err)
	}
	return nil
}

// ListByRepository returns all categories of a repository in tree order.
func (s *categoryStore) ListByRepository(ctx context.Context, repositoryID string) ([]domain.CategoryMetadata, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, repository_id, slug, title, icon, description, parent_slug, level,
			sort_order, source_path, created_at, updated_at
		FROM categories WHERE repository_id = ?
		ORDER BY level, parent_slug, sort_order, slug
	`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var cats []domain.CategoryMetadata //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.CategoryMetadata
		var parent sql.NullString
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.RepositoryID, &c.Slug, &c.Title, &c.Icon, &c.Description,
			&parent, &c.Level, &c.Order, &c.SourcePath, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.ParentSlug = stringPtr(parent)
		if createdAt.Valid {
			c.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			c.UpdatedAt = updatedAt.Time
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return cats, nil
}

// Delete removes a category.
func (s *categoryStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}

// ==================== Author Store ====================

// authorStore implements driven.AuthorStore.
type authorStore struct {
	store *Store
}

var _ driven.AuthorStore = (*authorStore)(nil)

const authorColumns = `id, email, name, bio, avatar_url, role, links, created_at, updated_at`

// Upsert creates or updates an author by email.
func (s *authorStore) Upsert(ctx context.Context, author *domain.Author) error {
	if author == nil || author.Email == "" {
		return fmt.Errorf("%w: author email is required", domain.ErrInvalidInput)
	}

	links := author.Links
	if links == nil {
		links = map[string]string{}
	}
	linksJSON, err := encodeJSON(links)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if author.CreatedAt.IsZero() {
		author.CreatedAt = now
	}
	author.UpdatedAt = now
	author.ID = newID(author.ID)

	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO authors (id, email, name, bio, avatar_url, role, links, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			bio = excluded.bio,
			avatar_url = excluded.avatar_url,
			role = excluded.role,
			links = excluded.links,
			updated_at = excluded.updated_at
		RETURNING id
	`, author.ID, author.Email, author.Name, author.Bio, author.AvatarURL, author.Role,
		linksJSON, author.CreatedAt, author.UpdatedAt)

	if err := row.Scan(&author.ID); err != nil {
		return fmt.Errorf("saving author: %w", err)
	}
	return nil
}

// GetByEmail retrieves an author by email (case-insensitive).
func (s *authorStore) GetByEmail(ctx context.Context, email string) (*domain.Author, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE email = ?`, email)
	return scanAuthor(row)
}

// GetByName retrieves an author by display name (case-insensitive).
func (s *authorStore) GetByName(ctx context.Context, name string) (*domain.Author, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE name = ? COLLATE NOCASE ORDER BY created_at LIMIT 1`, name)
	return scanAuthor(row)
}

func scanAuthor(row rowScanner) (*domain.Author, error) {
	var a domain.Author
	var links string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Bio, &a.AvatarURL, &a.Role, &links,
		&createdAt, &updatedAt); err != nil {
		return nil, notFound(err, "author")
	}
	if links != "" {
		if err := json.Unmarshal([]byte(links), &a.Links); err != nil {
			return nil, fmt.Errorf("unmarshalling author links: %w", err)
		}
	}
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
	}
	return &a, nil
}

// ==================== API Spec Store ====================

// apiSpecStore implements driven.APISpecStore.
type apiSpecStore struct {
	store *Store
}

var _ driven.APISpecStore = (*apiSpecStore)(nil)

// Save creates or updates a spec by (Slug, Version).
func (s *apiSpecStore) Save(ctx context.Context, spec *domain.APISpec) error {
	if spec == nil {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = now
	}
	spec.UpdatedAt = now
	spec.ID = newID(spec.ID)

	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO api_specs (id, repository_id, slug, version, name, description, category,
			content, file_path, source_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug, version) DO UPDATE SET
			repository_id = excluded.repository_id,
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			content = excluded.content,
			file_path = excluded.file_path,
			source_hash = excluded.source_hash,
			updated_at = excluded.updated_at
		RETURNING id
	`, spec.ID, spec.RepositoryID, spec.Slug, spec.Version, spec.Name, spec.Description,
		spec.Category, spec.Content, spec.FilePath, spec.SourceHash, spec.CreatedAt, spec.UpdatedAt)

	if err := row.Scan(&spec.ID); err != nil {
		return fmt.Errorf("saving api spec: %w", err)
	}
	return nil
}

// ListByRepository returns all specs of a repository.
func (s *apiSpecStore) ListByRepository(ctx context.Context, repositoryID string) ([]domain.APISpec, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, repository_id, slug, version, name, description, category, content,
			file_path, source_hash, created_at, updated_at
		FROM api_specs WHERE repository_id = ?
		ORDER BY slug, version
	`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("querying api specs: %w", err)
	}
	defer rows.Close()

	var specs []domain.APISpec //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sp domain.APISpec
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&sp.ID, &sp.RepositoryID, &sp.Slug, &sp.Version, &sp.Name,
			&sp.Description, &sp.Category, &sp.Content, &sp.FilePath, &sp.SourceHash,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning api spec: %w", err)
		}
		if createdAt.Valid {
			sp.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			sp.UpdatedAt = updatedAt.Time
		}
		specs = append(specs, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating api specs: %w", err)
	}
	return specs, nil
}

// Delete removes a spec.
func (s *apiSpecStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM api_specs WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting api spec: %w", err)
	}
	return nil
}
