package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// ==================== Content Store ====================

// contentStore implements driven.ContentStore.
type contentStore struct {
	store *Store
}

var _ driven.ContentStore = (*contentStore)(nil)

const contentColumns = `c.id, c.repository_id, c.kind, c.file_path, c.title, c.slug, c.content,
	c.excerpt, c.description, c.category, c.tags, c.author, c.author_id, c.published_at,
	c.draft, c.sort_order, c.restricted, c.restricted_roles, c.source_hash,
	c.created_at, c.updated_at`

// Save creates or updates an item by (RepositoryID, FilePath). The stored
// ID is written back to item; created_at of an existing row is kept.
func (s *contentStore) Save(ctx context.Context, item *domain.ContentItem) error {
	if item == nil {
		return domain.ErrInvalidInput
	}

	tags, err := encodeList(item.Tags)
	if err != nil {
		return err
	}
	roles, err := encodeList(item.RestrictedRoles)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	item.ID = newID(item.ID)

	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO content_items (id, repository_id, kind, file_path, title, slug, content,
			excerpt, description, category, tags, author, author_id, published_at,
			draft, sort_order, restricted, restricted_roles, source_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, file_path) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title,
			slug = excluded.slug,
			content = excluded.content,
			excerpt = excluded.excerpt,
			description = excluded.description,
			category = excluded.category,
			tags = excluded.tags,
			author = excluded.author,
			author_id = excluded.author_id,
			published_at = excluded.published_at,
			draft = excluded.draft,
			sort_order = excluded.sort_order,
			restricted = excluded.restricted,
			restricted_roles = excluded.restricted_roles,
			source_hash = excluded.source_hash,
			updated_at = excluded.updated_at
		RETURNING id
	`, item.ID, item.RepositoryID, string(item.Kind), item.FilePath, item.Title, item.Slug,
		item.Content, item.Excerpt, item.Description, item.Category, tags, item.Author,
		nullString(item.AuthorID), nullTime(item.PublishedAt), boolInt(item.Draft), item.Order,
		boolInt(item.Restricted), roles, item.SourceHash, item.CreatedAt, item.UpdatedAt)

	if err := row.Scan(&item.ID); err != nil {
		return fmt.Errorf("saving content item: %w", err)
	}
	return nil
}

// GetByPath retrieves an item by repository and file path.
func (s *contentStore) GetByPath(ctx context.Context, repositoryID, filePath string) (*domain.ContentItem, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_items c WHERE c.repository_id = ? AND c.file_path = ?`,
		repositoryID, filePath)
	return scanContentItem(row)
}

// Get retrieves an item by ID.
func (s *contentStore) Get(ctx context.Context, id string) (*domain.ContentItem, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_items c WHERE c.id = ?`, id)
	return scanContentItem(row)
}

// ListByRepository returns all items of a repository ordered by path.
func (s *contentStore) ListByRepository(ctx context.Context, repositoryID string) ([]domain.ContentItem, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+contentColumns+` FROM content_items c WHERE c.repository_id = ? ORDER BY c.file_path`,
		repositoryID)
	if err != nil {
		return nil, fmt.Errorf("querying content items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem //nolint:prealloc // size unknown from query
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content items: %w", err)
	}
	return items, nil
}

// Delete removes an item.
func (s *contentStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM content_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting content item: %w", err)
	}
	return nil
}

func scanContentItem(row rowScanner) (*domain.ContentItem, error) {
	var item domain.ContentItem
	var kind, tags, roles string
	var authorID sql.NullString
	var publishedAt, createdAt, updatedAt sql.NullTime
	var draft, restricted int

	if err := row.Scan(&item.ID, &item.RepositoryID, &kind, &item.FilePath, &item.Title,
		&item.Slug, &item.Content, &item.Excerpt, &item.Description, &item.Category, &tags,
		&item.Author, &authorID, &publishedAt, &draft, &item.Order, &restricted, &roles,
		&item.SourceHash, &createdAt, &updatedAt); err != nil {
		return nil, notFound(err, "content item")
	}

	var err error
	if item.Tags, err = decodeList(tags); err != nil {
		return nil, err
	}
	if item.RestrictedRoles, err = decodeList(roles); err != nil {
		return nil, err
	}
	item.Kind = domain.ContentKind(kind)
	item.AuthorID = stringPtr(authorID)
	item.PublishedAt = timePtr(publishedAt)
	item.Draft = draft != 0
	item.Restricted = restricted != 0
	if createdAt.Valid {
		item.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		item.UpdatedAt = updatedAt.Time
	}
	return &item, nil
}

// ==================== Search Indexer ====================

// searchIndexer implements driven.SearchIndexer over the content_search FTS5 table.
type searchIndexer struct {
	store *Store
}

var _ driven.SearchIndexer = (*searchIndexer)(nil)

// DefaultSearchLimit applies when SearchOptions.Limit is not set.
const DefaultSearchLimit = 20

// UpdateSearchVector rebuilds the FTS row of an item from its current content.
func (s *searchIndexer) UpdateSearchVector(ctx context.Context, itemID string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM content_search WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("clearing search vector: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO content_search (item_id, repository_id, kind, title, excerpt, body)
		SELECT id, repository_id, kind, title, excerpt || ' ' || description, content
		FROM content_items WHERE id = ?
	`, itemID)
	if err != nil {
		return fmt.Errorf("writing search vector: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RemoveSearchVector drops the FTS row of an item.
func (s *searchIndexer) RemoveSearchVector(ctx context.Context, itemID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM content_search WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("removing search vector: %w", err)
	}
	return nil
}

// Search runs a ranked keyword query. Title matches weigh most, then the
// excerpt, then the body.
func (s *searchIndexer) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var where []string
	args := []any{match}
	if len(opts.RepositoryIDs) > 0 {
		where = append(where, "c.repository_id IN (?"+strings.Repeat(", ?", len(opts.RepositoryIDs)-1)+")")
		for _, id := range opts.RepositoryIDs {
			args = append(args, id)
		}
	}
	if opts.Kind != domain.ContentUnknown {
		where = append(where, "c.kind = ?")
		args = append(args, string(opts.Kind))
	}
	args = append(args, limit)

	filter := ""
	if len(where) > 0 {
		filter = " AND " + strings.Join(where, " AND ")
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+contentColumns+`,
			bm25(content_search, 0, 0, 0, 10.0, 4.0, 1.0) AS score,
			snippet(content_search, 5, '[', ']', '…', 16)
		FROM content_search
		JOIN content_items c ON c.id = content_search.item_id
		WHERE content_search MATCH ?`+filter+`
		ORDER BY score
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("searching content: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		item, err := scanSearchRow(rows, &r.Score, &r.Snippet)
		if err != nil {
			return nil, err
		}
		r.Item = *item
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	return results, nil
}

// scanSearchRow scans the content columns followed by score and snippet.
func scanSearchRow(rows *sql.Rows, score *float64, snippet *string) (*domain.ContentItem, error) {
	return scanContentItem(extraScanner{rows: rows, extra: []any{score, snippet}})
}

type extraScanner struct {
	rows  *sql.Rows
	extra []any
}

func (e extraScanner) Scan(dest ...any) error {
	return e.rows.Scan(append(dest, e.extra...)...)
}

// ftsQuery turns free text into an FTS5 query: every word is quoted, the
// last one is a prefix match, and terms are ANDed.
func ftsQuery(q string) string {
	words := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-'
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, "-")
		if w == "" {
			continue
		}
		terms = append(terms, `"`+w+`"`)
	}
	if len(terms) == 0 {
		return ""
	}
	terms[len(terms)-1] += "*"
	return strings.Join(terms, " ")
}
