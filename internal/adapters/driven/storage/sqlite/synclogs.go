package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// syncLogStore implements driven.SyncLogStore.
type syncLogStore struct {
	store *Store
}

var _ driven.SyncLogStore = (*syncLogStore)(nil)

const syncLogColumns = `id, repository_id, status, files_added, files_changed, files_deleted,
	duration_ms, error, started_at, finished_at`

// Create inserts a new sync log.
func (s *syncLogStore) Create(ctx context.Context, log *domain.SyncLog) error {
	if log == nil || log.RepositoryID == "" {
		return domain.ErrInvalidInput
	}
	log.ID = newID(log.ID)
	if log.StartedAt.IsZero() {
		log.StartedAt = time.Now().UTC()
	}
	if log.Status == "" {
		log.Status = domain.SyncInProgress
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_logs (id, repository_id, status, started_at)
		VALUES (?, ?, ?, ?)
	`, log.ID, log.RepositoryID, string(log.Status), log.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("creating sync log: %w", err)
	}
	return nil
}

// Finalize writes the terminal state of a sync log.
func (s *syncLogStore) Finalize(ctx context.Context, log *domain.SyncLog) error {
	if log == nil {
		return domain.ErrInvalidInput
	}
	if log.FinishedAt.IsZero() {
		log.FinishedAt = time.Now().UTC()
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_logs SET
			status = ?, files_added = ?, files_changed = ?, files_deleted = ?,
			duration_ms = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, string(log.Status), log.FilesAdded, log.FilesChanged, log.FilesDeleted,
		log.Duration.Milliseconds(), log.Error, log.FinishedAt.UTC(), log.ID)
	if err != nil {
		return fmt.Errorf("finalizing sync log: %w", err)
	}
	return requireRow(res)
}

// Get retrieves a sync log by ID.
func (s *syncLogStore) Get(ctx context.Context, id string) (*domain.SyncLog, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+syncLogColumns+` FROM sync_logs WHERE id = ?`, id)
	return scanSyncLog(row)
}

// List returns recent sync logs of a repository, most recent first.
// A non-positive limit returns all.
func (s *syncLogStore) List(ctx context.Context, repositoryID string, limit int) ([]domain.SyncLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+syncLogColumns+` FROM sync_logs
		WHERE repository_id = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, repositoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.SyncLog //nolint:prealloc // size unknown from query
	for rows.Next() {
		l, err := scanSyncLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync logs: %w", err)
	}
	return logs, nil
}

// SaveChanges writes a batch of change entries in one transaction.
func (s *syncLogStore) SaveChanges(ctx context.Context, changes []domain.DocumentChange) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_changes (id, sync_log_id, repository_id, change_type, document_type,
			file_path, title, old_hash, new_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range changes {
		c := &changes[i]
		c.ID = newID(c.ID)
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.SyncLogID, c.RepositoryID, string(c.ChangeType),
			string(c.DocumentType), c.FilePath, c.Title, c.OldHash, c.NewHash, c.CreatedAt); err != nil {
			return fmt.Errorf("saving change %s: %w", c.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListChanges returns the change entries of a sync log in insertion order.
func (s *syncLogStore) ListChanges(ctx context.Context, syncLogID string) ([]domain.DocumentChange, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, sync_log_id, repository_id, change_type, document_type, file_path, title,
			old_hash, new_hash, created_at
		FROM document_changes WHERE sync_log_id = ?
		ORDER BY rowid
	`, syncLogID)
	if err != nil {
		return nil, fmt.Errorf("querying changes: %w", err)
	}
	defer rows.Close()

	var changes []domain.DocumentChange //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.DocumentChange
		var changeType, docType string
		var createdAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.SyncLogID, &c.RepositoryID, &changeType, &docType,
			&c.FilePath, &c.Title, &c.OldHash, &c.NewHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning change: %w", err)
		}
		c.ChangeType = domain.ChangeType(changeType)
		c.DocumentType = domain.ContentKind(docType)
		if createdAt.Valid {
			c.CreatedAt = createdAt.Time
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating changes: %w", err)
	}
	return changes, nil
}

func scanSyncLog(row rowScanner) (*domain.SyncLog, error) {
	var l domain.SyncLog
	var status string
	var durationMS int64
	var startedAt, finishedAt sql.NullTime
	if err := row.Scan(&l.ID, &l.RepositoryID, &status, &l.FilesAdded, &l.FilesChanged,
		&l.FilesDeleted, &durationMS, &l.Error, &startedAt, &finishedAt); err != nil {
		return nil, notFound(err, "sync log")
	}
	l.Status = domain.SyncStatus(status)
	l.Duration = time.Duration(durationMS) * time.Millisecond
	if startedAt.Valid {
		l.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		l.FinishedAt = finishedAt.Time
	}
	return &l, nil
}
