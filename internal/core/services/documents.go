package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
	"github.com/custodia-labs/docsync/internal/normalisers/markdown"
)

// searchCachePrefix is the cache namespace of search results.
const searchCachePrefix = "search:"

// DocumentResult is the outcome of reconciling one repository's content.
type DocumentResult struct {
	Added    int
	Modified int
	Deleted  int
	Skipped  int

	ReleasesCreated int
	ReleasesUpdated int

	Changes []domain.DocumentChange
	Errors  []string
}

// DocumentReconciler applies the minimal set of create, update and delete
// operations that brings stored content in line with a fetched file set.
type DocumentReconciler struct {
	content  driven.ContentStore
	search   driven.SearchIndexer
	authors  driven.AuthorStore
	logs     driven.SyncLogStore
	releases *ReleaseDetector
	notifier driven.Notifier
	cache    driven.Cache
}

// NewDocumentReconciler creates a reconciler. authors, releases, notifier
// and cache are optional.
func NewDocumentReconciler(
	content driven.ContentStore,
	search driven.SearchIndexer,
	authors driven.AuthorStore,
	logs driven.SyncLogStore,
	releases *ReleaseDetector,
	notifier driven.Notifier,
	cache driven.Cache,
) *DocumentReconciler {
	return &DocumentReconciler{
		content:  content,
		search:   search,
		authors:  authors,
		logs:     logs,
		releases: releases,
		notifier: notifier,
		cache:    cache,
	}
}

// Reconcile processes the markdown files of one sync run.
//
// Items are created when new, updated when their source hash changed and
// left untouched otherwise. Stored items whose path was not fetched are
// deleted, except paths in unreadable: those still exist upstream and keep
// their stored item until a later run can read them. The change log is
// written in one batch; a failure there is returned, every other per-file
// failure is collected in Errors.
func (r *DocumentReconciler) Reconcile(
	ctx context.Context,
	repo domain.Repository,
	syncLogID string,
	files []domain.SourceFile,
	unreadable []string,
) (*DocumentResult, error) {
	result := &DocumentResult{}
	seen := make(map[string]bool, len(files)+len(unreadable))
	for _, p := range unreadable {
		seen[p] = true
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !markdown.IsMarkdown(f.Path) {
			continue
		}
		kind := markdown.Classify(f.Path)
		if kind == domain.ContentUnknown {
			continue
		}
		seen[f.Path] = true

		change, err := r.reconcileFile(ctx, repo, syncLogID, kind, f)
		if err != nil {
			logger.Warn("process %s: %v", f.Path, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", f.Path, err))
			continue
		}
		if change == nil {
			result.Skipped++
			continue
		}
		result.Changes = append(result.Changes, *change)
		if change.ChangeType == domain.ChangeAdded {
			result.Added++
		} else {
			result.Modified++
		}
	}

	deleted, err := r.deleteMissing(ctx, repo, syncLogID, seen, result)
	if err != nil {
		return nil, err
	}
	result.Deleted = deleted

	if len(result.Changes) > 0 {
		if err := r.logs.SaveChanges(ctx, result.Changes); err != nil {
			return nil, fmt.Errorf("save change log: %w", err)
		}
	}

	if r.releases != nil {
		rel, err := r.releases.Detect(ctx, repo, files)
		if err != nil {
			return nil, fmt.Errorf("detect releases: %w", err)
		}
		result.ReleasesCreated = rel.Created
		result.ReleasesUpdated = rel.Updated
		result.Errors = append(result.Errors, rel.Errors...)
	}

	if len(result.Changes) > 0 && r.notifier != nil {
		_, err := r.notifier.NotifyContentUpdate(ctx, driven.ContentUpdateEvent{
			Repository: repo,
			SyncLogID:  syncLogID,
			Changes:    result.Changes,
		})
		if err != nil {
			logger.Warn("content update notification for %s failed: %v", repo.Slug, err)
		}
	}

	return result, nil
}

// reconcileFile returns the change applied for f, or nil when the stored
// item is already current.
func (r *DocumentReconciler) reconcileFile(
	ctx context.Context,
	repo domain.Repository,
	syncLogID string,
	kind domain.ContentKind,
	f domain.SourceFile,
) (*domain.DocumentChange, error) {
	existing, err := r.content.GetByPath(ctx, repo.ID, f.Path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup: %w", err)
	}

	hash := markdown.Hash(f.Content)
	if existing != nil && existing.SourceHash == hash {
		return nil, nil
	}

	parsed := markdown.Parse(f.Path, f.Content)
	if parsed.FrontmatterErr != nil {
		logger.Debug("frontmatter of %s: %v", f.Path, parsed.FrontmatterErr)
	}

	item := &domain.ContentItem{}
	var previous *domain.ContentItem
	change := &domain.DocumentChange{
		SyncLogID:    syncLogID,
		RepositoryID: repo.ID,
		ChangeType:   domain.ChangeAdded,
		DocumentType: kind,
		FilePath:     f.Path,
		NewHash:      hash,
	}
	if existing != nil {
		prev := *existing
		previous = &prev
		item = existing
		change.ChangeType = domain.ChangeModified
		change.OldHash = existing.SourceHash
	}

	item.RepositoryID = repo.ID
	item.FilePath = f.Path
	item.Kind = kind
	item.Title = parsed.Title
	item.Slug = parsed.Slug
	item.Content = markdown.ReleaseBlocksRemoved(parsed.Body)
	item.Excerpt = parsed.Excerpt
	item.Description = parsed.Description
	item.Category = parsed.Category
	item.Tags = parsed.Tags
	item.Author = parsed.Author
	item.AuthorID = r.resolveAuthor(ctx, parsed.Author)
	item.PublishedAt = parsed.PublishedAt
	item.Draft = parsed.Draft
	item.Order = parsed.Order
	item.Restricted = parsed.Restricted
	item.RestrictedRoles = parsed.RestrictedRoles
	item.SourceHash = hash

	if err := r.content.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	if err := r.search.UpdateSearchVector(ctx, item.ID); err != nil {
		err = fmt.Errorf("update search vector: %w", err)
		if rbErr := r.rollback(ctx, item.ID, previous); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		return nil, err
	}
	r.invalidateSearch()

	change.Title = item.Title
	return change, nil
}

// rollback undoes a save whose search vector could not be written, so the
// stored hash no longer matches and the next run retries the file.
// previous is nil for a newly added item.
func (r *DocumentReconciler) rollback(ctx context.Context, itemID string, previous *domain.ContentItem) error {
	if previous == nil {
		if err := r.content.Delete(ctx, itemID); err != nil {
			return fmt.Errorf("roll back add: %w", err)
		}
		return nil
	}
	if err := r.content.Save(ctx, previous); err != nil {
		return fmt.Errorf("roll back update: %w", err)
	}
	return nil
}

func (r *DocumentReconciler) deleteMissing(
	ctx context.Context,
	repo domain.Repository,
	syncLogID string,
	seen map[string]bool,
	result *DocumentResult,
) (int, error) {
	existing, err := r.content.ListByRepository(ctx, repo.ID)
	if err != nil {
		return 0, fmt.Errorf("list content: %w", err)
	}

	deleted := 0
	for _, item := range existing {
		if seen[item.FilePath] {
			continue
		}
		if err := r.search.RemoveSearchVector(ctx, item.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: remove search vector: %v", item.FilePath, err))
			continue
		}
		if err := r.content.Delete(ctx, item.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: delete: %v", item.FilePath, err))
			continue
		}
		r.invalidateSearch()

		result.Changes = append(result.Changes, domain.DocumentChange{
			SyncLogID:    syncLogID,
			RepositoryID: repo.ID,
			ChangeType:   domain.ChangeDeleted,
			DocumentType: item.Kind,
			FilePath:     item.FilePath,
			Title:        item.Title,
			OldHash:      item.SourceHash,
		})
		deleted++
	}
	return deleted, nil
}

// resolveAuthor links an author reference to a synced profile. An address
// is matched by email, anything else by display name.
func (r *DocumentReconciler) resolveAuthor(ctx context.Context, ref string) *string {
	ref = strings.TrimSpace(ref)
	if ref == "" || r.authors == nil {
		return nil
	}

	var (
		author *domain.Author
		err    error
	)
	if strings.Contains(ref, "@") {
		author, err = r.authors.GetByEmail(ctx, ref)
	} else {
		author, err = r.authors.GetByName(ctx, ref)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Debug("resolve author %q: %v", ref, err)
		}
		return nil
	}
	id := author.ID
	return &id
}

func (r *DocumentReconciler) invalidateSearch() {
	if r.cache != nil {
		r.cache.InvalidatePrefix(searchCachePrefix)
	}
}
