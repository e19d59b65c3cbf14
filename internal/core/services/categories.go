package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
	"github.com/custodia-labs/docsync/internal/normalisers"
	"github.com/custodia-labs/docsync/internal/normalisers/meta"
)

// CategoryRun tracks what one sync run produced from _meta.json files.
// Cleanup needs it after all other phases have finished.
type CategoryRun struct {
	produced map[string]bool
	fetched  map[string]bool

	Saved  int
	Errors []string
}

// CategoryProcessor maintains the category tree of a repository.
type CategoryProcessor struct {
	categories driven.CategoryStore
	content    driven.ContentStore
}

// NewCategoryProcessor creates a category processor.
func NewCategoryProcessor(categories driven.CategoryStore, content driven.ContentStore) *CategoryProcessor {
	return &CategoryProcessor{categories: categories, content: content}
}

// Apply upserts the entries of every _meta.json file. A file that cannot
// be parsed is reported and its existing categories are left alone.
func (p *CategoryProcessor) Apply(ctx context.Context, repo domain.Repository, files []domain.SourceFile) (*CategoryRun, error) {
	run := &CategoryRun{
		produced: make(map[string]bool),
		fetched:  make(map[string]bool),
	}

	for _, f := range files {
		entries, err := meta.Parse(f.Path, f.Content, repo.BasePath)
		if err != nil {
			run.Errors = append(run.Errors, err.Error())
			continue
		}
		run.fetched[f.Path] = true

		for _, e := range entries {
			cat := &domain.CategoryMetadata{
				RepositoryID: repo.ID,
				Slug:         e.Slug,
				Title:        e.Title,
				Icon:         e.Icon,
				Description:  e.Description,
				ParentSlug:   e.ParentSlug,
				Level:        e.Level,
				Order:        e.Order,
				SourcePath:   f.Path,
			}
			if err := p.categories.Save(ctx, cat); err != nil {
				return nil, fmt.Errorf("save category %s: %w", e.Slug, err)
			}
			run.produced[e.Slug] = true
			run.Saved++
		}
	}
	return run, nil
}

// Cleanup deletes categories that are no longer backed by a descriptor or
// by content. It runs once per sync, after documents were reconciled.
//
// A category is removed when its descriptor was fetched but no longer
// defines it, or when no surviving content item lies beneath it. Item
// paths are taken relative to the same content root as descriptors.
func (p *CategoryProcessor) Cleanup(ctx context.Context, repo domain.Repository, run *CategoryRun) (int, error) {
	items, err := p.content.ListByRepository(ctx, repo.ID)
	if err != nil {
		return 0, fmt.Errorf("list content: %w", err)
	}

	live := make(map[string]bool)
	for _, item := range items {
		page := strings.TrimSuffix(item.FilePath, path.Ext(item.FilePath))
		for _, prefix := range domain.CategoryPrefixes(normalisers.RootRelative(page, repo.BasePath)) {
			live[prefix] = true
		}
		for _, prefix := range domain.CategoryPrefixes(strings.ToLower(item.Category)) {
			live[prefix] = true
		}
	}

	cats, err := p.categories.ListByRepository(ctx, repo.ID)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}

	deleted := 0
	for _, cat := range cats {
		removed := run != nil && run.fetched[cat.SourcePath] && !run.produced[cat.Slug]
		if !removed && live[cat.Slug] {
			continue
		}
		if err := p.categories.Delete(ctx, cat.ID); err != nil {
			return deleted, fmt.Errorf("delete category %s: %w", cat.Slug, err)
		}
		logger.Debug("deleted category %s of %s", cat.Slug, repo.Slug)
		deleted++
	}
	return deleted, nil
}
