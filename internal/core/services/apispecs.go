package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
	"github.com/custodia-labs/docsync/internal/normalisers/apispec"
)

// SpecResult counts the API spec writes of one run.
type SpecResult struct {
	Saved   int
	Skipped int
	Deleted int
	Errors  []string
}

// APISpecProcessor stores API specifications found under api-specs/.
type APISpecProcessor struct {
	specs driven.APISpecStore
}

// NewAPISpecProcessor creates an API spec processor.
func NewAPISpecProcessor(specs driven.APISpecStore) *APISpecProcessor {
	return &APISpecProcessor{specs: specs}
}

// Process saves new or changed specs and deletes the repository's specs
// that were not produced by this run. Specs that fail to parse are
// reported and their stored rows are kept.
func (p *APISpecProcessor) Process(ctx context.Context, repo domain.Repository, files []domain.SourceFile) (*SpecResult, error) {
	result := &SpecResult{}

	existing, err := p.specs.ListByRepository(ctx, repo.ID)
	if err != nil {
		return nil, fmt.Errorf("list api specs: %w", err)
	}
	byKey := make(map[string]domain.APISpec, len(existing))
	for _, s := range existing {
		byKey[specKey(s.Slug, s.Version)] = s
	}

	keep := make(map[string]bool, len(files))
	failedPaths := make(map[string]bool)
	for _, f := range files {
		md, err := apispec.Parse(f.Path, f.Content)
		if err != nil {
			logger.Warn("api spec %s: %v", f.Path, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", f.Path, err))
			failedPaths[f.Path] = true
			continue
		}

		key := specKey(md.Slug, md.Version)
		if keep[key] {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: duplicate spec %s@%s", f.Path, md.Slug, md.Version))
			continue
		}
		keep[key] = true

		hash := specHash(f.Content)
		if prev, ok := byKey[key]; ok && prev.SourceHash == hash && prev.FilePath == f.Path {
			result.Skipped++
			continue
		}

		spec := &domain.APISpec{
			RepositoryID: repo.ID,
			Slug:         md.Slug,
			Version:      md.Version,
			Name:         md.Name,
			Description:  md.Description,
			Category:     md.Category,
			Content:      f.Content,
			FilePath:     f.Path,
			SourceHash:   hash,
		}
		if err := p.specs.Save(ctx, spec); err != nil {
			return nil, fmt.Errorf("save api spec %s: %w", f.Path, err)
		}
		result.Saved++
	}

	for key, s := range byKey {
		if keep[key] || failedPaths[s.FilePath] {
			continue
		}
		if err := p.specs.Delete(ctx, s.ID); err != nil {
			return nil, fmt.Errorf("delete api spec %s: %w", s.FilePath, err)
		}
		result.Deleted++
	}
	return result, nil
}

func specKey(slug, version string) string {
	return slug + "@" + version
}

func specHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
