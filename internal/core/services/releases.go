package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
	"github.com/custodia-labs/docsync/internal/normalisers/markdown"
)

// ReleaseResult counts release rows written during one run.
type ReleaseResult struct {
	Created  int
	Updated  int
	Notified int
	Errors   []string
}

// ReleaseDetector turns release blocks embedded in documents into Release
// rows and announces each new release exactly once.
type ReleaseDetector struct {
	releases driven.ReleaseStore
	teams    driven.TeamStore
	notifier driven.Notifier
	now      func() time.Time
}

// NewReleaseDetector creates a release detector. notifier may be nil.
func NewReleaseDetector(releases driven.ReleaseStore, teams driven.TeamStore, notifier driven.Notifier) *ReleaseDetector {
	return &ReleaseDetector{
		releases: releases,
		teams:    teams,
		notifier: notifier,
		now:      time.Now,
	}
}

// Detect scans every file for release blocks and reconciles them with the
// stored releases of the repository. Errors on one block are collected and
// the scan continues.
func (d *ReleaseDetector) Detect(ctx context.Context, repo domain.Repository, files []domain.SourceFile) (*ReleaseResult, error) {
	result := &ReleaseResult{}

	enabled, err := d.enabledTeams(ctx)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if !markdown.IsMarkdown(f.Path) {
			continue
		}
		parsed := markdown.Parse(f.Path, f.Content)
		for _, block := range parsed.Releases {
			teams := validTeams(block.Teams, enabled)
			if len(teams) == 0 {
				logger.Debug("release %s in %s names no known team, skipping", block.Version, f.Path)
				continue
			}
			if err := d.apply(ctx, repo, parsed.Title, f.Path, block, teams, result); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("release %s in %s: %v", block.Version, f.Path, err))
			}
		}
	}
	return result, nil
}

func (d *ReleaseDetector) apply(
	ctx context.Context,
	repo domain.Repository,
	title, filePath string,
	block markdown.ReleaseBlock,
	teams []string,
	result *ReleaseResult,
) error {
	existing, err := d.releases.Find(ctx, repo.ID, block.Version, filePath)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("find release: %w", err)
	}

	if existing != nil {
		if existing.Content == block.Content && existing.SameTeams(teams) {
			return nil
		}
		existing.Content = block.Content
		existing.Teams = teams
		if err := d.releases.Save(ctx, existing); err != nil {
			return fmt.Errorf("update release: %w", err)
		}
		result.Updated++
		return nil
	}

	release := &domain.Release{
		RepositoryID: repo.ID,
		Version:      block.Version,
		Content:      block.Content,
		Teams:        teams,
		FilePath:     filePath,
	}
	if err := d.releases.Save(ctx, release); err != nil {
		return fmt.Errorf("create release: %w", err)
	}
	result.Created++

	if d.notifier == nil {
		return nil
	}
	sent, err := d.notifier.NotifyReleasePublished(ctx, driven.ReleaseEvent{
		Repository: repo,
		Release:    *release,
		Title:      title,
	})
	if err != nil {
		// The row exists, so the release is never announced twice even if
		// this delivery failed.
		logger.Warn("release %s notification failed: %v", block.Version, err)
		return nil
	}
	if sent.Sent > 0 {
		result.Notified++
		if err := d.releases.MarkNotified(ctx, release.ID, d.now().UTC()); err != nil {
			return fmt.Errorf("mark release notified: %w", err)
		}
	}
	return nil
}

func (d *ReleaseDetector) enabledTeams(ctx context.Context) (map[string]bool, error) {
	enabled := make(map[string]bool)
	if d.teams == nil {
		return enabled, nil
	}
	teams, err := d.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	for _, t := range teams {
		if t.Enabled {
			enabled[t.Slug] = true
		}
	}
	return enabled, nil
}

// validTeams keeps the known teams of a block in their original order.
func validTeams(teams []string, enabled map[string]bool) []string {
	var out []string
	seen := make(map[string]bool, len(teams))
	for _, t := range teams {
		if enabled[t] && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
