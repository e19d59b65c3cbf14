package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docsync/internal/connectors"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// Sync phases reported by Status.
const (
	PhaseFetch     = "fetch"
	PhaseMetadata  = "metadata"
	PhaseAuthors   = "authors"
	PhaseDocuments = "documents"
	PhaseAPISpecs  = "api-specs"
	PhaseImages    = "images"
	PhaseCleanup   = "cleanup"
)

// defaultHistoryLimit caps History when no limit is given.
const defaultHistoryLimit = 20

// SyncDeps are the stores and adapters a SyncOrchestrator works with.
// ImageStorage, Notifier and Cache are optional.
type SyncDeps struct {
	Repositories driven.RepositoryStore
	Content      driven.ContentStore
	Search       driven.SearchIndexer
	Categories   driven.CategoryStore
	Authors      driven.AuthorStore
	APISpecs     driven.APISpecStore
	Images       driven.ImageStore
	ImageStorage driven.ImageStorage
	SyncLogs     driven.SyncLogStore
	Releases     driven.ReleaseStore
	Teams        driven.TeamStore
	Fetchers     driven.FetcherFactory
	Notifier     driven.Notifier
	Cache        driven.Cache
}

// SyncOrchestrator coordinates repository synchronisation.
type SyncOrchestrator struct {
	repos    driven.RepositoryStore
	logs     driven.SyncLogStore
	fetchers driven.FetcherFactory

	categories *CategoryProcessor
	authors    *AuthorProcessor
	documents  *DocumentReconciler
	specs      *APISpecProcessor
	images     *ImageSyncer

	instance string
	lockTTL  time.Duration
	now      func() time.Time

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[string]*driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(deps SyncDeps, cfg domain.SchedulerConfig) *SyncOrchestrator {
	releases := NewReleaseDetector(deps.Releases, deps.Teams, deps.Notifier)

	var images *ImageSyncer
	if deps.Images != nil && deps.ImageStorage != nil {
		images = NewImageSyncer(deps.Images, deps.ImageStorage)
	}

	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = domain.DefaultSchedulerConfig().LockTTL
	}

	return &SyncOrchestrator{
		repos:       deps.Repositories,
		logs:        deps.SyncLogs,
		fetchers:    deps.Fetchers,
		categories:  NewCategoryProcessor(deps.Categories, deps.Content),
		authors:     NewAuthorProcessor(deps.Authors),
		documents:   NewDocumentReconciler(deps.Content, deps.Search, deps.Authors, deps.SyncLogs, releases, deps.Notifier, deps.Cache),
		specs:       NewAPISpecProcessor(deps.APISpecs),
		images:      images,
		instance:    instanceName(),
		lockTTL:     lockTTL,
		now:         time.Now,
		activeSyncs: make(map[string]*driving.SyncStatus),
	}
}

// Sync runs one sync for a repository.
//
// Once the sync log exists, the log and the repository status are always
// finalised, whether the run succeeds or fails.
func (o *SyncOrchestrator) Sync(ctx context.Context, repositoryID string) (*domain.SyncResult, error) {
	repo, err := o.repos.Get(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("get repository: %w", err)
	}
	if !repo.Enabled {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryDisabled, repo.Slug)
	}

	started := o.now()
	if !o.begin(repositoryID, started) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSyncInProgress, repo.Slug)
	}
	defer o.clearStatus(repositoryID)

	holder := o.instance + "/" + uuid.NewString()
	acquired, err := o.repos.AcquireSyncLock(ctx, repositoryID, holder, o.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %s is locked by another process", domain.ErrSyncInProgress, repo.Slug)
	}
	defer func() {
		if err := o.repos.ReleaseSyncLock(context.WithoutCancel(ctx), repositoryID, holder); err != nil {
			logger.Warn("release sync lock of %s: %v", repo.Slug, err)
		}
	}()

	syncLog := &domain.SyncLog{
		RepositoryID: repositoryID,
		Status:       domain.SyncInProgress,
		StartedAt:    started.UTC(),
	}
	if err := o.logs.Create(ctx, syncLog); err != nil {
		return nil, fmt.Errorf("create sync log: %w", err)
	}

	logger.Info("Starting sync for %s", repo.DisplayName())

	result, runErr := o.run(ctx, *repo, syncLog.ID)
	o.finalize(ctx, repo, syncLog, result, runErr, started)
	if runErr != nil {
		return nil, fmt.Errorf("sync %s: %w", repo.Slug, runErr)
	}
	return result, nil
}

// run executes the pipeline phases in order. Later phases read what
// earlier ones wrote, so nothing here runs concurrently.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) run(ctx context.Context, repo domain.Repository, syncLogID string) (*domain.SyncResult, error) {
	result := &domain.SyncResult{SyncLogID: syncLogID}

	if err := o.repos.UpdateSyncStatus(ctx, repo.ID, domain.SyncInProgress, repo.LastSyncAt, ""); err != nil {
		return nil, fmt.Errorf("mark in progress: %w", err)
	}

	// 1. Fetch
	o.setPhase(repo.ID, PhaseFetch)
	fetcher, err := o.fetchers.Create(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	defer fetcher.Close()

	fetched, err := fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	metaFiles, authorFiles, contentFiles := classifyDocuments(fetched.Documents)
	for _, p := range fetched.Unreadable {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: content could not be read", p))
	}
	logger.Debug("%s: %d content, %d meta, %d author files, %d api specs",
		repo.Slug, len(contentFiles), len(metaFiles), len(authorFiles), len(fetched.APISpecs))

	// 2. Category descriptors
	o.setPhase(repo.ID, PhaseMetadata)
	catRun, err := o.categories.Apply(ctx, repo, metaFiles)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	result.CategoriesSaved = catRun.Saved
	result.Errors = append(result.Errors, catRun.Errors...)

	// 3. Authors
	o.setPhase(repo.ID, PhaseAuthors)
	saved, authorErrs, err := o.authors.Process(ctx, authorFiles)
	if err != nil {
		return nil, fmt.Errorf("authors: %w", err)
	}
	result.AuthorsSaved = saved
	result.Errors = append(result.Errors, authorErrs...)

	// 4. Content
	o.setPhase(repo.ID, PhaseDocuments)
	docs, err := o.documents.Reconcile(ctx, repo, syncLogID, contentFiles, fetched.Unreadable)
	if err != nil {
		return nil, fmt.Errorf("documents: %w", err)
	}
	result.Added = docs.Added
	result.Modified = docs.Modified
	result.Deleted = docs.Deleted
	result.Skipped = docs.Skipped
	result.ReleasesCreated = docs.ReleasesCreated
	result.ReleasesUpdated = docs.ReleasesUpdated
	result.Errors = append(result.Errors, docs.Errors...)

	// 5. API specs
	o.setPhase(repo.ID, PhaseAPISpecs)
	specs, err := o.specs.Process(ctx, repo, fetched.APISpecs)
	if err != nil {
		return nil, fmt.Errorf("api specs: %w", err)
	}
	result.SpecsSaved = specs.Saved
	result.SpecsDeleted = specs.Deleted
	result.Errors = append(result.Errors, specs.Errors...)

	// 6. Images, best effort
	if repo.SyncImages && o.images != nil {
		o.setPhase(repo.ID, PhaseImages)
		imgs, err := o.images.Sync(ctx, repo, fetcher)
		if err != nil {
			logger.Warn("image sync of %s: %v", repo.Slug, err)
			result.Errors = append(result.Errors, fmt.Sprintf("images: %v", err))
		} else {
			result.ImagesSynced = imgs.Synced
			result.ImagesDeleted = imgs.Deleted
			result.Errors = append(result.Errors, imgs.Errors...)
		}
	}

	// 7. Categories with no descriptor entry or no content left
	o.setPhase(repo.ID, PhaseCleanup)
	deleted, err := o.categories.Cleanup(ctx, repo, catRun)
	if err != nil {
		return nil, fmt.Errorf("category cleanup: %w", err)
	}
	result.CategoriesDeleted = deleted

	return result, nil
}

// finalize writes the terminal state of the run. It must not be skipped
// when ctx is cancelled, so it detaches from cancellation.
func (o *SyncOrchestrator) finalize(
	ctx context.Context,
	repo *domain.Repository,
	syncLog *domain.SyncLog,
	result *domain.SyncResult,
	runErr error,
	started time.Time,
) {
	ctx = context.WithoutCancel(ctx)
	finished := o.now()

	syncLog.FinishedAt = finished.UTC()
	syncLog.Duration = finished.Sub(started)
	if runErr != nil {
		syncLog.Status = domain.SyncFailed
		syncLog.Error = runErr.Error()
		logger.Error("Sync of %s failed: %v", repo.Slug, runErr)
	} else {
		syncLog.Status = domain.SyncSuccess
		syncLog.FilesAdded = result.Added
		syncLog.FilesChanged = result.Modified
		syncLog.FilesDeleted = result.Deleted
		result.Duration = syncLog.Duration
		logger.Info("Sync of %s complete: %d added, %d modified, %d deleted, %d skipped, %d errors",
			repo.Slug, result.Added, result.Modified, result.Deleted, result.Skipped, len(result.Errors))
	}

	if err := o.logs.Finalize(ctx, syncLog); err != nil {
		logger.Error("finalize sync log %s: %v", syncLog.ID, err)
	}
	if err := o.repos.UpdateSyncStatus(ctx, repo.ID, syncLog.Status, finished.UTC(), syncLog.Error); err != nil {
		logger.Error("update sync status of %s: %v", repo.Slug, err)
	}
}

// SyncDue syncs every scheduled repository that is due at now. Each runs in
// its own goroutine; failures are collected and do not stop the others.
func (o *SyncOrchestrator) SyncDue(ctx context.Context, now time.Time) error {
	repos, err := o.repos.List(ctx)
	if err != nil {
		return fmt.Errorf("list repositories: %w", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, repo := range repos {
		if !repo.IsDue(now) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.Sync(ctx, repo.ID); err != nil {
				if errors.Is(err, domain.ErrSyncInProgress) {
					logger.Debug("skipping %s: %v", repo.Slug, err)
					return
				}
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Status returns sync status for a repository.
func (o *SyncOrchestrator) Status(_ context.Context, repositoryID string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.activeSyncs[repositoryID]; ok {
		// Return a copy to avoid race conditions
		cp := *status
		return &cp, nil
	}

	// Not running - return idle status
	return &driving.SyncStatus{
		RepositoryID: repositoryID,
		Running:      false,
	}, nil
}

// History returns recent sync logs, most recent first.
func (o *SyncOrchestrator) History(ctx context.Context, repositoryID string, limit int) ([]domain.SyncLog, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	logs, err := o.logs.List(ctx, repositoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync logs: %w", err)
	}
	return logs, nil
}

// Changes returns the change log of one sync run.
func (o *SyncOrchestrator) Changes(ctx context.Context, syncLogID string) ([]domain.DocumentChange, error) {
	if _, err := o.logs.Get(ctx, syncLogID); err != nil {
		return nil, fmt.Errorf("get sync log: %w", err)
	}
	changes, err := o.logs.ListChanges(ctx, syncLogID)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	return changes, nil
}

// begin registers a run in this process. It reports false when the
// repository is already syncing here.
func (o *SyncOrchestrator) begin(repositoryID string, started time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.activeSyncs[repositoryID]; ok {
		return false
	}
	o.activeSyncs[repositoryID] = &driving.SyncStatus{
		RepositoryID: repositoryID,
		Running:      true,
		StartedAt:    started,
	}
	return true
}

func (o *SyncOrchestrator) setPhase(repositoryID, phase string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.activeSyncs[repositoryID]; ok {
		status.Phase = phase
	}
}

// clearStatus removes the sync status for a repository.
func (o *SyncOrchestrator) clearStatus(repositoryID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeSyncs, repositoryID)
}

// classifyDocuments splits fetched documents by the role they play.
func classifyDocuments(files []domain.SourceFile) (metaFiles, authorFiles, contentFiles []domain.SourceFile) {
	for _, f := range files {
		switch connectors.Classify(f.Path) {
		case connectors.FileMeta:
			metaFiles = append(metaFiles, f)
		case connectors.FileAuthor:
			authorFiles = append(authorFiles, f)
		case connectors.FileContent:
			contentFiles = append(contentFiles, f)
		}
	}
	return metaFiles, authorFiles, contentFiles
}

// instanceName identifies this process in sync lease rows.
func instanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "docsync"
	}
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}
