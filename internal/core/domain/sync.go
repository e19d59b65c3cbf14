package domain

import "time"

// SyncStatus is the state of a sync run.
type SyncStatus string

const (
	SyncInProgress SyncStatus = "in_progress"
	SyncSuccess    SyncStatus = "success"
	SyncFailed     SyncStatus = "failed"
)

// SyncLog records one sync run. It is created in_progress and
// transitions exactly once to success or failed.
type SyncLog struct {
	ID           string
	RepositoryID string
	Status       SyncStatus
	FilesAdded   int
	FilesChanged int
	FilesDeleted int
	Duration     time.Duration
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// ChangeType is the kind of content mutation.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// DocumentChange is an append-only audit entry for one content mutation.
type DocumentChange struct {
	ID           string
	SyncLogID    string
	RepositoryID string
	ChangeType   ChangeType
	DocumentType ContentKind
	FilePath     string
	Title        string
	OldHash      string
	NewHash      string
	CreatedAt    time.Time
}

// SourceFile is one file returned by a fetcher.
type SourceFile struct {
	Path    string
	Content string
}

// FetchResult is the full file set of one repository fetch.
type FetchResult struct {
	// Documents holds markdown, _meta.json and author JSON files.
	Documents []SourceFile

	// APISpecs holds YAML files under api-specs/<category>/.
	APISpecs []SourceFile

	// Unreadable lists in-scope paths whose content could not be read.
	// They are still present upstream and must not be deleted.
	Unreadable []string
}

// SyncResult aggregates the outcome of one sync run.
type SyncResult struct {
	SyncLogID string

	Added    int
	Modified int
	Deleted  int
	Skipped  int

	CategoriesSaved   int
	CategoriesDeleted int
	AuthorsSaved      int
	SpecsSaved        int
	SpecsDeleted      int
	ImagesSynced      int
	ImagesDeleted     int
	ReleasesCreated   int
	ReleasesUpdated   int

	// Errors collects recoverable per-item failures.
	Errors []string

	Duration time.Duration
}
