package domain

import (
	"fmt"
	"time"
)

// RepositoryKind identifies the hosting service of a repository.
type RepositoryKind string

const (
	// RepositoryGitHub is a GitHub (or GitHub Enterprise) repository.
	RepositoryGitHub RepositoryKind = "github"

	// RepositoryAzure is an Azure DevOps Git repository.
	RepositoryAzure RepositoryKind = "azure"
)

// Valid reports whether k is a supported repository kind.
func (k RepositoryKind) Valid() bool {
	return k == RepositoryGitHub || k == RepositoryAzure
}

// Repository represents one configured external content source.
// It is created by an administrator and mutated by the sync pipeline
// (status fields) and by admin edits. It is never deleted implicitly.
type Repository struct {
	// ID is the unique identifier for the repository.
	ID string

	// Name is the human-readable name.
	Name string

	// Slug is the URL-safe name used for the local image mirror path.
	Slug string

	// Kind identifies the hosting service.
	Kind RepositoryKind

	// Owner is the GitHub owner or the Azure DevOps organisation.
	Owner string

	// Project is the Azure DevOps project. Unused for GitHub.
	Project string

	// Repo is the repository name.
	Repo string

	// Branch is the branch (ref) to sync from.
	Branch string

	// BasePath limits the sync scope to a directory of the repository.
	BasePath string

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string

	// EncryptedToken is the at-rest encrypted access token.
	EncryptedToken string

	// SyncFrequency is the scheduled sync interval. Zero means manual only.
	SyncFrequency time.Duration

	// Enabled indicates whether the repository may be synced.
	Enabled bool

	// SyncImages opts the repository into image mirroring.
	SyncImages bool

	// LastSyncStatus mirrors the terminal state of the last sync run.
	LastSyncStatus SyncStatus

	// LastSyncAt is when the last sync run finished.
	LastSyncAt time.Time

	// LastSyncError is the error message of the last failed run.
	LastSyncError string

	// CreatedAt is when the repository was created.
	CreatedAt time.Time

	// UpdatedAt is when the repository was last updated.
	UpdatedAt time.Time
}

// DisplayName returns the repository name with its upstream location.
func (r *Repository) DisplayName() string {
	switch r.Kind {
	case RepositoryAzure:
		return fmt.Sprintf("%s (%s/%s/%s@%s)", r.Name, r.Owner, r.Project, r.Repo, r.Branch)
	default:
		return fmt.Sprintf("%s (%s/%s@%s)", r.Name, r.Owner, r.Repo, r.Branch)
	}
}

// IsScheduled reports whether the repository takes part in scheduled syncs.
func (r *Repository) IsScheduled() bool {
	return r.Enabled && r.SyncFrequency > 0
}

// IsDue reports whether a scheduled sync should run at now.
// A repository that has never synced is always due.
func (r *Repository) IsDue(now time.Time) bool {
	if !r.IsScheduled() {
		return false
	}
	if r.LastSyncAt.IsZero() {
		return true
	}
	return now.Sub(r.LastSyncAt) >= r.SyncFrequency
}
