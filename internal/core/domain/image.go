package domain

import "time"

// RepositoryImage tracks one mirrored binary asset.
type RepositoryImage struct {
	ID           string
	RepositoryID string
	FilePath     string

	// SHA is the object id reported by the source control system.
	SHA string

	// LocalPath is img/<repositorySlug>/<FilePath>.
	LocalPath string

	Size         int64
	MIMEType     string
	LastSyncedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ImageRef is an image listed by a fetcher.
type ImageRef struct {
	Path string
	SHA  string
	Size int64
}
