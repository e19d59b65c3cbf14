package domain

import "time"

// APISpec is a versioned API specification, unique on (Slug, Version).
type APISpec struct {
	ID           string
	RepositoryID string
	Slug         string
	Version      string
	Name         string
	Description  string
	Category     string

	// Content is the raw YAML or JSON text.
	Content string

	FilePath   string
	SourceHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}
