package domain

import "time"

// ContentKind distinguishes documentation pages from blog posts.
type ContentKind string

const (
	// ContentDocument is a documentation page.
	ContentDocument ContentKind = "document"

	// ContentBlog is a blog post.
	ContentBlog ContentKind = "blog"

	// ContentUnknown is a file that is neither.
	ContentUnknown ContentKind = ""
)

// ContentItem is the normalised projection of one markdown file.
// At most one item exists per (RepositoryID, FilePath).
type ContentItem struct {
	ID           string
	RepositoryID string
	Kind         ContentKind

	// FilePath is the repository-relative path of the source file.
	FilePath string

	Title       string
	Slug        string
	Content     string
	Excerpt     string
	Description string

	// Category is the category slug the item belongs to.
	Category string

	Tags []string

	// Author is the raw author reference from frontmatter.
	Author string

	// AuthorID links to a synced Author when the reference resolves.
	AuthorID *string

	PublishedAt *time.Time
	Draft       bool
	Order       int

	Restricted      bool
	RestrictedRoles []string

	// SourceHash is the SHA-256 of the raw file content.
	// It is the only change-detection signal.
	SourceHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Author is a content author profile, keyed by email.
type Author struct {
	ID        string
	Email     string
	Name      string
	Bio       string
	AvatarURL string
	Role      string
	Links     map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}
