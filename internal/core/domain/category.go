package domain

import (
	"strings"
	"time"
)

// CategoryMetadata is one node of the documentation category tree.
type CategoryMetadata struct {
	ID           string
	RepositoryID string

	// Slug is the path-like identifier, e.g. "guides/setup".
	Slug string

	Title       string
	Icon        string
	Description string

	// ParentSlug is nil for root nodes.
	ParentSlug *string

	// Level is the depth of the node; it equals the number of slug segments minus one.
	Level int

	// Order is the position among siblings.
	Order int

	// SourcePath is the _meta.json file that defined the node.
	SourcePath string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryPrefixes returns every segment-wise prefix of a slash-separated path,
// shortest first: "a/b/c" gives "a", "a/b", "a/b/c".
func CategoryPrefixes(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	prefixes := make([]string, 0, len(parts))
	for i := range parts {
		prefixes = append(prefixes, strings.Join(parts[:i+1], "/"))
	}
	return prefixes
}
