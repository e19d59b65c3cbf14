package domain

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// RepositoryIDs filters to specific repositories.
	RepositoryIDs []string

	// Kind filters to documents or blog posts. Empty means both.
	Kind ContentKind
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// Item is the matched content item.
	Item ContentItem

	// Score is the relevance score (lower is better for FTS5 bm25).
	Score float64

	// Snippet is a highlighted excerpt around the match.
	Snippet string
}
