package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

const defaultHistoryLimit = 10

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query        string   `json:"query" jsonschema:"keywords to search for in documents and blog posts"`
	Limit        int      `json:"limit,omitempty" jsonschema:"maximum number of results to return"`
	Kind         string   `json:"kind,omitempty" jsonschema:"restrict to 'document' or 'blog'"`
	Repositories []string `json:"repositories,omitempty" jsonschema:"restrict to these repository IDs"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ID           string   `json:"id"`
	RepositoryID string   `json:"repository_id"`
	Kind         string   `json:"kind"`
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Path         string   `json:"path"`
	Category     string   `json:"category,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Snippet      string   `json:"snippet,omitempty"`
	Score        float64  `json:"score"`
}

// HistoryInput is the input schema for the sync_history tool.
type HistoryInput struct {
	RepositoryID string `json:"repository_id" jsonschema:"the repository to inspect"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of runs (default 10)"`
}

// HistoryOutput is the output schema for the sync_history tool.
type HistoryOutput struct {
	Runs []SyncRunOutput `json:"runs"`
}

// SyncRunOutput summarises one sync run.
type SyncRunOutput struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Added      int    `json:"added"`
	Changed    int    `json:"changed"`
	Deleted    int    `json:"deleted"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search synced documentation pages and blog posts",
	}, s.handleSearch)

	if s.ports.Sync != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "sync_history",
			Description: "Show recent sync runs of a repository, most recent first",
		}, s.handleHistory)
	}
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	kind := domain.ContentKind(input.Kind)
	if kind != domain.ContentUnknown && kind != domain.ContentDocument && kind != domain.ContentBlog {
		return nil, SearchOutput{}, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInput, input.Kind)
	}

	results, err := s.ports.Search.Search(ctx, input.Query, domain.SearchOptions{
		Limit:         input.Limit,
		Kind:          kind,
		RepositoryIDs: input.Repositories,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		item := &results[i].Item
		output.Results[i] = SearchResultOutput{
			ID:           item.ID,
			RepositoryID: item.RepositoryID,
			Kind:         string(item.Kind),
			Title:        item.Title,
			Slug:         item.Slug,
			Path:         item.FilePath,
			Category:     item.Category,
			Tags:         item.Tags,
			Snippet:      results[i].Snippet,
			Score:        results[i].Score,
		}
	}

	return nil, output, nil
}

func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	if input.RepositoryID == "" {
		return nil, HistoryOutput{}, fmt.Errorf("%w: repository_id is required", domain.ErrInvalidInput)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	logs, err := s.ports.Sync.History(ctx, input.RepositoryID, limit)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	return nil, HistoryOutput{Runs: syncRuns(logs)}, nil
}

func syncRuns(logs []domain.SyncLog) []SyncRunOutput {
	runs := make([]SyncRunOutput, len(logs))
	for i := range logs {
		l := &logs[i]
		runs[i] = SyncRunOutput{
			ID:         l.ID,
			Status:     string(l.Status),
			Added:      l.FilesAdded,
			Changed:    l.FilesChanged,
			Deleted:    l.FilesDeleted,
			Error:      l.Error,
			StartedAt:  l.StartedAt.UTC().Format(time.RFC3339),
			DurationMS: l.Duration.Milliseconds(),
		}
	}
	return runs
}
