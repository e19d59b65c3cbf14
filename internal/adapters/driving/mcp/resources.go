package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "docsync://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Repositories != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "repositories",
			Name:        "repositories",
			Description: "Configured content repositories and their last sync state",
			MIMEType:    "application/json",
		}, s.handleRepositoriesResource)
	}

	if s.ports.Sync != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "repositories/{repositoryId}/history",
			Name:        "repository-history",
			Description: "Recent sync runs of a repository",
			MIMEType:    "application/json",
		}, s.handleHistoryResource)
	}
}

type repositoryInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Kind           string `json:"kind"`
	Location       string `json:"location"`
	Enabled        bool   `json:"enabled"`
	SyncFrequency  string `json:"sync_frequency,omitempty"`
	LastSyncStatus string `json:"last_sync_status,omitempty"`
	LastSyncError  string `json:"last_sync_error,omitempty"`
}

// handleRepositoriesResource lists repositories. Tokens are never exposed.
func (s *Server) handleRepositoriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	repos, err := s.ports.Repositories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	infos := make([]repositoryInfo, len(repos))
	for i := range repos {
		r := &repos[i]
		freq := ""
		if r.SyncFrequency > 0 {
			freq = r.SyncFrequency.String()
		}
		infos[i] = repositoryInfo{
			ID:             r.ID,
			Name:           r.Name,
			Slug:           r.Slug,
			Kind:           string(r.Kind),
			Location:       r.DisplayName(),
			Enabled:        r.Enabled,
			SyncFrequency:  freq,
			LastSyncStatus: string(r.LastSyncStatus),
			LastSyncError:  r.LastSyncError,
		}
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractRepositoryID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	logs, err := s.ports.Sync.History(ctx, id, defaultHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return jsonResource(req.Params.URI, syncRuns(logs))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRepositoryID extracts the ID from docsync://repositories/{id}/history.
func extractRepositoryID(uri string) string {
	const prefix = uriScheme + "repositories/"
	const suffix = "/history"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
