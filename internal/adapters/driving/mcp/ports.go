package mcp

import (
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Search is required.
	Search driving.SearchService

	// Repositories backs the repository resources. Optional.
	Repositories driving.RepositoryService

	// Sync backs the sync history tool and resource. Optional.
	Sync driving.SyncOrchestrator
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
