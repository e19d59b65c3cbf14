package azure

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

const (
	// DefaultBaseURL is the Azure DevOps Services endpoint.
	DefaultBaseURL = "https://dev.azure.com"

	// DefaultBranch is used when a repository has no branch configured.
	DefaultBranch = "main"

	// APIVersion is the REST API version sent with every request.
	APIVersion = "7.1"
)

// Config holds the parsed configuration for an Azure DevOps repository.
type Config struct {
	Organization string
	Project      string
	Repo         string
	Branch       string

	// BasePath restricts the sync to a subtree. Empty means the whole tree.
	BasePath string

	// BaseURL overrides DefaultBaseURL (Azure DevOps Server, tests).
	BaseURL string

	// Slug identifies the repository in log output.
	Slug string
}

// ConfigFromRepository builds a Config from a stored repository.
// Owner holds the organisation.
func ConfigFromRepository(repo domain.Repository) (*Config, error) {
	if repo.Kind != domain.RepositoryAzure {
		return nil, fmt.Errorf("%w: %s is not an azure repository", domain.ErrUnsupportedType, repo.Slug)
	}

	cfg := &Config{
		Organization: strings.TrimSpace(repo.Owner),
		Project:      strings.TrimSpace(repo.Project),
		Repo:         strings.TrimSpace(repo.Repo),
		Branch:       strings.TrimSpace(repo.Branch),
		BasePath:     strings.Trim(strings.TrimSpace(repo.BasePath), "/"),
		BaseURL:      strings.TrimSuffix(strings.TrimSpace(repo.BaseURL), "/"),
		Slug:         repo.Slug,
	}
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required fields.
func (c *Config) Validate() error {
	switch {
	case c.Organization == "":
		return fmt.Errorf("%w: azure organisation is required", domain.ErrInvalidInput)
	case c.Project == "":
		return fmt.Errorf("%w: azure project is required", domain.ErrInvalidInput)
	case c.Repo == "":
		return fmt.Errorf("%w: azure repository name is required", domain.ErrInvalidInput)
	}
	return nil
}

// ScopePath returns the base path in the leading-slash form the items API expects.
func (c *Config) ScopePath() string {
	return "/" + c.BasePath
}
