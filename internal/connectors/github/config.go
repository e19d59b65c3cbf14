package github

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// DefaultBranch is used when a repository has no branch configured.
const DefaultBranch = "main"

// Config holds the parsed configuration for a GitHub repository.
type Config struct {
	// Owner is the user or organisation that owns the repository.
	Owner string

	// Repo is the repository name.
	Repo string

	// Branch is the ref that is synced. Default: main.
	Branch string

	// BasePath restricts the sync to a subtree. Empty means the whole tree.
	BasePath string

	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string

	// Slug identifies the repository in log output.
	Slug string
}

// ConfigFromRepository builds a Config from a stored repository.
func ConfigFromRepository(repo domain.Repository) (*Config, error) {
	if repo.Kind != domain.RepositoryGitHub {
		return nil, fmt.Errorf("%w: %s is not a github repository", domain.ErrUnsupportedType, repo.Slug)
	}

	cfg := &Config{
		Owner:    strings.TrimSpace(repo.Owner),
		Repo:     strings.TrimSpace(repo.Repo),
		Branch:   strings.TrimSpace(repo.Branch),
		BasePath: strings.Trim(strings.TrimSpace(repo.BasePath), "/"),
		BaseURL:  strings.TrimSpace(repo.BaseURL),
		Slug:     repo.Slug,
	}
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required fields.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("%w: github owner is required", domain.ErrInvalidInput)
	}
	if c.Repo == "" {
		return fmt.Errorf("%w: github repository name is required", domain.ErrInvalidInput)
	}
	return nil
}

// FullName returns owner/repo.
func (c *Config) FullName() string {
	return c.Owner + "/" + c.Repo
}
