package azure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func TestConfigFromRepository(t *testing.T) {
	cfg, err := ConfigFromRepository(domain.Repository{
		Kind:     domain.RepositoryAzure,
		Owner:    "acme",
		Project:  "Platform",
		Repo:     "docs",
		BasePath: "/site/",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultBranch, cfg.Branch)
	assert.Equal(t, "/site", cfg.ScopePath())
}

func TestConfigFromRepository_EmptyBasePath(t *testing.T) {
	cfg, err := ConfigFromRepository(domain.Repository{
		Kind: domain.RepositoryAzure, Owner: "acme", Project: "p", Repo: "r",
		BaseURL: "https://tfs.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "/", cfg.ScopePath())
	assert.Equal(t, "https://tfs.example.com", cfg.BaseURL)
}

func TestConfigFromRepository_Invalid(t *testing.T) {
	_, err := ConfigFromRepository(domain.Repository{Kind: domain.RepositoryGitHub})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = ConfigFromRepository(domain.Repository{Kind: domain.RepositoryAzure, Owner: "acme", Repo: "r"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
