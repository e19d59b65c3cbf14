package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/custodia-labs/docsync/internal/connectors/azure"
	"github.com/custodia-labs/docsync/internal/connectors/github"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Ensure FetcherRegistry implements the interface.
var _ driven.FetcherFactory = (*FetcherRegistry)(nil)

// FetcherRegistry creates source fetchers for repositories. Stored tokens
// are decrypted only while a fetcher is built.
type FetcherRegistry struct {
	cipher driven.CredentialCipher

	mu       sync.RWMutex
	builders map[domain.RepositoryKind]driven.FetcherBuilder
}

// NewFetcherRegistry creates an empty registry.
func NewFetcherRegistry(cipher driven.CredentialCipher) *FetcherRegistry {
	return &FetcherRegistry{
		cipher:   cipher,
		builders: make(map[domain.RepositoryKind]driven.FetcherBuilder),
	}
}

// NewBuiltinFetcherRegistry registers the GitHub and Azure DevOps fetchers.
// transport is shared by every fetcher; nil means http.DefaultTransport.
func NewBuiltinFetcherRegistry(ctx context.Context, cipher driven.CredentialCipher, transport http.RoundTripper) *FetcherRegistry {
	r := NewFetcherRegistry(cipher)
	r.Register(domain.RepositoryGitHub, func(repo domain.Repository, token string) (driven.Fetcher, error) {
		cfg, err := github.ConfigFromRepository(repo)
		if err != nil {
			return nil, err
		}
		return github.NewFetcher(ctx, cfg, token, transport)
	})
	r.Register(domain.RepositoryAzure, func(repo domain.Repository, token string) (driven.Fetcher, error) {
		cfg, err := azure.ConfigFromRepository(repo)
		if err != nil {
			return nil, err
		}
		return azure.NewFetcher(cfg, token, transport)
	})
	return r
}

// Register adds or replaces the builder for a kind.
func (r *FetcherRegistry) Register(kind domain.RepositoryKind, builder driven.FetcherBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[kind] = builder
}

// SupportedKinds returns the registered kinds in name order.
func (r *FetcherRegistry) SupportedKinds() []domain.RepositoryKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]domain.RepositoryKind, 0, len(r.builders))
	for k := range r.builders {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Create decrypts the repository token and builds its fetcher.
// A repository without a token is fetched anonymously.
func (r *FetcherRegistry) Create(_ context.Context, repo domain.Repository) (driven.Fetcher, error) {
	r.mu.RLock()
	builder, ok := r.builders[repo.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, repo.Kind)
	}

	var token string
	if repo.EncryptedToken != "" {
		if r.cipher == nil {
			return nil, fmt.Errorf("%w: no cipher configured", domain.ErrDecryptionFailed)
		}
		plain, err := r.cipher.Decrypt(repo.EncryptedToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrDecryptionFailed, err)
		}
		token = plain
	}

	fetcher, err := builder(repo, token)
	if err != nil {
		return nil, fmt.Errorf("create %s fetcher: %w", repo.Kind, err)
	}
	return fetcher, nil
}
