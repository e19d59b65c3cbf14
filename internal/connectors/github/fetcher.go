package github

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/docsync/internal/connectors"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Verify interface compliance.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher reads one branch of a GitHub repository.
type Fetcher struct {
	cfg    *Config
	client *Client
	log    zerolog.Logger

	mu      sync.Mutex
	entries []connectors.Entry
}

// NewFetcher creates a fetcher. transport may be nil.
func NewFetcher(ctx context.Context, cfg *Config, token string, transport http.RoundTripper) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := NewClient(ctx, token, ClientOptions{BaseURL: cfg.BaseURL, Transport: transport})
	if err != nil {
		return nil, err
	}
	return NewFetcherWithClient(cfg, client), nil
}

// NewFetcherWithClient creates a fetcher around an existing client.
func NewFetcherWithClient(cfg *Config, client *Client) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		client: client,
		log:    logger.With("repository", cfg.Slug).With().Str("connector", "github").Logger(),
	}
}

// Fetch returns the documents and API specs of the configured branch.
func (f *Fetcher) Fetch(ctx context.Context) (*domain.FetchResult, error) {
	entries, err := f.listTree(ctx)
	if err != nil {
		return nil, err
	}
	return connectors.Collect(ctx, entries, f.cfg.BasePath, f.readBlob, f.log)
}

// ListImages returns the images of the configured branch.
func (f *Fetcher) ListImages(ctx context.Context) ([]domain.ImageRef, error) {
	entries, err := f.listTree(ctx)
	if err != nil {
		return nil, err
	}
	return connectors.Images(entries, f.cfg.BasePath), nil
}

// DownloadImage reads an image blob by SHA.
func (f *Fetcher) DownloadImage(ctx context.Context, ref domain.ImageRef) ([]byte, error) {
	if ref.SHA == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingSHA, ref.Path)
	}
	ctx, cancel := context.WithTimeout(ctx, connectors.FileTimeout)
	defer cancel()
	return f.client.GetBlobContent(ctx, f.cfg.Owner, f.cfg.Repo, ref.SHA)
}

// Close releases resources.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	f.entries = nil
	f.mu.Unlock()
	return nil
}

// listTree lists the branch once per fetcher; images and documents share it.
func (f *Fetcher) listTree(ctx context.Context) ([]connectors.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.entries != nil {
		return f.entries, nil
	}

	listCtx, cancel := context.WithTimeout(ctx, connectors.ListTimeout)
	defer cancel()

	tree, err := f.client.GetTree(listCtx, f.cfg.Owner, f.cfg.Repo, f.cfg.Branch)
	if err != nil {
		return nil, fmt.Errorf("list %s@%s: %w", f.cfg.FullName(), f.cfg.Branch, err)
	}
	if tree.GetTruncated() {
		// The listing is incomplete; reconciling it would delete content.
		return nil, fmt.Errorf("list %s@%s: %w", f.cfg.FullName(), f.cfg.Branch, ErrTreeTruncated)
	}

	entries := make([]connectors.Entry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		if e.GetType() != "blob" {
			continue
		}
		entries = append(entries, connectors.Entry{
			Path: e.GetPath(),
			SHA:  e.GetSHA(),
			Size: int64(e.GetSize()),
		})
	}

	f.log.Debug().Int("entries", len(entries)).Msg("listed repository tree")
	f.entries = entries
	return entries, nil
}

func (f *Fetcher) readBlob(ctx context.Context, e connectors.Entry) ([]byte, error) {
	return f.client.GetBlobContent(ctx, f.cfg.Owner, f.cfg.Repo, e.SHA)
}
