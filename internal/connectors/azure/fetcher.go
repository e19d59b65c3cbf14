package azure

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

// Fetcher reads one branch of an Azure DevOps repository.
type Fetcher struct {
	cfg    *Config
	client *Client
	log    zerolog.Logger

	mu      sync.Mutex
	entries []connectors.Entry
}

// NewFetcher creates a fetcher. transport may be nil.
func NewFetcher(cfg *Config, pat string, transport http.RoundTripper) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewFetcherWithClient(cfg, NewClient(cfg, pat, ClientOptions{Transport: transport})), nil
}

// NewFetcherWithClient creates a fetcher around an existing client.
func NewFetcherWithClient(cfg *Config, client *Client) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		client: client,
		log:    logger.With("repository", cfg.Slug).With().Str("connector", "azure").Logger(),
	}
}

// Fetch returns the documents and API specs of the configured branch.
func (f *Fetcher) Fetch(ctx context.Context) (*domain.FetchResult, error) {
	entries, err := f.listItems(ctx)
	if err != nil {
		return nil, err
	}
	return connectors.Collect(ctx, entries, f.cfg.BasePath, f.readItem, f.log)
}

// ListImages returns the images of the configured branch.
func (f *Fetcher) ListImages(ctx context.Context) ([]domain.ImageRef, error) {
	entries, err := f.listItems(ctx)
	if err != nil {
		return nil, err
	}
	return connectors.Images(entries, f.cfg.BasePath), nil
}

// DownloadImage reads an image by path.
func (f *Fetcher) DownloadImage(ctx context.Context, ref domain.ImageRef) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, connectors.FileTimeout)
	defer cancel()
	return f.client.GetItemContent(ctx, "/"+connectors.NormalizePath(ref.Path))
}

// Close releases resources.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	f.entries = nil
	f.mu.Unlock()
	return nil
}

func (f *Fetcher) listItems(ctx context.Context) ([]connectors.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.entries != nil {
		return f.entries, nil
	}

	listCtx, cancel := context.WithTimeout(ctx, connectors.ListTimeout)
	defer cancel()

	items, err := f.client.ListItems(listCtx)
	if err != nil {
		return nil, fmt.Errorf("list %s/%s/%s@%s: %w",
			f.cfg.Organization, f.cfg.Project, f.cfg.Repo, f.cfg.Branch, err)
	}

	entries := make([]connectors.Entry, 0, len(items))
	for _, it := range items {
		if it.IsFolder || (it.GitObjectType != "" && it.GitObjectType != "blob") {
			continue
		}
		// Paths come back as /docs/intro.md.
		entries = append(entries, connectors.Entry{
			Path: connectors.NormalizePath(it.Path),
			SHA:  it.ObjectID,
			Size: it.Size,
		})
	}

	f.log.Debug().Int("entries", len(entries)).Msg("listed repository items")
	f.entries = entries
	return entries, nil
}

func (f *Fetcher) readItem(ctx context.Context, e connectors.Entry) ([]byte, error) {
	return f.client.GetItemContent(ctx, "/"+e.Path)
}
