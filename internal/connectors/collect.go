package connectors

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

const (
	// FileTimeout bounds every single file read.
	FileTimeout = 20 * time.Second

	// ListTimeout bounds the repository listing call.
	ListTimeout = 60 * time.Second
)

// Entry is one file of a repository listing.
type Entry struct {
	Path string
	SHA  string
	Size int64
}

// ReadFunc reads the content of one listed file.
type ReadFunc func(ctx context.Context, e Entry) ([]byte, error)

// Collect selects the documents and API specs under basePath and reads
// them with read. A file that cannot be read is logged and listed in
// Unreadable; only context cancellation stops the loop.
func Collect(
	ctx context.Context, entries []Entry, basePath string, read ReadFunc, log zerolog.Logger,
) (*domain.FetchResult, error) {
	result := &domain.FetchResult{}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := NormalizePath(e.Path)
		if !InScope(p, basePath) {
			continue
		}
		class := Classify(p)
		if !class.IsDocumentClass() && class != FileAPISpec {
			continue
		}

		content, err := readWithTimeout(ctx, e, read)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Str("path", p).Msg("skipping unreadable file")
			result.Unreadable = append(result.Unreadable, p)
			continue
		}

		file := domain.SourceFile{Path: p, Content: string(content)}
		if class == FileAPISpec {
			result.APISpecs = append(result.APISpecs, file)
		} else {
			result.Documents = append(result.Documents, file)
		}
	}

	log.Debug().
		Int("documents", len(result.Documents)).
		Int("api_specs", len(result.APISpecs)).
		Int("unreadable", len(result.Unreadable)).
		Msg("fetched repository files")
	return result, nil
}

// Images returns the image entries under basePath.
func Images(entries []Entry, basePath string) []domain.ImageRef {
	var refs []domain.ImageRef
	for _, e := range entries {
		p := NormalizePath(e.Path)
		if !InScope(p, basePath) || Classify(p) != FileImage {
			continue
		}
		refs = append(refs, domain.ImageRef{Path: p, SHA: e.SHA, Size: e.Size})
	}
	return refs
}

func readWithTimeout(ctx context.Context, e Entry, read ReadFunc) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, FileTimeout)
	defer cancel()
	return read(ctx, e)
}
