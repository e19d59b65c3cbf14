// Package imagestore writes mirrored repository images.
//
// Two backends implement driven.ImageStorage: FileSystem writes under a
// public directory served by the portal, S3 uploads to an S3-compatible
// bucket. Both key objects by the stable img/<repositorySlug>/<path>
// convention the image syncer computes.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ImageStorage = (*FileSystem)(nil)

// FileSystem stores images below a root directory.
type FileSystem struct {
	root string
}

// NewFileSystem creates a store rooted at dir, creating it if needed.
func NewFileSystem(dir string) (*FileSystem, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image root: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve image root: %w", err)
	}
	return &FileSystem{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *FileSystem) Root() string {
	return s.root
}

// Write stores data at relPath atomically and returns the absolute path.
func (s *FileSystem) Write(ctx context.Context, relPath string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".img-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("chmod image: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename image: %w", err)
	}
	return target, nil
}

// Remove deletes the file at relPath. A missing file is not an error.
func (s *FileSystem) Remove(ctx context.Context, relPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// resolve maps relPath into the root and rejects escapes.
func (s *FileSystem) resolve(relPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(relPath, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: image path %q", domain.ErrInvalidInput, relPath)
	}
	return filepath.Join(s.root, clean), nil
}
