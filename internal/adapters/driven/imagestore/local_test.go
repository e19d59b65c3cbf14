package imagestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func TestFileSystem_WriteAndRemove(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileSystem(root)
	require.NoError(t, err)
	ctx := context.Background()

	p, err := s.Write(ctx, "img/acme-docs/docs/img/a.png", []byte("PNG"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "img", "acme-docs", "docs", "img", "a.png"), p)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "PNG", string(data))

	// Overwrite in place.
	_, err = s.Write(ctx, "img/acme-docs/docs/img/a.png", []byte("PNG2"))
	require.NoError(t, err)
	data, _ = os.ReadFile(p)
	assert.Equal(t, "PNG2", string(data))

	require.NoError(t, s.Remove(ctx, "img/acme-docs/docs/img/a.png"))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	// Removing again is fine.
	assert.NoError(t, s.Remove(ctx, "img/acme-docs/docs/img/a.png"))
}

func TestFileSystem_RejectsEscape(t *testing.T) {
	s, err := NewFileSystem(t.TempDir())
	require.NoError(t, err)

	_, err = s.Write(context.Background(), "../outside.png", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Write(context.Background(), "img/../../outside.png", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFileSystem_NoTempLeftovers(t *testing.T) {
	s, err := NewFileSystem(t.TempDir())
	require.NoError(t, err)

	_, err = s.Write(context.Background(), "img/x/a.png", []byte("x"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(s.Root(), "img", "x"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.png", entries[0].Name())
}
