package connectors

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_SelectsAndSkips(t *testing.T) {
	entries := []Entry{
		{Path: "site/docs/intro.md", SHA: "a"},
		{Path: "site/docs/broken.md", SHA: "b"},
		{Path: "site/docs/_meta.json", SHA: "c"},
		{Path: "site/api-specs/payments/create-order.yaml", SHA: "d"},
		{Path: "site/api-specs/foo.yaml", SHA: "e"},
		{Path: "site/docs/logo.png", SHA: "f"},
		{Path: "other/docs/outside.md", SHA: "g"},
	}
	var read []string
	reader := func(_ context.Context, e Entry) ([]byte, error) {
		read = append(read, e.Path)
		if e.SHA == "b" {
			return nil, errors.New("boom")
		}
		return []byte("content " + e.SHA), nil
	}

	result, err := Collect(context.Background(), entries, "site", reader, zerolog.Nop())
	require.NoError(t, err)

	require.Len(t, result.Documents, 2)
	assert.Equal(t, "site/docs/intro.md", result.Documents[0].Path)
	assert.Equal(t, "content a", result.Documents[0].Content)
	assert.Equal(t, "site/docs/_meta.json", result.Documents[1].Path)

	require.Len(t, result.APISpecs, 1)
	assert.Equal(t, "site/api-specs/payments/create-order.yaml", result.APISpecs[0].Path)

	assert.Equal(t, []string{"site/docs/broken.md"}, result.Unreadable)

	assert.NotContains(t, read, "site/docs/logo.png")
	assert.NotContains(t, read, "other/docs/outside.md")
	assert.NotContains(t, read, "site/api-specs/foo.yaml")
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, []Entry{{Path: "docs/a.md"}}, "", func(context.Context, Entry) ([]byte, error) {
		return []byte("x"), nil
	}, zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollect_ReadHasDeadline(t *testing.T) {
	_, err := Collect(context.Background(), []Entry{{Path: "docs/a.md"}}, "", func(ctx context.Context, _ Entry) ([]byte, error) {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return []byte("x"), nil
	}, zerolog.Nop())
	require.NoError(t, err)
}

func TestImages(t *testing.T) {
	entries := []Entry{
		{Path: "/docs/img/a.png", SHA: "1", Size: 10},
		{Path: "docs/intro.md", SHA: "2"},
		{Path: "assets/b.png", SHA: "3"},
	}
	refs := Images(entries, "")
	require.Len(t, refs, 1)
	assert.Equal(t, "docs/img/a.png", refs[0].Path)
	assert.Equal(t, "1", refs[0].SHA)
	assert.Equal(t, int64(10), refs[0].Size)
}
