package mcp

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil search service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("search only creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("all ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search:       &mockSearchService{},
			Repositories: &mockRepositoryService{},
			Sync:         &mockSyncOrchestrator{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestInstructions(t *testing.T) {
	searchOnly := instructions(&Ports{Search: &mockSearchService{}})
	assert.Contains(t, searchOnly, "search tool")
	assert.NotContains(t, searchOnly, "sync_history")
	assert.NotContains(t, searchOnly, "docsync://repositories")

	full := instructions(&Ports{
		Search:       &mockSearchService{},
		Repositories: &mockRepositoryService{},
		Sync:         &mockSyncOrchestrator{},
	})
	assert.Contains(t, full, "docsync://repositories")
	assert.Contains(t, full, "sync_history")
}

func TestServer_RunHTTP(t *testing.T) {
	t.Run("bind failure is returned", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)
		err = server.RunHTTP(context.Background(), ln.Addr().String())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listen on")
	})

	t.Run("stops cleanly on cancel", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- server.serve(ctx, ln) }()

		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		require.NoError(t, err)
		resp.Body.Close()

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})
}
