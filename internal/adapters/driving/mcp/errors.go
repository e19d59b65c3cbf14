// Package mcp provides a Model Context Protocol server over synced content.
// It lets assistants search the docs portal and inspect repository sync
// history.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
