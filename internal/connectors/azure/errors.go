package azure

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RateLimitError is returned when Azure DevOps throttles the client.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("azure: rate limited, retry after %s", e.RetryAfter)
}

// APIError represents a non-2xx Azure DevOps response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("azure: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a missing project, repository or path.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error indicates a rejected token.
// Azure DevOps answers an invalid PAT with 401 or 203 and a sign-in page.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusNonAuthoritativeInfo)
}

// IsRateLimited checks if the error indicates throttling.
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}
