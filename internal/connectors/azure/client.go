package azure

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRate is the sustained request rate. Azure DevOps throttles on
	// consumed resources rather than request counts; this keeps one sync
	// well below the per-user budget.
	DefaultRate = 10

	// DefaultBurst is the token bucket size.
	DefaultBurst = 20

	// maxErrorBody caps how much of an error body is kept in APIError.
	maxErrorBody = 1024
)

// ClientOptions customise the HTTP plumbing of a Client.
type ClientOptions struct {
	// Transport is the round tripper used for requests. Nil uses
	// http.DefaultTransport.
	Transport http.RoundTripper

	// Limiter replaces the default token bucket.
	Limiter *rate.Limiter
}

// Client is a minimal Azure DevOps Git REST client bound to one repository.
type Client struct {
	cfg        *Config
	auth       string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client authenticated with a personal access token.
func NewClient(cfg *Config, pat string, opts ClientOptions) *Client {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(DefaultRate), DefaultBurst)
	}
	return &Client{
		cfg:        cfg,
		auth:       "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+pat)),
		httpClient: &http.Client{Transport: opts.Transport, Timeout: DefaultTimeout},
		limiter:    limiter,
	}
}

// ListItems returns every object under the scope path of the configured
// branch.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	q := c.versionQuery()
	q.Set("scopePath", c.cfg.ScopePath())
	q.Set("recursionLevel", "Full")

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	var resp ItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse items response: %w", err)
	}
	return resp.Value, nil
}

// GetItemContent returns the raw bytes of the file at path.
func (c *Client) GetItemContent(ctx context.Context, path string) ([]byte, error) {
	q := c.versionQuery()
	q.Set("path", path)
	q.Set("$format", "octetStream")
	q.Set("download", "false")

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", path, err)
	}
	return body, nil
}

func (c *Client) itemsURL() string {
	return fmt.Sprintf("%s/%s/%s/_apis/git/repositories/%s/items",
		c.cfg.BaseURL,
		url.PathEscape(c.cfg.Organization),
		url.PathEscape(c.cfg.Project),
		url.PathEscape(c.cfg.Repo),
	)
}

func (c *Client) versionQuery() url.Values {
	q := url.Values{}
	q.Set("versionDescriptor.version", c.cfg.Branch)
	q.Set("versionDescriptor.versionType", "branch")
	q.Set("api-version", APIVersion)
	return q
}

// get performs an authenticated GET against the items endpoint.
func (c *Client) get(ctx context.Context, q url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	urlStr := c.itemsURL() + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: retryAfter(resp)}
	}
	// 203 is how an unauthenticated request is redirected to the sign-in page.
	if resp.StatusCode >= 300 || resp.StatusCode == http.StatusNonAuthoritativeInfo {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
			URL:        req.URL.Redacted(),
		}
	}
	return body, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	return time.Minute
}

func errorMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return string(body)
}
