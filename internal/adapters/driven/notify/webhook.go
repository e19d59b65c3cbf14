package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Verify interface compliance.
var _ driven.Notifier = (*Webhook)(nil)

const (
	// DefaultTimeout bounds one delivery attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultAttempts is the number of delivery attempts.
	DefaultAttempts = 3

	// DefaultInitialBackoff is the delay before the first retry; it doubles
	// after each failed attempt.
	DefaultInitialBackoff = time.Second

	// SignatureHeader carries the hex HMAC-SHA256 of the body when a
	// secret is configured.
	SignatureHeader = "X-Docsync-Signature"

	// EventHeader carries the event name.
	EventHeader = "X-Docsync-Event"
)

// WebhookConfig configures one webhook endpoint.
type WebhookConfig struct {
	Name string
	URL  string

	// Secret signs the body. Empty disables signing.
	Secret string

	// Events limits delivery to these event names. Empty means all.
	Events []string

	// Teams limits release events to releases naming one of these teams.
	// Empty means all teams.
	Teams []string
}

// Webhook delivers events to an HTTP endpoint.
type Webhook struct {
	cfg            WebhookConfig
	client         *http.Client
	attempts       uint
	initialBackoff time.Duration
	now            func() time.Time
	log            zerolog.Logger
}

// WebhookOption customises a Webhook.
type WebhookOption func(*Webhook)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) { w.client = c }
}

// WithRetry sets the attempt count and the first backoff delay.
func WithRetry(attempts uint, initial time.Duration) WebhookOption {
	return func(w *Webhook) {
		if attempts > 0 {
			w.attempts = attempts
		}
		if initial > 0 {
			w.initialBackoff = initial
		}
	}
}

// NewWebhook creates a webhook channel.
func NewWebhook(cfg WebhookConfig, opts ...WebhookOption) *Webhook {
	name := cfg.Name
	if name == "" {
		name = cfg.URL
	}
	w := &Webhook{
		cfg:            cfg,
		client:         &http.Client{Timeout: DefaultTimeout},
		attempts:       DefaultAttempts,
		initialBackoff: DefaultInitialBackoff,
		now:            time.Now,
		log:            logger.With("channel", "webhook:"+name),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NotifyReleasePublished posts a release.published event.
func (w *Webhook) NotifyReleasePublished(ctx context.Context, event driven.ReleaseEvent) (driven.NotifyResult, error) {
	if !w.wants(EventReleasePublished) || !w.wantsTeams(event.Release.Teams) {
		return driven.NotifyResult{}, nil
	}
	return w.deliver(ctx, releasePayload(event, w.now().UTC()))
}

// NotifyContentUpdate posts a content.updated event.
func (w *Webhook) NotifyContentUpdate(ctx context.Context, event driven.ContentUpdateEvent) (driven.NotifyResult, error) {
	if !w.wants(EventContentUpdated) || len(event.Changes) == 0 {
		return driven.NotifyResult{}, nil
	}
	return w.deliver(ctx, contentPayload(event, w.now().UTC()))
}

func (w *Webhook) wants(event string) bool {
	return len(w.cfg.Events) == 0 || slices.Contains(w.cfg.Events, event)
}

func (w *Webhook) wantsTeams(teams []string) bool {
	if len(w.cfg.Teams) == 0 {
		return true
	}
	for _, t := range teams {
		if slices.Contains(w.cfg.Teams, t) {
			return true
		}
	}
	return false
}

func (w *Webhook) deliver(ctx context.Context, payload Payload) (driven.NotifyResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return driven.NotifyResult{Failed: 1}, fmt.Errorf("marshal payload: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.initialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, w.post(ctx, payload.Event, body)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(w.attempts))

	if err != nil {
		w.log.Error().Err(err).Str("event", payload.Event).Int("attempts", attempt).Msg("webhook delivery failed")
		return driven.NotifyResult{Failed: 1}, fmt.Errorf("deliver %s to %s: %w", payload.Event, w.cfg.URL, err)
	}

	w.log.Debug().Str("event", payload.Event).Int("attempts", attempt).Msg("webhook delivered")
	return driven.NotifyResult{Sent: 1}, nil
}

// post performs one attempt. Client errors (4xx) are permanent.
func (w *Webhook) post(ctx context.Context, event string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "docsync-webhook")
	req.Header.Set(EventHeader, event)
	if w.cfg.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(w.cfg.Secret, body))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return backoff.Permanent(fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	default:
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
}

// Sign returns the hex HMAC-SHA256 of body, prefixed with "sha256=".
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
