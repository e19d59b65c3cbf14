// Package httplog provides an http.RoundTripper that logs every outbound
// request of a fetcher. It is injected into the GitHub and Azure clients
// instead of patching http.DefaultTransport.
package httplog

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Transport logs method, URL, status and latency of each request.
type Transport struct {
	// Base is the underlying round tripper. Nil uses http.DefaultTransport.
	Base http.RoundTripper

	// Log receives one event per request.
	Log zerolog.Logger

	// SlowThreshold promotes requests slower than this to warn level.
	// Zero disables the promotion.
	SlowThreshold time.Duration
}

// New wraps base with request logging.
func New(base http.RoundTripper, log zerolog.Logger) *Transport {
	return &Transport{Base: base, Log: log, SlowThreshold: 5 * time.Second}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	elapsed := time.Since(start)

	// Query strings may carry tokens; Redacted only hides userinfo.
	target := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	if err != nil {
		t.Log.Warn().Err(err).
			Str("method", req.Method).
			Str("url", target).
			Dur("elapsed", elapsed).
			Msg("http request failed")
		return nil, err
	}

	var ev *zerolog.Event
	switch {
	case resp.StatusCode >= 500:
		ev = t.Log.Warn()
	case t.SlowThreshold > 0 && elapsed > t.SlowThreshold:
		ev = t.Log.Warn().Bool("slow", true)
	default:
		ev = t.Log.Debug()
	}
	ev.Str("method", req.Method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("http request")

	return resp, nil
}
