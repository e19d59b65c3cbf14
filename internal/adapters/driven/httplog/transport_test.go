package httplog

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestTransport_LogsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	client := &http.Client{Transport: New(nil, zerolog.New(&buf))}

	resp, err := client.Get(srv.URL + "/items?token=secret")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.Equal(t, srv.URL+"/items", line["url"])
	assert.NotContains(t, buf.String(), "secret")
}

func TestTransport_ServerErrorIsWarn(t *testing.T) {
	var buf bytes.Buffer
	tr := New(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 502, Body: http.NoBody, Request: r}, nil
	}), zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodGet, "https://api.example.com/x", nil)
	_, err := tr.RoundTrip(req)
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), `"level":"warn"`))
}

func TestTransport_PropagatesError(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("dial failed")
	tr := New(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	}), zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodGet, "https://api.example.com/x", nil)
	_, err := tr.RoundTrip(req)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "http request failed")
}
