package github

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	r := NewRateLimiter()
	reset := time.Now().Add(10 * time.Minute).Unix()

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "42")
	resp.Header.Set(HeaderRateLimit, "5000")
	resp.Header.Set(HeaderRateReset, itoa(reset))
	r.UpdateFromResponse(resp)

	assert.Equal(t, 42, r.Remaining())
	assert.Equal(t, 5000, r.Limit())
	assert.Equal(t, reset, r.ResetTime().Unix())
}

func TestRateLimiter_IgnoresMalformedHeaders(t *testing.T) {
	r := NewRateLimiter()
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "lots")
	r.UpdateFromResponse(resp)
	assert.Equal(t, GitHubRateLimit, r.Remaining())

	r.UpdateFromResponse(nil)
	assert.Equal(t, GitHubRateLimit, r.Remaining())
}

func TestRateLimiter_CheckRateLimit(t *testing.T) {
	r := NewRateLimiter()

	ok := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	assert.NoError(t, r.CheckRateLimit(ok))

	tooMany := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	tooMany.Header.Set(HeaderRetryAfter, "30")
	err := r.CheckRateLimit(tooMany)
	require.Error(t, err)
	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), rle.ResetAt, 5*time.Second)

	forbidden := &http.Response{StatusCode: http.StatusForbidden, Header: http.Header{}}
	forbidden.Header.Set(HeaderRateRemaining, "10")
	assert.NoError(t, r.CheckRateLimit(forbidden))

	forbidden.Header.Set(HeaderRateRemaining, "0")
	assert.Error(t, r.CheckRateLimit(forbidden))
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiterWithRate(0, 1)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "1")
	resp.Header.Set(HeaderRateReset, itoa(time.Now().Add(time.Hour).Unix()))
	r.UpdateFromResponse(resp)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiter_WaitPassesWithQuota(t *testing.T) {
	r := NewRateLimiterWithRate(0, 1)
	assert.NoError(t, r.Wait(context.Background()))
}
