package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, time.Minute, s.Scheduler.TickInterval)
	assert.Equal(t, 20, s.Search.DefaultLimit)
	assert.False(t, s.Storage.UsesS3())
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"tick too short", func(s *Settings) { s.Scheduler.TickInterval = time.Millisecond }},
		{"no lock ttl", func(s *Settings) { s.Scheduler.LockTTL = 0 }},
		{"no search limit", func(s *Settings) { s.Search.DefaultLimit = 0 }},
		{"bad webhook url", func(s *Settings) {
			s.Webhooks = []WebhookSettings{{Name: "ops", URL: "ftp://example.com"}}
		}},
		{"relative webhook url", func(s *Settings) {
			s.Webhooks = []WebhookSettings{{Name: "ops", URL: "/hooks"}}
		}},
		{"team without slug", func(s *Settings) { s.Teams = []Team{{Name: "Core"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
		})
	}
}

func TestSettings_Validate_Webhook(t *testing.T) {
	s := DefaultSettings()
	s.Webhooks = []WebhookSettings{{Name: "ops", URL: "https://hooks.example.com/docs"}}
	assert.NoError(t, s.Validate())
}
