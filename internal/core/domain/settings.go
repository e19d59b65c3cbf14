package domain

import (
	"fmt"
	"net/url"
	"time"
)

// Settings is the typed application configuration.
type Settings struct {
	// DataDir holds the SQLite database.
	DataDir string

	// ImageDir is the root of the local image mirror.
	ImageDir string

	// EncryptionKey protects repository tokens at rest.
	EncryptionKey string

	Log       LogSettings
	Scheduler SchedulerConfig
	Search    SearchSettings
	Storage   ImageStorageSettings
	Webhooks  []WebhookSettings

	// Teams seeds the team registry on startup and on config reload.
	Teams []Team
}

// LogSettings configures process logging.
type LogSettings struct {
	Verbose    bool
	JSON       bool
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// SearchSettings configures the query side of search.
type SearchSettings struct {
	// DefaultLimit is used when a query sets no limit.
	DefaultLimit int

	// CacheSize is the number of cached result sets. Zero disables caching.
	CacheSize int

	// CacheTTL bounds how long a cached result set is served.
	CacheTTL time.Duration
}

// ImageStorageSettings selects where mirrored images are written.
// Images go to ImageDir unless an S3 bucket is configured.
type ImageStorageSettings struct {
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string
}

// UsesS3 reports whether images are written to an S3 bucket.
func (s ImageStorageSettings) UsesS3() bool {
	return s.S3Bucket != ""
}

// WebhookSettings configures one outbound webhook channel.
type WebhookSettings struct {
	Name   string
	URL    string
	Secret string

	// Events filters the delivered event types. Empty means all.
	Events []string

	// Teams filters release notifications by team. Empty means all.
	Teams []string
}

// DefaultSettings returns settings with sensible defaults.
// Directories are left empty and resolved by the adapters.
func DefaultSettings() Settings {
	return Settings{
		Log: LogSettings{
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Scheduler: DefaultSchedulerConfig(),
		Search: SearchSettings{
			DefaultLimit: 20,
			CacheSize:    512,
			CacheTTL:     5 * time.Minute,
		},
	}
}

// Validate checks the settings for obvious misconfiguration.
func (s *Settings) Validate() error {
	if s.Scheduler.TickInterval < time.Second {
		return fmt.Errorf("%w: scheduler tick interval must be at least 1s", ErrInvalidInput)
	}
	if s.Scheduler.LockTTL <= 0 {
		return fmt.Errorf("%w: scheduler lock ttl must be positive", ErrInvalidInput)
	}
	if s.Search.DefaultLimit <= 0 {
		return fmt.Errorf("%w: search default limit must be positive", ErrInvalidInput)
	}
	for _, w := range s.Webhooks {
		u, err := url.Parse(w.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: webhook %q has invalid url %q", ErrInvalidInput, w.Name, w.URL)
		}
	}
	for _, t := range s.Teams {
		if t.Slug == "" {
			return fmt.Errorf("%w: team slug is required", ErrInvalidInput)
		}
	}
	return nil
}
