package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyDataDir       = "data_dir"
	KeyImageDir      = "image_dir"
	KeyEncryptionKey = "encryption_key"

	KeyLogVerbose    = "log.verbose"
	KeyLogJSON       = "log.json"
	KeyLogFile       = "log.file"
	KeyLogMaxSizeMB  = "log.max_size_mb"
	KeyLogMaxBackups = "log.max_backups"

	KeySchedulerEnabled = "scheduler.enabled"
	KeySchedulerTick    = "scheduler.tick_interval"
	KeySchedulerLockTTL = "scheduler.lock_ttl"

	KeySearchLimit     = "search.default_limit"
	KeySearchCacheSize = "search.cache_size"
	KeySearchCacheTTL  = "search.cache_ttl"

	KeyS3Endpoint  = "storage.s3_endpoint"
	KeyS3Region    = "storage.s3_region"
	KeyS3Bucket    = "storage.s3_bucket"
	KeyS3AccessKey = "storage.s3_access_key"
	KeyS3SecretKey = "storage.s3_secret_key"
	KeyS3Prefix    = "storage.s3_prefix"

	KeyWebhooks = "webhooks"
	KeyTeams    = "teams"
)

// SettingsService maps the key/value configuration onto domain.Settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		DataDir:       s.configStore.GetString(KeyDataDir),
		ImageDir:      s.configStore.GetString(KeyImageDir),
		EncryptionKey: s.configStore.GetString(KeyEncryptionKey),
		Log: domain.LogSettings{
			Verbose:    s.getBool(KeyLogVerbose, defaults.Log.Verbose),
			JSON:       s.getBool(KeyLogJSON, defaults.Log.JSON),
			File:       s.configStore.GetString(KeyLogFile),
			MaxSizeMB:  s.getInt(KeyLogMaxSizeMB, defaults.Log.MaxSizeMB),
			MaxBackups: s.getInt(KeyLogMaxBackups, defaults.Log.MaxBackups),
		},
		Scheduler: domain.SchedulerConfig{
			Enabled:      s.getBool(KeySchedulerEnabled, defaults.Scheduler.Enabled),
			TickInterval: s.getDuration(KeySchedulerTick, defaults.Scheduler.TickInterval),
			LockTTL:      s.getDuration(KeySchedulerLockTTL, defaults.Scheduler.LockTTL),
		},
		Search: domain.SearchSettings{
			DefaultLimit: s.getInt(KeySearchLimit, defaults.Search.DefaultLimit),
			CacheSize:    s.getInt(KeySearchCacheSize, defaults.Search.CacheSize),
			CacheTTL:     s.getDuration(KeySearchCacheTTL, defaults.Search.CacheTTL),
		},
		Storage: domain.ImageStorageSettings{
			S3Endpoint:  s.configStore.GetString(KeyS3Endpoint),
			S3Region:    s.configStore.GetString(KeyS3Region),
			S3Bucket:    s.configStore.GetString(KeyS3Bucket),
			S3AccessKey: s.configStore.GetString(KeyS3AccessKey),
			S3SecretKey: s.configStore.GetString(KeyS3SecretKey),
			S3Prefix:    s.configStore.GetString(KeyS3Prefix),
		},
		Webhooks: s.getWebhooks(),
		Teams:    s.getTeams(),
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set updates a single configuration key and persists it.
func (s *SettingsService) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func (s *SettingsService) getBool(key string, def bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getInt(key string, def int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetInt(key)
}

// getDuration accepts a Go duration string or a number of seconds.
func (s *SettingsService) getDuration(key string, def time.Duration) time.Duration {
	v, ok := s.configStore.Get(key)
	if !ok {
		return def
	}
	switch val := v.(type) {
	case int:
		return time.Duration(val) * time.Second
	case int64:
		return time.Duration(val) * time.Second
	case float64:
		return time.Duration(val * float64(time.Second))
	case string:
		val = strings.TrimSpace(val)
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if n, err := strconv.Atoi(val); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

func (s *SettingsService) getWebhooks() []domain.WebhookSettings {
	var hooks []domain.WebhookSettings
	for _, t := range s.tables(KeyWebhooks) {
		hooks = append(hooks, domain.WebhookSettings{
			Name:   tableString(t, "name"),
			URL:    tableString(t, "url"),
			Secret: tableString(t, "secret"),
			Events: tableStrings(t, "events"),
			Teams:  tableStrings(t, "teams"),
		})
	}
	return hooks
}

func (s *SettingsService) getTeams() []domain.Team {
	var teams []domain.Team
	for _, t := range s.tables(KeyTeams) {
		enabled := true
		if v, ok := t["enabled"].(bool); ok {
			enabled = v
		}
		slug := strings.ToLower(tableString(t, "slug"))
		name := tableString(t, "name")
		if name == "" {
			name = slug
		}
		teams = append(teams, domain.Team{Slug: slug, Name: name, Enabled: enabled})
	}
	return teams
}

// tables returns an array of tables stored under key.
func (s *SettingsService) tables(key string) []map[string]any {
	v, ok := s.configStore.Get(key)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case []map[string]any:
		return val
	case []any:
		out := make([]map[string]any, 0, len(val))
		for _, item := range val {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func tableString(t map[string]any, key string) string {
	s, _ := t[key].(string)
	return strings.TrimSpace(s)
}

func tableStrings(t map[string]any, key string) []string {
	var out []string
	switch val := t[key].(type) {
	case []string:
		out = append(out, val...)
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case string:
		out = strings.Split(val, ",")
	}

	cleaned := out[:0]
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
