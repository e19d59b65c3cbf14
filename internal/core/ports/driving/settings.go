package driving

import "github.com/custodia-labs/docsync/internal/core/domain"

// SettingsService reads and updates application settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	// Returns domain.ErrInvalidInput when the configuration is invalid.
	Get() (*domain.Settings, error)

	// Set updates a single configuration key and persists it.
	Set(key string, value any) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
