package driving

import "github.com/siddhantttt/context-iq/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings: defaults, then the config file, then
	// environment overrides.
	Get() (*domain.Settings, error)

	// Set stores a single setting by its config key (e.g. "llm.model").
	Set(key, value string) error

	// Keys lists the recognised config keys.
	Keys() []string

	// Path returns the config file path.
	Path() string
}
