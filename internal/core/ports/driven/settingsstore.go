package driven

import "github.com/custodia-labs/docqa-cli/internal/core/domain"

// SettingsStore persists application settings between runs.
type SettingsStore interface {
	// Load reads settings from storage, returning defaults when no
	// settings have been saved yet.
	Load() (domain.AppSettings, error)

	// Save writes settings to storage.
	Save(settings domain.AppSettings) error

	// Path returns the storage location for display purposes.
	Path() string
}
