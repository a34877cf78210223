// Package file provides file-based configuration adapters.
//
// SettingsStore persists application settings as TOML at
// ~/.docqa/config.toml. PromptStore loads LLM prompt templates from
// user-editable files under ~/.docqa/prompts/, falling back to embedded
// defaults.
//
// # Import Rules
//
// This package may import:
//   - internal/core/domain
//   - internal/core/ports/driven
//   - Standard library and TOML parsing libraries
//
// This package must NOT import:
//   - internal/core/services
//   - Other adapters
package file
