package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is a file-based implementation of driven.SettingsStore
// using TOML. Settings are stored in the docqa config directory.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// settingsFile is the on-disk TOML representation of domain.AppSettings.
// Kept separate so the domain types carry no serialisation concerns.
type settingsFile struct {
	Chunking  chunkingSection  `toml:"chunking"`
	Retrieval retrievalSection `toml:"retrieval"`
	Embedding providerSection  `toml:"embedding"`
	LLM       providerSection  `toml:"llm"`
}

type chunkingSection struct {
	ChunkSize int `toml:"chunk_size"`
	Overlap   int `toml:"overlap"`
}

type retrievalSection struct {
	TopK             int `toml:"top_k"`
	MaxContextTokens int `toml:"max_context_tokens"`
}

type providerSection struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
}

// NewSettingsStore creates a new TOML-based settings store.
// If configDir is empty, defaults to ~/.docqa/config.toml.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".docqa")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from disk, returning defaults when no settings
// file exists yet. Unset numeric fields fall back to their defaults so
// a partially written file still yields usable settings.
func (s *SettingsStore) Load() (domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultAppSettings(), nil
		}
		return domain.AppSettings{}, fmt.Errorf("read settings file: %w", err)
	}

	var loaded settingsFile
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return domain.AppSettings{}, fmt.Errorf("parse settings file: %w", err)
	}

	settings := domain.AppSettings{
		Chunking: domain.ChunkingSettings{
			ChunkSize: loaded.Chunking.ChunkSize,
			Overlap:   loaded.Chunking.Overlap,
		},
		Retrieval: domain.RetrievalSettings{
			TopK:             loaded.Retrieval.TopK,
			MaxContextTokens: loaded.Retrieval.MaxContextTokens,
		},
		Embedding: domain.EmbeddingSettings{
			Provider: domain.AIProvider(loaded.Embedding.Provider),
			Model:    loaded.Embedding.Model,
			BaseURL:  loaded.Embedding.BaseURL,
			APIKey:   loaded.Embedding.APIKey,
		},
		LLM: domain.LLMSettings{
			Provider: domain.AIProvider(loaded.LLM.Provider),
			Model:    loaded.LLM.Model,
			BaseURL:  loaded.LLM.BaseURL,
			APIKey:   loaded.LLM.APIKey,
		},
	}

	applyDefaults(&settings)
	return settings, nil
}

// Save persists settings to disk with restricted permissions.
// The file may contain API keys, so it is not world-readable.
func (s *SettingsStore) Save(settings domain.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := settingsFile{
		Chunking: chunkingSection{
			ChunkSize: settings.Chunking.ChunkSize,
			Overlap:   settings.Chunking.Overlap,
		},
		Retrieval: retrievalSection{
			TopK:             settings.Retrieval.TopK,
			MaxContextTokens: settings.Retrieval.MaxContextTokens,
		},
		Embedding: providerSection{
			Provider: settings.Embedding.Provider.String(),
			Model:    settings.Embedding.Model,
			BaseURL:  settings.Embedding.BaseURL,
			APIKey:   settings.Embedding.APIKey,
		},
		LLM: providerSection{
			Provider: settings.LLM.Provider.String(),
			Model:    settings.LLM.Model,
			BaseURL:  settings.LLM.BaseURL,
			APIKey:   settings.LLM.APIKey,
		},
	}

	data, err := toml.Marshal(out)
	if err != nil {
		return fmt.Errorf("serialise settings: %w", err)
	}

	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// applyDefaults fills zero-valued tuning fields with defaults.
// An explicit overlap of zero is honoured once a chunk size is set.
func applyDefaults(settings *domain.AppSettings) {
	if settings.Chunking.ChunkSize == 0 {
		settings.Chunking.ChunkSize = domain.DefaultChunkSize
		settings.Chunking.Overlap = domain.DefaultChunkOverlap
	}
	if settings.Retrieval.TopK == 0 {
		settings.Retrieval.TopK = domain.DefaultTopK
	}
	if settings.Retrieval.MaxContextTokens == 0 {
		settings.Retrieval.MaxContextTokens = domain.DefaultMaxContextTokens
	}
}
