package domain

import "fmt"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if the provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Default chunking and retrieval values, matching the tuning the system
// was validated with.
const (
	// DefaultChunkSize is the chunk window size in tokens.
	DefaultChunkSize = 400

	// DefaultChunkOverlap is the token overlap between adjacent chunks.
	DefaultChunkOverlap = 80

	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 6

	// DefaultMaxContextTokens bounds the assembled answer context.
	DefaultMaxContextTokens = 2400
)

// ChunkingSettings configures how page text is split into chunks.
type ChunkingSettings struct {
	// ChunkSize is the window size in tokens. Must be positive.
	ChunkSize int

	// Overlap is the token overlap between adjacent windows.
	// Must satisfy 0 <= Overlap < ChunkSize.
	Overlap int
}

// Validate checks the chunking invariants. An overlap equal to or greater
// than the chunk size would advance the window by a non-positive step and
// never terminate, so it is rejected rather than clamped.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, chunk size), got %d with chunk size %d",
			ErrInvalidConfig, c.Overlap, c.ChunkSize)
	}
	return nil
}

// RetrievalSettings configures top-k retrieval and context assembly.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// MaxContextTokens bounds the assembled context, measured in the same
	// token unit as chunking. Lower-ranked chunks are dropped first when
	// the budget is exceeded; chunks are never truncated mid-text.
	MaxContextTokens int
}

// Validate checks the retrieval invariants.
func (r RetrievalSettings) Validate() error {
	if r.TopK < 1 {
		return fmt.Errorf("%w: top-k must be at least 1, got %d", ErrInvalidConfig, r.TopK)
	}
	if r.MaxContextTokens < 1 {
		return fmt.Errorf("%w: max context tokens must be positive, got %d",
			ErrInvalidConfig, r.MaxContextTokens)
	}
	return nil
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// EmbeddingDimensions returns the vector sizes of known embedding models.
// Unknown models fall back to adapter defaults.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// LLMSettings holds completion provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// AppSettings is the complete application configuration.
type AppSettings struct {
	// Chunking holds chunk window settings.
	Chunking ChunkingSettings

	// Retrieval holds top-k and context budget settings.
	Retrieval RetrievalSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds completion provider settings.
	LLM LLMSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; users must set them explicitly.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:             DefaultTopK,
			MaxContextTokens: DefaultMaxContextTokens,
		},
	}
}

// Validate checks all settings invariants.
func (s AppSettings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	return s.Retrieval.Validate()
}
