package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMediaType_IsValid tests all valid and invalid media types
func TestMediaType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		media    MediaType
		expected bool
	}{
		{
			name:     "pdf is valid",
			media:    MediaTypePDF,
			expected: true,
		},
		{
			name:     "docx is valid",
			media:    MediaTypeDOCX,
			expected: true,
		},
		{
			name:     "txt is valid",
			media:    MediaTypeTXT,
			expected: true,
		},
		{
			name:     "html is valid",
			media:    MediaTypeHTML,
			expected: true,
		},
		{
			name:     "empty string is invalid",
			media:    MediaType(""),
			expected: false,
		},
		{
			name:     "unknown type is invalid",
			media:    MediaType("epub"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.media.IsValid())
		})
	}
}

func TestChunkingSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ChunkingSettings
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			cfg:     ChunkingSettings{ChunkSize: DefaultChunkSize, Overlap: DefaultChunkOverlap},
			wantErr: false,
		},
		{
			name:    "zero overlap is valid",
			cfg:     ChunkingSettings{ChunkSize: 10, Overlap: 0},
			wantErr: false,
		},
		{
			name:    "zero chunk size is rejected",
			cfg:     ChunkingSettings{ChunkSize: 0, Overlap: 0},
			wantErr: true,
		},
		{
			name:    "negative overlap is rejected",
			cfg:     ChunkingSettings{ChunkSize: 10, Overlap: -1},
			wantErr: true,
		},
		{
			name:    "overlap equal to chunk size is rejected",
			cfg:     ChunkingSettings{ChunkSize: 10, Overlap: 10},
			wantErr: true,
		},
		{
			name:    "overlap greater than chunk size is rejected",
			cfg:     ChunkingSettings{ChunkSize: 10, Overlap: 15},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetrievalSettings_Validate(t *testing.T) {
	valid := RetrievalSettings{TopK: DefaultTopK, MaxContextTokens: DefaultMaxContextTokens}
	assert.NoError(t, valid.Validate())

	zeroK := RetrievalSettings{TopK: 0, MaxContextTokens: 100}
	assert.ErrorIs(t, zeroK.Validate(), ErrInvalidConfig)

	zeroBudget := RetrievalSettings{TopK: 3, MaxContextTokens: 0}
	assert.ErrorIs(t, zeroBudget.Validate(), ErrInvalidConfig)
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{
			name:     "unset provider is not configured",
			settings: EmbeddingSettings{},
			expected: false,
		},
		{
			name:     "openai without key is not configured",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI},
			expected: false,
		},
		{
			name:     "openai with key is configured",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"},
			expected: true,
		},
		{
			name:     "ollama needs no key",
			settings: EmbeddingSettings{Provider: AIProviderOllama},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	settings := DefaultAppSettings()

	require.NoError(t, settings.Validate())
	assert.Equal(t, DefaultChunkSize, settings.Chunking.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, settings.Chunking.Overlap)
	assert.Equal(t, DefaultTopK, settings.Retrieval.TopK)
	assert.False(t, settings.Embedding.IsConfigured())
	assert.False(t, settings.LLM.IsConfigured())
}
