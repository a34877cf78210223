package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsShowCmd_PrintsDefaults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Chunk size: 400 tokens")
	assert.Contains(t, out, "Top-k: 6")
	assert.Contains(t, out, "No embedding provider configured")
}

func TestSettingsRetrievalCmd_UpdatesSettings(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "retrieval", "--chunk-size", "512", "--overlap", "64", "--top-k", "8"})
	defer func() {
		rootCmd.SetArgs(nil)
		retrievalChunkSize = 0
		retrievalOverlap = -1
		retrievalTopK = 0
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)

	store := settingsStore.(*stubSettingsStore)
	require.NotNil(t, store.saved)
	assert.Equal(t, 512, store.saved.Chunking.ChunkSize)
	assert.Equal(t, 64, store.saved.Chunking.Overlap)
	assert.Equal(t, 8, store.saved.Retrieval.TopK)
	assert.Equal(t, 2400, store.saved.Retrieval.MaxContextTokens)
}

func TestSettingsRetrievalCmd_RejectsInvalid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"settings", "retrieval", "--chunk-size", "100", "--overlap", "100"})
	defer func() {
		rootCmd.SetArgs(nil)
		retrievalChunkSize = 0
		retrievalOverlap = -1
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	store := settingsStore.(*stubSettingsStore)
	assert.Nil(t, store.saved)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}

func TestParseChoice(t *testing.T) {
	assert.Equal(t, 1, parseChoice("", 2, 1))
	assert.Equal(t, 2, parseChoice("2", 2, 1))
	assert.Equal(t, 1, parseChoice("5", 2, 1))
	assert.Equal(t, 1, parseChoice("abc", 2, 1))
}
