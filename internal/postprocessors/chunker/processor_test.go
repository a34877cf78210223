package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// newTestProcessor builds a chunker, skipping configuration validation
// boilerplate in each test.
func newTestProcessor(t *testing.T, chunkSize, overlap int) *Processor {
	t.Helper()
	p, err := New(chunkSize, overlap)
	require.NoError(t, err)
	return p
}

// twentyFiveTokens is a 25-token input under cl100k_base: each repeated
// " hello" encodes to exactly one token.
func twentyFiveTokens(t *testing.T, p *Processor) string {
	t.Helper()
	text := strings.TrimSpace(strings.Repeat(" hello", 25))
	require.Equal(t, 25, p.CountTokens(text))
	return text
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{name: "zero chunk size", chunkSize: 0, overlap: 0},
		{name: "negative chunk size", chunkSize: -5, overlap: 0},
		{name: "negative overlap", chunkSize: 10, overlap: -1},
		{name: "overlap equals chunk size", chunkSize: 10, overlap: 10},
		{name: "overlap exceeds chunk size", chunkSize: 10, overlap: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.chunkSize, tt.overlap)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Nil(t, p)
		})
	}
}

func TestSplitText_EmptyInput(t *testing.T) {
	p := newTestProcessor(t, 10, 3)

	assert.Empty(t, p.SplitText("", nil))
}

func TestSplitText_OverlapBoundaries(t *testing.T) {
	p := newTestProcessor(t, 10, 3)
	text := twentyFiveTokens(t, p)

	chunks := p.SplitText(text, nil)

	// Window starts advance by chunkSize-overlap = 7 tokens:
	// offsets 0, 7, 14, 21 over a 25-token input.
	require.Len(t, chunks, 4)
	for i, chunk := range chunks[:3] {
		assert.Equal(t, 10, p.CountTokens(chunk.Text), "chunk %d should fill the window", i)
	}
	assert.Equal(t, 4, p.CountTokens(chunks[3].Text), "final chunk holds the 4-token remainder")

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Nil(t, chunk.Page)
	}
}

func TestSplitText_InputSmallerThanWindow(t *testing.T) {
	p := newTestProcessor(t, 100, 10)

	page := 3
	chunks := p.SplitText("a single short sentence", &page)

	require.Len(t, chunks, 1)
	assert.Equal(t, "a single short sentence", chunks[0].Text)
	require.NotNil(t, chunks[0].Page)
	assert.Equal(t, 3, *chunks[0].Page)
}

func TestSplitPages_DenseGlobalIndices(t *testing.T) {
	p := newTestProcessor(t, 10, 3)
	long := twentyFiveTokens(t, p)

	chunks, err := p.SplitPages([]string{long, "", long, "short tail"})
	require.NoError(t, err)

	// 4 chunks per long page, none for the empty page, 1 for the tail.
	require.Len(t, chunks, 9)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index, "indices must form 0..n-1 with no gaps")
	}

	// Page numbers are 1-based by position; the empty page emits nothing.
	require.NotNil(t, chunks[0].Page)
	assert.Equal(t, 1, *chunks[0].Page)
	require.NotNil(t, chunks[4].Page)
	assert.Equal(t, 3, *chunks[4].Page)
	require.NotNil(t, chunks[8].Page)
	assert.Equal(t, 4, *chunks[8].Page)
}

func TestSplitPages_AllEmpty(t *testing.T) {
	p := newTestProcessor(t, 10, 3)

	chunks, err := p.SplitPages([]string{"", ""})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestCountTokens(t *testing.T) {
	p := newTestProcessor(t, 10, 3)

	assert.Zero(t, p.CountTokens(""))
	assert.Positive(t, p.CountTokens("counting tokens is not counting words"))
}
