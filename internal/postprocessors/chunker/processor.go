// Package chunker provides token-accurate text chunking with overlap.
package chunker

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// Encoding is the BPE encoding used for chunk windows and token budgets.
// Token boundaries must be stable across runs for the overlap arithmetic
// to be reproducible, which a fixed BPE encoding guarantees.
const Encoding = "cl100k_base"

// Processor splits page text into overlapping token windows.
type Processor struct {
	chunkSize int
	overlap   int
	enc       *tiktoken.Tiktoken
}

// New creates a chunker with the given window size and overlap, both in
// tokens. An overlap equal to or greater than the chunk size would advance
// the window by a non-positive step and never terminate, so it is rejected
// up front rather than clamped.
func New(chunkSize, overlap int) (*Processor, error) {
	cfg := domain.ChunkingSettings{ChunkSize: chunkSize, Overlap: overlap}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("loading %s encoding: %w", Encoding, err)
	}

	return &Processor{
		chunkSize: chunkSize,
		overlap:   overlap,
		enc:       enc,
	}, nil
}

// ChunkSize returns the window size in tokens.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the window overlap in tokens.
func (p *Processor) Overlap() int {
	return p.overlap
}

// CountTokens returns the token length of text in the chunking encoding.
func (p *Processor) CountTokens(text string) int {
	return len(p.enc.Encode(text, nil, nil))
}

// SplitText splits one page's text into overlapping chunks with indices
// starting at 0. Text that tokenises to nothing produces no chunks.
func (p *Processor) SplitText(text string, page *int) []domain.Chunk {
	tokens := p.enc.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil
	}

	step := p.chunkSize - p.overlap
	estimated := (len(tokens) / step) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	index := 0
	for {
		end := start + p.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}

		chunks = append(chunks, domain.Chunk{
			Text:  p.enc.Decode(tokens[start:end]),
			Page:  page,
			Index: index,
		})
		index++

		// The final window may be shorter than chunkSize; it is still
		// emitted, never dropped.
		if end >= len(tokens) {
			break
		}
		start += step
	}

	return chunks
}

// SplitPages splits each page in order (1-based page numbers assigned by
// position) and renumbers chunk indices to be dense and monotonic across
// the whole document, not reset per page.
func (p *Processor) SplitPages(pages []string) ([]domain.Chunk, error) {
	var all []domain.Chunk
	for i, text := range pages {
		page := i + 1
		chunks := p.SplitText(text, &page)
		all = append(all, chunks...)
	}

	for i := range all {
		all[i].Index = i
	}
	return all, nil
}
