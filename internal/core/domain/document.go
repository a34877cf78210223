package domain

import "time"

// MediaType identifies the original format of an ingested document.
type MediaType string

// Recognised media types.
const (
	MediaTypePDF  MediaType = "pdf"
	MediaTypeDOCX MediaType = "docx"
	MediaTypeTXT  MediaType = "txt"
	MediaTypeHTML MediaType = "html"
)

// IsValid returns true if the media type is recognised.
func (m MediaType) IsValid() bool {
	switch m {
	case MediaTypePDF, MediaTypeDOCX, MediaTypeTXT, MediaTypeHTML:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m MediaType) String() string {
	return string(m)
}

// Document represents an ingested document.
// It describes the collection a VectorStore persists under one identifier;
// the chunk texts and vectors themselves live with the store.
type Document struct {
	// ID is the opaque, caller-assigned identifier. It is the storage key
	// for the persisted collection.
	ID string

	// Title is the human-readable title.
	Title string

	// Source is the origin descriptor (file path, URL, "manual").
	Source string

	// MediaType is the original document format.
	MediaType MediaType

	// NumPages is the number of logical pages the loader produced.
	NumPages int

	// NumChunks is the number of chunks produced at ingestion.
	NumChunks int

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk is a contiguous slice of token-decoded text from one source page.
// Chunks are created once at ingestion and are immutable thereafter;
// re-ingesting under a new document ID is the only way to change content.
type Chunk struct {
	// Text is the decoded chunk text.
	Text string

	// Page is the 1-based page the chunk came from. Nil for flat sources
	// (manual text, HTML) that have no page structure.
	Page *int

	// Index is the 0-based position within the document. Indices are
	// dense and assigned in production order across all pages.
	Index int
}

// ChunkMeta is the persisted per-chunk metadata record.
type ChunkMeta struct {
	// Page is the 1-based source page, nil for flat sources.
	Page *int `json:"page"`

	// Index is the chunk's position within the document.
	Index int `json:"chunk_index"`
}

// Citation references the specific chunk that supported part of an answer.
// Citations are produced per query and embedded in history entries; they
// are never persisted as standalone entities.
type Citation struct {
	// Index is the cited chunk's position within the document.
	Index int `json:"chunk_index"`

	// Page is the 1-based source page, nil for flat sources.
	Page *int `json:"page"`

	// Score is the cosine similarity between query and chunk.
	Score float64 `json:"score"`

	// Preview is a short excerpt of the cited chunk text.
	Preview string `json:"preview"`
}

// PreviewLength is the maximum preview size in runes.
const PreviewLength = 200

// Preview shortens text to PreviewLength runes for citation display.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength]) + "…"
}
