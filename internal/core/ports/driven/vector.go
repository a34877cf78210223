package driven

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// VectorStore owns the durable, per-document collection of chunk texts,
// chunk metadata and embedding vectors, and performs exact nearest
// neighbour search over one collection.
//
// Concurrency contract: one document ID has exactly one writer (Persist)
// at a time - callers serialise ingestion per document. Any number of
// concurrent readers are safe once IsReady reports true, because persisted
// collections are only ever replaced whole, never mutated in place.
type VectorStore interface {
	// Persist embeds the chunk texts in one batch and writes the complete
	// collection for doc.ID. Persist is atomic: on any failure, including
	// an embedding provider error, no partially-ready collection remains.
	Persist(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error

	// IsReady returns true iff the complete collection for the document
	// exists on durable storage. Callers use this as the signal that the
	// document is safe to query.
	IsReady(documentID string) bool

	// Load reads the collection into memory if not already loaded.
	// Idempotent; a second Load for a loaded document is a no-op.
	// Returns domain.ErrNotReady if the collection is absent or partial.
	Load(ctx context.Context, documentID string) error

	// TopK embeds the query and returns the k most similar chunks in
	// descending cosine similarity order, ties broken by lower chunk
	// index. If the collection holds fewer than k chunks, all are
	// returned, ranked.
	TopK(ctx context.Context, documentID, query string, k int) ([]VectorHit, error)

	// Chunk returns the stored text at the given chunk index.
	// Indices outside the collection fail with domain.ErrOutOfRange.
	Chunk(documentID string, index int) (string, error)

	// Metadata returns the stored per-chunk metadata at the given index.
	Metadata(documentID string, index int) (domain.ChunkMeta, error)

	// Close releases in-memory collections.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Index is the matched chunk's position within the document.
	Index int

	// Similarity is the cosine similarity score.
	Similarity float64
}
