package driving

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// IngestService turns a loaded document's page texts into a queryable
// collection.
type IngestService interface {
	// Ingest chunks the pages, embeds them and persists the collection
	// under req.DocumentID. Chunking happens before any provider call, so
	// configuration errors surface without wasted requests.
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)

	// Ready reports whether the document's collection is complete on
	// durable storage and safe to query.
	Ready(documentID string) bool
}

// IngestRequest carries a loaded document into ingestion.
// Pages hold one string per logical page; flat sources (manual text,
// HTML) use a single-element slice.
type IngestRequest struct {
	// DocumentID is the caller-assigned collection identifier.
	DocumentID string

	// Title is the human-readable document title.
	Title string

	// Source is the origin descriptor (path, URL, "manual").
	Source string

	// MediaType is the original document format.
	MediaType domain.MediaType

	// Pages are the extracted page texts, in page order.
	Pages []string
}

// IngestResult reports the outcome of an ingestion.
type IngestResult struct {
	// Ready is true when the persisted collection is queryable.
	Ready bool

	// NumChunks is the number of chunks produced.
	NumChunks int
}
