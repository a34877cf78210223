package driven

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// DocumentRegistry is the catalogue of ingested documents. It records the
// descriptors a document was ingested with; the chunk texts and vectors
// live with the VectorStore.
type DocumentRegistry interface {
	// Save records a document, replacing any existing record with the same ID.
	Save(ctx context.Context, doc domain.Document) error

	// Get returns a document by ID, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all recorded documents, most recently ingested first.
	List(ctx context.Context) ([]domain.Document, error)

	// Delete removes a document record. Deleting an unknown ID is a no-op.
	Delete(ctx context.Context, id string) error

	// Close releases the underlying storage.
	Close() error
}
