package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Chunker splits page texts into overlapping token windows.
// Implemented by the tokeniser-backed chunk processor.
type Chunker interface {
	SplitPages(pages []string) ([]domain.Chunk, error)
}

// IngestService turns loaded page texts into a persisted, queryable
// collection. Ingestion for one document ID must not run concurrently;
// callers serialise per document.
type IngestService struct {
	chunker  Chunker
	vectors  driven.VectorStore
	registry driven.DocumentRegistry
}

// NewIngestService creates a new ingest service.
// The registry parameter is optional (can be nil).
func NewIngestService(
	chunker Chunker,
	vectors driven.VectorStore,
	registry driven.DocumentRegistry,
) *IngestService {
	return &IngestService{
		chunker:  chunker,
		vectors:  vectors,
		registry: registry,
	}
}

// Ingest chunks the pages, embeds them and persists the collection.
// Chunking runs before any provider call so configuration errors surface
// without wasted requests.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*driving.IngestResult, error) {
	logger.Section("Document Ingestion")
	logger.Debug("Document: id=%q title=%q pages=%d", req.DocumentID, req.Title, len(req.Pages))

	if strings.TrimSpace(req.DocumentID) == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if !req.MediaType.IsValid() {
		return nil, fmt.Errorf("%w: unrecognised media type %q", domain.ErrInvalidInput, req.MediaType)
	}
	if len(req.Pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to ingest", domain.ErrInvalidInput)
	}

	chunks, err := s.chunker.SplitPages(req.Pages)
	if err != nil {
		return nil, fmt.Errorf("chunk pages: %w", err)
	}
	logger.Debug("Chunked into %d chunks", len(chunks))

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document contains no text", domain.ErrInvalidInput)
	}

	doc := domain.Document{
		ID:        req.DocumentID,
		Title:     req.Title,
		Source:    req.Source,
		MediaType: req.MediaType,
		NumPages:  len(req.Pages),
		NumChunks: len(chunks),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.vectors.Persist(ctx, doc, chunks); err != nil {
		logger.Warn("Persist failed for %q: %v", req.DocumentID, err)
		return nil, fmt.Errorf("persist collection: %w", err)
	}

	// The collection is the source of truth for readiness; a catalogue
	// write failure downgrades to a warning.
	if s.registry != nil {
		if err := s.registry.Save(ctx, doc); err != nil {
			logger.Warn("Registry save failed for %q: %v", req.DocumentID, err)
		}
	}

	ready := s.vectors.IsReady(req.DocumentID)
	logger.Info("Ingested %q: %d chunks, ready=%t", req.DocumentID, len(chunks), ready)

	return &driving.IngestResult{
		Ready:     ready,
		NumChunks: len(chunks),
	}, nil
}

// Ready reports whether the document's collection is complete on durable
// storage and safe to query.
func (s *IngestService) Ready(documentID string) bool {
	return s.vectors.IsReady(documentID)
}
