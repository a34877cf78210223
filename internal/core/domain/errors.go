package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates an unusable configuration value, such as
	// a chunk overlap that equals or exceeds the chunk size. These are
	// fatal and reported before any work begins.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotReady indicates a document was queried before ingestion
	// completed. Recoverable: the caller should ingest or wait.
	ErrNotReady = errors.New("document not ready")

	// ErrOutOfRange indicates a chunk index outside the stored collection.
	// Indices only ever originate from the store's own search results, so
	// this is a programmer error, not a recoverable condition.
	ErrOutOfRange = errors.New("chunk index out of range")

	// ErrSessionNotFound indicates an unknown session identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Nothing can be ingested or queried without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Retrieval still works; answer generation is disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)

// ProviderErrorKind distinguishes how a provider call failed, so callers
// can render different UX for a timeout versus an API rejection.
type ProviderErrorKind string

// Provider failure kinds.
const (
	// ProviderTimeout means the call exceeded its deadline or was cancelled.
	ProviderTimeout ProviderErrorKind = "timeout"

	// ProviderRejected means the provider answered with an error response.
	ProviderRejected ProviderErrorKind = "rejected"

	// ProviderTransport means the request never received a valid response.
	ProviderTransport ProviderErrorKind = "transport"
)

// ProviderError wraps a failed embedding or completion call with enough
// detail to distinguish timeout from rejection from transport failure.
type ProviderError struct {
	// Provider names the failing service ("openai", "ollama").
	Provider string

	// Kind classifies the failure.
	Kind ProviderErrorKind

	// Err is the underlying cause.
	Err error
}

// Error returns the formatted error message.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider %s: %v", e.Provider, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a classified provider failure.
func NewProviderError(provider string, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// IsProviderTimeout reports whether err is a provider timeout.
func IsProviderTimeout(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == ProviderTimeout
}
