package driving

import (
	"context"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// AskService answers questions against an ingested document within a
// session-scoped conversation.
type AskService interface {
	// Ask retrieves the most relevant chunks for the question, generates a
	// cited answer and appends the exchange to the session history. Fails
	// fast with domain.ErrNotReady before any provider call when the
	// document's collection is incomplete. On provider failure the session
	// history is left untouched.
	Ask(ctx context.Context, documentID, sessionID, question string) (*AskResult, error)
}

// AskResult is a cited answer plus the session history after appending it.
type AskResult struct {
	// SessionID identifies the session the exchange was recorded in. When
	// Ask is called with an empty session ID, a new session is created and
	// its ID returned here.
	SessionID string

	// Answer is the completion provider's answer text.
	Answer string

	// Citations reference the chunks that made it into the answer context,
	// highest similarity first.
	Citations []domain.Citation

	// History is the session history including this exchange.
	History []domain.HistoryEntry
}
