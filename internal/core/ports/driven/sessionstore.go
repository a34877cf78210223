package driven

import "github.com/custodia-labs/docqa-cli/internal/core/domain"

// SessionStore manages bounded conversational history per session.
//
// The default implementation is SQLite-backed so a session ID printed
// by one invocation can be resumed by the next; an in-memory variant
// exists for tests and embedded use.
type SessionStore interface {
	// Create registers a new session and returns its server-generated ID.
	Create() string

	// Get returns a snapshot of the session, or domain.ErrSessionNotFound.
	Get(sessionID string) (domain.Session, error)

	// BindDocument switches the session's active document and clears its
	// history - a conversation is meaningless once the underlying document
	// context changes.
	BindDocument(sessionID, documentID string) error

	// Append pushes an entry onto the session history, evicting the oldest
	// entry once the history exceeds domain.MaxHistoryEntries.
	Append(sessionID string, entry domain.HistoryEntry) error

	// History returns a read-only snapshot, most-recent-last.
	History(sessionID string) ([]domain.HistoryEntry, error)

	// List returns all known session IDs.
	List() []string
}
