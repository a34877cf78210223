package domain

// MaxHistoryEntries bounds a session's conversational history. When the
// bound is exceeded the oldest entry is evicted first.
const MaxHistoryEntries = 50

// HistoryEntry is one question/answer exchange within a session.
type HistoryEntry struct {
	// Question is the user's question as asked.
	Question string `json:"question"`

	// Answer is the completion provider's answer.
	Answer string `json:"answer"`

	// Citations are the chunks that backed the answer.
	Citations []Citation `json:"citations"`
}

// Session is a caller-scoped conversation bound to one active document.
type Session struct {
	// ID is the server-generated session identifier.
	ID string

	// DocumentID is the active document. Rebinding discards no persisted
	// data, it only resets the session's view.
	DocumentID string

	// History holds the most recent exchanges, oldest first, bounded to
	// MaxHistoryEntries.
	History []HistoryEntry
}
