// Package memory provides in-memory storage adapters.
package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore,
// suitable for tests and embedded callers that do not need sessions to
// outlive the process. The CLI uses the SQLite-backed store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.Session),
	}
}

// Create registers a new session and returns its ID.
func (s *SessionStore) Create() string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &domain.Session{ID: id}
	return id
}

// Get returns a snapshot of the session.
func (s *SessionStore) Get(sessionID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return snapshot(sess), nil
}

// BindDocument switches the active document and clears the history.
func (s *SessionStore) BindDocument(sessionID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.DocumentID = documentID
	sess.History = nil
	return nil
}

// Append pushes an entry, evicting the oldest past the history bound.
func (s *SessionStore) Append(sessionID string, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.History = append(sess.History, entry)
	if excess := len(sess.History) - domain.MaxHistoryEntries; excess > 0 {
		sess.History = append([]domain.HistoryEntry(nil), sess.History[excess:]...)
	}
	return nil
}

// History returns a read-only snapshot, most-recent-last.
func (s *SessionStore) History(sessionID string) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return append([]domain.HistoryEntry(nil), sess.History...), nil
}

// List returns all known session IDs in stable order.
func (s *SessionStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// snapshot copies a session so callers cannot mutate stored state.
func snapshot(sess *domain.Session) domain.Session {
	return domain.Session{
		ID:         sess.ID,
		DocumentID: sess.DocumentID,
		History:    append([]domain.HistoryEntry(nil), sess.History...),
	}
}
