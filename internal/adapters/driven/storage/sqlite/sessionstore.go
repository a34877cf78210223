package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is the SQLite-backed session store. Sessions and their
// history survive process restarts, so a session ID printed by one
// invocation can be continued by the next.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a session store at the specified data directory.
// If dataDir is empty, defaults to ~/.docqa/data/registry.db.
func NewSessionStore(dataDir string) (*SessionStore, error) {
	db, _, err := openDatabase(dataDir)
	if err != nil {
		return nil, err
	}
	return &SessionStore{db: db}, nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Create registers a new session and returns its ID.
func (s *SessionStore) Create() string {
	id := uuid.New().String()

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, document_id, created_at) VALUES (?, '', ?)
	`, id, time.Now().UTC())
	if err != nil {
		// The port reports session existence through Get; an unrecorded
		// ID simply resolves to ErrSessionNotFound there.
		logger.Warn("Failed to record session %s: %v", id, err)
	}
	return id
}

// Get returns a snapshot of the session.
func (s *SessionStore) Get(sessionID string) (domain.Session, error) {
	var documentID string
	row := s.db.QueryRow("SELECT document_id FROM sessions WHERE id = ?", sessionID)
	err := row.Scan(&documentID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("scanning session: %w", err)
	}

	history, err := s.history(sessionID)
	if err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		ID:         sessionID,
		DocumentID: documentID,
		History:    history,
	}, nil
}

// BindDocument switches the active document and clears the history.
func (s *SessionStore) BindDocument(sessionID, documentID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.Exec("UPDATE sessions SET document_id = ? WHERE id = ?", documentID, sessionID)
	if err != nil {
		return fmt.Errorf("binding document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("binding document: %w", err)
	}
	if affected == 0 {
		return domain.ErrSessionNotFound
	}

	if _, err := tx.Exec("DELETE FROM session_history WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	return tx.Commit()
}

// Append pushes an entry, evicting the oldest past the history bound.
func (s *SessionStore) Append(sessionID string, entry domain.HistoryEntry) error {
	citations, err := json.Marshal(entry.Citations)
	if err != nil {
		return fmt.Errorf("encoding citations: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	row := tx.QueryRow("SELECT 1 FROM sessions WHERE id = ?", sessionID)
	if err := row.Scan(&exists); errors.Is(err, sql.ErrNoRows) {
		return domain.ErrSessionNotFound
	} else if err != nil {
		return fmt.Errorf("checking session: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO session_history (session_id, question, answer, citations)
		VALUES (?, ?, ?, ?)
	`, sessionID, entry.Question, entry.Answer, string(citations))
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM session_history
		WHERE session_id = ?
		  AND seq NOT IN (
			SELECT seq FROM session_history
			WHERE session_id = ?
			ORDER BY seq DESC LIMIT ?
		  )
	`, sessionID, sessionID, domain.MaxHistoryEntries)
	if err != nil {
		return fmt.Errorf("evicting history: %w", err)
	}

	return tx.Commit()
}

// History returns a read-only snapshot, most-recent-last.
func (s *SessionStore) History(sessionID string) ([]domain.HistoryEntry, error) {
	var exists int
	row := s.db.QueryRow("SELECT 1 FROM sessions WHERE id = ?", sessionID)
	if err := row.Scan(&exists); errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	} else if err != nil {
		return nil, fmt.Errorf("checking session: %w", err)
	}

	return s.history(sessionID)
}

// List returns all known session IDs, oldest first.
func (s *SessionStore) List() []string {
	rows, err := s.db.Query("SELECT id FROM sessions ORDER BY created_at, id")
	if err != nil {
		logger.Warn("Failed to list sessions: %v", err)
		return nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			logger.Warn("Failed to scan session ID: %v", err)
			return nil
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		logger.Warn("Failed to iterate sessions: %v", err)
		return nil
	}
	return ids
}

// history reads the entries for a known session, oldest first.
func (s *SessionStore) history(sessionID string) ([]domain.HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT question, answer, citations
		FROM session_history WHERE session_id = ? ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.HistoryEntry
		var citations string
		if err := rows.Scan(&entry.Question, &entry.Answer, &citations); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(citations), &entry.Citations); err != nil {
			return nil, fmt.Errorf("decoding citations: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}
