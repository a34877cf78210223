package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// mockLLM records the transcript of the last Chat call.
type mockLLM struct {
	answer   string
	err      error
	calls    int
	messages []driven.ChatMessage
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.calls++
	m.messages = messages
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// mockSessionStore is a minimal in-memory session store for service tests.
type mockSessionStore struct {
	nextID   int
	sessions map[string]*domain.Session
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionStore) Create() string {
	m.nextID++
	id := fmt.Sprintf("session-%d", m.nextID)
	m.sessions[id] = &domain.Session{ID: id}
	return id
}

func (m *mockSessionStore) Get(sessionID string) (domain.Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return *s, nil
}

func (m *mockSessionStore) BindDocument(sessionID, documentID string) error {
	s, ok := m.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.DocumentID = documentID
	s.History = nil
	return nil
}

func (m *mockSessionStore) Append(sessionID string, entry domain.HistoryEntry) error {
	s, ok := m.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.History = append(s.History, entry)
	if len(s.History) > domain.MaxHistoryEntries {
		s.History = s.History[len(s.History)-domain.MaxHistoryEntries:]
	}
	return nil
}

func (m *mockSessionStore) History(sessionID string) ([]domain.HistoryEntry, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return append([]domain.HistoryEntry(nil), s.History...), nil
}

func (m *mockSessionStore) List() []string {
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// wordCounter counts whitespace-separated words as tokens.
type wordCounter struct{}

func (wordCounter) CountTokens(text string) int { return len(strings.Fields(text)) }

// readyStore builds a mock store with n chunks of the given word length,
// ranked in descending similarity by index order.
func readyStore(n, wordsPerChunk int) *mockVectorStore {
	store := &mockVectorStore{
		ready:  true,
		chunks: make(map[int]string),
		metas:  make(map[int]domain.ChunkMeta),
	}
	for i := 0; i < n; i++ {
		words := make([]string, wordsPerChunk)
		for w := range words {
			words[w] = fmt.Sprintf("w%d", i)
		}
		store.chunks[i] = strings.Join(words, " ")
		page := i + 1
		store.metas[i] = domain.ChunkMeta{Page: &page, Index: i}
		store.hits = append(store.hits, mockHit{index: i, score: 1.0 - float64(i)*0.1})
	}
	return store
}

func newAskService(store *mockVectorStore, llm *mockLLM, sessions driven.SessionStore,
	retrieval domain.RetrievalSettings) *AskService {
	return NewAskService(store, llm, sessions, wordCounter{}, retrieval)
}

func TestAsk(t *testing.T) {
	store := readyStore(3, 10)
	llm := &mockLLM{answer: "  The report covers 2025.  "}
	sessions := newMockSessionStore()
	svc := newAskService(store, llm, sessions, domain.RetrievalSettings{})

	result, err := svc.Ask(context.Background(), "doc-1", "", "What year does the report cover?")
	require.NoError(t, err)

	assert.Equal(t, "The report covers 2025.", result.Answer)
	assert.NotEmpty(t, result.SessionID)

	require.Len(t, result.Citations, 3)
	assert.Equal(t, 0, result.Citations[0].Index)
	assert.InDelta(t, 1.0, result.Citations[0].Score, 1e-9)
	require.NotNil(t, result.Citations[0].Page)
	assert.Equal(t, 1, *result.Citations[0].Page)
	assert.NotEmpty(t, result.Citations[0].Preview)

	require.Len(t, result.History, 1)
	assert.Equal(t, "What year does the report cover?", result.History[0].Question)

	// Transcript: system prompt, then the excerpt-wrapped question.
	require.Len(t, llm.messages, 2)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Contains(t, llm.messages[1].Content, "[Page 1, Chunk 0]")
	assert.Contains(t, llm.messages[1].Content, "What year does the report cover?")
}

func TestAsk_NotReadyBeforeProviderCalls(t *testing.T) {
	store := readyStore(3, 10)
	store.ready = false
	llm := &mockLLM{answer: "never"}
	svc := newAskService(store, llm, newMockSessionStore(), domain.RetrievalSettings{})

	_, err := svc.Ask(context.Background(), "doc-1", "", "anything")
	assert.ErrorIs(t, err, domain.ErrNotReady)
	assert.Zero(t, store.topKCalls, "retrieval must not run for an unready document")
	assert.Zero(t, llm.calls, "completion must not run for an unready document")
}

func TestAsk_ContextTruncationKeepsHighestRanked(t *testing.T) {
	// 6 chunks of 10 tokens each with a budget of 45 fits exactly 4.
	store := readyStore(6, 10)
	llm := &mockLLM{answer: "ok"}
	svc := newAskService(store, llm, newMockSessionStore(), domain.RetrievalSettings{
		TopK:             6,
		MaxContextTokens: 45,
	})

	result, err := svc.Ask(context.Background(), "doc-1", "", "question")
	require.NoError(t, err)

	require.Len(t, result.Citations, 4)
	for i, citation := range result.Citations {
		assert.Equal(t, i, citation.Index, "citations must be the highest-ranked chunks")
	}
	assert.NotContains(t, llm.messages[1].Content, "[Page 5, Chunk 4]")
}

func TestAsk_ProviderFailureLeavesHistoryUntouched(t *testing.T) {
	store := readyStore(2, 5)
	llm := &mockLLM{err: domain.NewProviderError("openai", domain.ProviderTimeout,
		context.DeadlineExceeded)}
	sessions := newMockSessionStore()
	svc := newAskService(store, llm, sessions, domain.RetrievalSettings{})

	sessionID := sessions.Create()
	require.NoError(t, sessions.BindDocument(sessionID, "doc-1"))

	_, err := svc.Ask(context.Background(), "doc-1", sessionID, "question")
	require.Error(t, err)
	assert.True(t, domain.IsProviderTimeout(err))

	history, err := sessions.History(sessionID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAsk_RetrievalFailurePropagates(t *testing.T) {
	store := readyStore(2, 5)
	store.topKErr = errors.New("embed query: connection refused")
	llm := &mockLLM{answer: "never"}
	svc := newAskService(store, llm, newMockSessionStore(), domain.RetrievalSettings{})

	_, err := svc.Ask(context.Background(), "doc-1", "", "question")
	require.Error(t, err)
	assert.Zero(t, llm.calls)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	svc := newAskService(readyStore(1, 5), &mockLLM{}, newMockSessionStore(),
		domain.RetrievalSettings{})

	_, err := svc.Ask(context.Background(), "doc-1", "", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAsk_NoLLMConfigured(t *testing.T) {
	svc := NewAskService(readyStore(1, 5), nil, newMockSessionStore(), wordCounter{},
		domain.RetrievalSettings{})

	_, err := svc.Ask(context.Background(), "doc-1", "", "question")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAsk_UnknownSession(t *testing.T) {
	svc := newAskService(readyStore(1, 5), &mockLLM{answer: "ok"}, newMockSessionStore(),
		domain.RetrievalSettings{})

	_, err := svc.Ask(context.Background(), "doc-1", "no-such-session", "question")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAsk_RebindClearsHistory(t *testing.T) {
	store := readyStore(2, 5)
	llm := &mockLLM{answer: "answer"}
	sessions := newMockSessionStore()
	svc := newAskService(store, llm, sessions, domain.RetrievalSettings{})

	first, err := svc.Ask(context.Background(), "doc-1", "", "first question")
	require.NoError(t, err)
	require.Len(t, first.History, 1)

	// Same session, different document: the old conversation is void.
	second, err := svc.Ask(context.Background(), "doc-2", first.SessionID, "second question")
	require.NoError(t, err)
	require.Len(t, second.History, 1)
	assert.Equal(t, "second question", second.History[0].Question)
}

func TestAsk_ReplaysOnlyRecentHistory(t *testing.T) {
	store := readyStore(1, 5)
	llm := &mockLLM{answer: "a"}
	sessions := newMockSessionStore()
	svc := newAskService(store, llm, sessions, domain.RetrievalSettings{})

	sessionID := sessions.Create()
	require.NoError(t, sessions.BindDocument(sessionID, "doc-1"))
	for i := 0; i < 10; i++ {
		require.NoError(t, sessions.Append(sessionID, domain.HistoryEntry{
			Question: fmt.Sprintf("q%d", i),
			Answer:   fmt.Sprintf("a%d", i),
		}))
	}

	_, err := svc.Ask(context.Background(), "doc-1", sessionID, "latest")
	require.NoError(t, err)

	// system + 6 replayed turns (12 messages) + current question.
	require.Len(t, llm.messages, 14)
	assert.Equal(t, "q4", llm.messages[1].Content)
	assert.Equal(t, "a9", llm.messages[12].Content)
}
