package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// TokenCounter measures text in the same token unit used for chunking,
// so the context budget lines up with chunk sizes.
type TokenCounter interface {
	CountTokens(text string) int
}

// maxHistoryTurns is how many recent exchanges are replayed to the
// completion provider on each question.
const maxHistoryTurns = 6

// defaultSystemPrompt keeps answers grounded when no PromptStore is configured.
const defaultSystemPrompt = `You are a careful assistant that answers questions about a document.
Use ONLY the provided document excerpts to answer. If the excerpts do not
contain the answer, say you cannot find it in the document. Do not invent
information. When you use an excerpt, cite it by its page and chunk label,
for example [Page 3, Chunk 12].`

// defaultUserPrompt wraps the excerpts and question when no PromptStore is configured.
const defaultUserPrompt = `Document excerpts:
%s

Question: %s

Answer using only the excerpts above, citing pages and chunks.`

// AskService answers questions against an ingested document within a
// session-scoped conversation.
type AskService struct {
	vectors     driven.VectorStore
	llm         driven.LLMService
	sessions    driven.SessionStore
	tokens      TokenCounter
	promptStore driven.PromptStore
	retrieval   domain.RetrievalSettings
}

// NewAskService creates a new ask service.
// The llm parameter may be nil, in which case Ask fails with
// domain.ErrLLMUnavailable.
func NewAskService(
	vectors driven.VectorStore,
	llm driven.LLMService,
	sessions driven.SessionStore,
	tokens TokenCounter,
	retrieval domain.RetrievalSettings,
) *AskService {
	if retrieval.TopK < 1 {
		retrieval.TopK = domain.DefaultTopK
	}
	if retrieval.MaxContextTokens < 1 {
		retrieval.MaxContextTokens = domain.DefaultMaxContextTokens
	}

	return &AskService{
		vectors:   vectors,
		llm:       llm,
		sessions:  sessions,
		tokens:    tokens,
		retrieval: retrieval,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *AskService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ask retrieves the most relevant chunks, generates a cited answer and
// appends the exchange to the session history.
func (s *AskService) Ask(ctx context.Context, documentID, sessionID, question string) (*driving.AskResult, error) {
	logger.Section("Question Answering")
	logger.Debug("Document: %q, session: %q", documentID, sessionID)

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	// Fail fast before any provider call when the collection is incomplete.
	if !s.vectors.IsReady(documentID) {
		logger.Warn("Document %q not ready", documentID)
		return nil, fmt.Errorf("%w: %s", domain.ErrNotReady, documentID)
	}

	if sessionID == "" {
		sessionID = s.sessions.Create()
		logger.Debug("Created session %q", sessionID)
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	// Rebinding to a different document invalidates the conversation.
	if session.DocumentID != documentID {
		if err := s.sessions.BindDocument(sessionID, documentID); err != nil {
			return nil, fmt.Errorf("bind session: %w", err)
		}
	}

	history, err := s.sessions.History(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session history: %w", err)
	}

	hits, err := s.vectors.TopK(ctx, documentID, question, s.retrieval.TopK)
	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}
	logger.Debug("Retrieved %d chunks", len(hits))

	excerpts, citations, err := s.assembleContext(documentID, hits)
	if err != nil {
		return nil, err
	}
	logger.Debug("Context holds %d of %d chunks", len(citations), len(hits))

	messages, err := s.buildMessages(excerpts, question, history)
	if err != nil {
		return nil, err
	}

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{})
	if err != nil {
		// History stays untouched on provider failure.
		logger.Warn("Completion failed: %v", err)
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answer = strings.TrimSpace(answer)

	entry := domain.HistoryEntry{
		Question:  question,
		Answer:    answer,
		Citations: citations,
	}
	if err := s.sessions.Append(sessionID, entry); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	history, err = s.sessions.History(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session history: %w", err)
	}

	logger.Info("Answered with %d citations", len(citations))

	return &driving.AskResult{
		SessionID: sessionID,
		Answer:    answer,
		Citations: citations,
		History:   history,
	}, nil
}

// assembleContext concatenates retrieved chunk texts in descending
// similarity order under the token budget. When a chunk does not fit,
// it and every lower-ranked chunk are dropped whole; a lower-ranked
// chunk never takes a higher-ranked one's place.
func (s *AskService) assembleContext(
	documentID string, hits []driven.VectorHit,
) (string, []domain.Citation, error) {
	var (
		b         strings.Builder
		citations []domain.Citation
		used      int
	)

	for _, hit := range hits {
		text, err := s.vectors.Chunk(documentID, hit.Index)
		if err != nil {
			return "", nil, fmt.Errorf("get chunk %d: %w", hit.Index, err)
		}
		meta, err := s.vectors.Metadata(documentID, hit.Index)
		if err != nil {
			return "", nil, fmt.Errorf("get metadata %d: %w", hit.Index, err)
		}

		cost := s.tokens.CountTokens(text)
		if used+cost > s.retrieval.MaxContextTokens {
			break
		}
		used += cost

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(excerptLabel(meta))
		b.WriteString("\n")
		b.WriteString(text)

		citations = append(citations, domain.Citation{
			Index:   hit.Index,
			Page:    meta.Page,
			Score:   hit.Similarity,
			Preview: domain.Preview(text),
		})
	}

	return b.String(), citations, nil
}

// buildMessages assembles the chat transcript: system prompt, the most
// recent history turns, then the excerpt-wrapped question.
func (s *AskService) buildMessages(
	excerpts, question string, history []domain.HistoryEntry,
) ([]driven.ChatMessage, error) {
	systemPrompt := s.loadPrompt(driven.PromptQASystem, defaultSystemPrompt)
	userTemplate := s.loadPrompt(driven.PromptQAUser, defaultUserPrompt)

	if strings.Count(userTemplate, "%s") != 2 {
		return nil, fmt.Errorf("%w: user prompt template needs two %%s placeholders",
			domain.ErrInvalidConfig)
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: systemPrompt},
	}

	turns := history
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	for _, turn := range turns {
		messages = append(messages,
			driven.ChatMessage{Role: "user", Content: turn.Question},
			driven.ChatMessage{Role: "assistant", Content: turn.Answer},
		)
	}

	messages = append(messages, driven.ChatMessage{
		Role:    "user",
		Content: fmt.Sprintf(userTemplate, excerpts, question),
	})

	return messages, nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *AskService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// excerptLabel renders the citation label placed above each excerpt.
func excerptLabel(meta domain.ChunkMeta) string {
	if meta.Page != nil {
		return fmt.Sprintf("[Page %d, Chunk %d]", *meta.Page, meta.Index)
	}
	return fmt.Sprintf("[Chunk %d]", meta.Index)
}
