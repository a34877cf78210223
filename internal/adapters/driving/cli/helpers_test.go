package cli

import (
	"context"
	"sort"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

// setupTestServices swaps the package services for mocks and returns a
// cleanup that restores the previous wiring.
func setupTestServices() func() {
	prevSettings := settingsStore
	prevRegistry := registryStore
	prevSessions := sessionStore
	prevIngest := ingestService
	prevAsk := askService
	prevInitialised := servicesInitialised

	settingsStore = &stubSettingsStore{settings: domain.DefaultAppSettings()}
	registryStore = &stubRegistry{docs: make(map[string]domain.Document)}
	sessionStore = memory.NewSessionStore()
	ingestService = &stubIngestService{ready: true}
	askService = &stubAskService{
		result: &driving.AskResult{
			SessionID: "session-1",
			Answer:    "The report covers fiscal year 2025.",
			Citations: []domain.Citation{{Index: 0, Score: 0.9, Preview: "fiscal year"}},
		},
	}
	servicesInitialised = true

	return func() {
		settingsStore = prevSettings
		registryStore = prevRegistry
		sessionStore = prevSessions
		ingestService = prevIngest
		askService = prevAsk
		servicesInitialised = prevInitialised
	}
}

type stubSettingsStore struct {
	settings domain.AppSettings
	saved    *domain.AppSettings
}

func (s *stubSettingsStore) Load() (domain.AppSettings, error) { return s.settings, nil }
func (s *stubSettingsStore) Save(settings domain.AppSettings) error {
	s.settings = settings
	s.saved = &settings
	return nil
}
func (s *stubSettingsStore) Path() string { return "/tmp/config.toml" }

type stubRegistry struct {
	docs map[string]domain.Document
}

func (r *stubRegistry) Save(_ context.Context, doc domain.Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *stubRegistry) Get(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (r *stubRegistry) List(_ context.Context) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubRegistry) Delete(_ context.Context, id string) error {
	delete(r.docs, id)
	return nil
}

func (r *stubRegistry) Close() error { return nil }

type stubIngestService struct {
	ready   bool
	lastReq *driving.IngestRequest
	err     error
}

func (s *stubIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*driving.IngestResult, error) {
	s.lastReq = &req
	if s.err != nil {
		return nil, s.err
	}
	return &driving.IngestResult{Ready: s.ready, NumChunks: len(req.Pages) * 2}, nil
}

func (s *stubIngestService) Ready(string) bool { return s.ready }

type stubAskService struct {
	result    *driving.AskResult
	err       error
	questions []string
}

func (s *stubAskService) Ask(_ context.Context, _, _, question string) (*driving.AskResult, error) {
	s.questions = append(s.questions, question)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}
