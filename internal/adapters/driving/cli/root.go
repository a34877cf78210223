// Package cli wires the services into cobra commands.
//
// Services are built once in the root command's PersistentPreRunE and
// held in package variables. Commands that need an embedding or LLM
// provider check for nil and point the user at 'docqa settings' instead
// of failing deep inside an adapter.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/docqa-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/vectorstore/disk"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/core/services"
	"github.com/custodia-labs/docqa-cli/internal/logger"
	"github.com/custodia-labs/docqa-cli/internal/postprocessors/chunker"
)

// version is set by Execute from the build.
var version = "dev"

var verbose bool

// Package-level services, wired by initServices. Tests replace these
// with mocks via setupTestServices.
var (
	settingsStore driven.SettingsStore
	registryStore driven.DocumentRegistry
	sessionStore  driven.SessionStore
	ingestService driving.IngestService
	askService    driving.AskService
)

// servicesInitialised short-circuits initServices once wiring has
// happened, either for real or via a test harness.
var servicesInitialised bool

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa ingests documents into per-document vector collections and
answers questions about them with cited excerpts.

Configure an embedding provider (and optionally an LLM provider) with
'docqa settings', ingest a document with 'docqa ingest', then ask
questions with 'docqa ask' or start a conversation with 'docqa chat'.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command with the given build version.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.Execute()
}

func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if servicesInitialised {
		return nil
	}

	store, err := configfile.NewSettingsStore("")
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}
	settingsStore = store

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	registry, err := sqlite.NewRegistry("")
	if err != nil {
		return fmt.Errorf("open document registry: %w", err)
	}
	registryStore = registry

	sessions, err := sqlite.NewSessionStore("")
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	sessionStore = sessions

	// Ingest and ask need an embedding provider. Leave them nil when none
	// is configured; commands report how to fix it.
	if !settings.Embedding.IsConfigured() {
		logger.Debug("Embedding provider not configured, retrieval services disabled")
		servicesInitialised = true
		return nil
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return fmt.Errorf("create embedding service: %w", err)
	}

	vectors, err := disk.NewStore("", embedder)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}

	proc, err := chunker.New(settings.Chunking.ChunkSize, settings.Chunking.Overlap)
	if err != nil {
		return fmt.Errorf("create chunker: %w", err)
	}

	ingestService = services.NewIngestService(proc, vectors, registry)

	var llm driven.LLMService
	if settings.LLM.IsConfigured() {
		llm, err = ai.CreateLLMService(&settings.LLM)
		if err != nil {
			return fmt.Errorf("create LLM service: %w", err)
		}
	}

	prompts, err := configfile.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	ask := services.NewAskService(vectors, llm, sessionStore, proc, settings.Retrieval)
	ask.SetPromptStore(prompts)
	askService = ask

	servicesInitialised = true
	return nil
}
