package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking and retrieval options.

Use subcommands to configure specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to vectorise document chunks and questions.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the completion provider used to generate answers.`,
	RunE:  runSettingsLLM,
}

var (
	retrievalChunkSize int
	retrievalOverlap   int
	retrievalTopK      int
	retrievalBudget    int
)

var settingsRetrievalCmd = &cobra.Command{
	Use:   "retrieval",
	Short: "Configure chunking and retrieval options",
	Long: `Set the chunk window size, overlap, top-k and answer context budget.

Changing chunk size or overlap only affects documents ingested afterwards;
re-run 'docqa ingest' to rebuild existing collections.`,
	RunE: runSettingsRetrieval,
}

func init() {
	settingsRetrievalCmd.Flags().IntVar(&retrievalChunkSize, "chunk-size", 0, "chunk window size in tokens")
	settingsRetrievalCmd.Flags().IntVar(&retrievalOverlap, "overlap", -1, "token overlap between adjacent chunks")
	settingsRetrievalCmd.Flags().IntVar(&retrievalTopK, "top-k", 0, "number of chunks retrieved per question")
	settingsRetrievalCmd.Flags().IntVar(&retrievalBudget, "max-context-tokens", 0, "token budget for the answer context")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsRetrievalCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d tokens\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d tokens\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top-k: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Max context tokens: %d\n", settings.Retrieval.MaxContextTokens)
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Printf("Settings file: %s\n", settingsStore.Path())

	if !settings.Embedding.IsConfigured() {
		cmd.Println()
		cmd.Println("No embedding provider configured. Run 'docqa settings embedding' to set one up.")
	}
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	if provider == "" {
		cmd.Println("  Provider: (not set)")
		return
	}
	cmd.Printf("  Provider: %s\n", provider)
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	provider, model, baseURL, apiKey, err := promptProvider(cmd, reader, defaultEmbeddingModels())
	if err != nil {
		return err
	}

	settings.Embedding = domain.EmbeddingSettings{
		Provider: provider,
		Model:    model,
		BaseURL:  baseURL,
		APIKey:   apiKey,
	}

	cmd.Print("Validating configuration... ")
	if err := ai.ValidateEmbeddingConfig(&settings.Embedding); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider, model)
	cmd.Println("Re-run 'docqa ingest' for documents ingested with a different model.")
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	provider, model, baseURL, apiKey, err := promptProvider(cmd, reader, defaultLLMModels())
	if err != nil {
		return err
	}

	settings.LLM = domain.LLMSettings{
		Provider: provider,
		Model:    model,
		BaseURL:  baseURL,
		APIKey:   apiKey,
	}

	cmd.Print("Validating configuration... ")
	if err := ai.ValidateLLMConfig(&settings.LLM); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", provider, model)
	return nil
}

func runSettingsRetrieval(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if retrievalChunkSize > 0 {
		settings.Chunking.ChunkSize = retrievalChunkSize
	}
	if retrievalOverlap >= 0 {
		settings.Chunking.Overlap = retrievalOverlap
	}
	if retrievalTopK > 0 {
		settings.Retrieval.TopK = retrievalTopK
	}
	if retrievalBudget > 0 {
		settings.Retrieval.MaxContextTokens = retrievalBudget
	}

	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Chunking: size=%d overlap=%d\n", settings.Chunking.ChunkSize, settings.Chunking.Overlap)
	cmd.Printf("Retrieval: top-k=%d max-context-tokens=%d\n",
		settings.Retrieval.TopK, settings.Retrieval.MaxContextTokens)
	return nil
}

func promptProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	defaults map[domain.AIProvider]string,
) (provider domain.AIProvider, model, baseURL, apiKey string, err error) {
	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI}

	cmd.Println("Select Provider")
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider = providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model = readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if provider == domain.AIProviderOllama {
		cmd.Print("Enter base URL [http://localhost:11434]: ")
		baseURL = readLine(reader)
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
	}

	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return "", "", "", "", errors.New("API key is required for this provider")
		}
	}

	return provider, model, baseURL, apiKey, nil
}

func defaultEmbeddingModels() map[domain.AIProvider]string {
	return map[domain.AIProvider]string{
		domain.AIProviderOllama: "nomic-embed-text",
		domain.AIProviderOpenAI: "text-embedding-3-small",
	}
}

func defaultLLMModels() map[domain.AIProvider]string {
	return map[domain.AIProvider]string{
		domain.AIProviderOllama: "llama3.1",
		domain.AIProviderOpenAI: "gpt-4o-mini",
	}
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
