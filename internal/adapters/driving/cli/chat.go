package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat [doc-id]",
	Short: "Start an interactive conversation about a document",
	Long: `Launch the interactive chat interface for an ingested document.

Controls:
  Enter - Ask the typed question
  ↑/↓   - Scroll the conversation
  Esc   - Quit (when the input is empty)`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	// Recover with a stack trace so TUI panics are debuggable.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if askService == nil {
		return errors.New("no embedding provider configured. Run 'docqa settings' to configure one")
	}

	docID := args[0]

	title := docID
	if registryStore != nil {
		if doc, err := registryStore.Get(context.Background(), docID); err == nil {
			title = doc.Title
		}
	}

	model := tui.New(cmd.Context(), askService, docID, title)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
