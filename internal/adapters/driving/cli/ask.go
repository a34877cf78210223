package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

var (
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question about an ingested document",
	Long: `Retrieves the most relevant chunks of the document and answers the
question with cited excerpts.

Pass --session to continue an earlier conversation; without it a new
session is created and its ID printed so you can follow up.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session ID to continue")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("no embedding provider configured. Run 'docqa settings' to configure one")
	}

	docID, question := args[0], args[1]

	result, err := askService.Ask(context.Background(), docID, askSession, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, result)
	}
	return outputAskText(cmd, result)
}

func outputAskJSON(cmd *cobra.Command, result *driving.AskResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskText(cmd *cobra.Command, result *driving.AskResult) error {
	cmd.Println(result.Answer)

	if len(result.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, c := range result.Citations {
			if c.Page != nil {
				cmd.Printf("  [Page %d, Chunk %d] %.2f  %s\n", *c.Page, c.Index, c.Score, c.Preview)
			} else {
				cmd.Printf("  [Chunk %d] %.2f  %s\n", c.Index, c.Score, c.Preview)
			}
		}
	}

	cmd.Println()
	cmd.Printf("Session: %s (use --session %s to follow up)\n", result.SessionID, result.SessionID)
	return nil
}
