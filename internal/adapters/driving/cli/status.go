package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Check whether a document is ready for questions",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("no embedding provider configured. Run 'docqa settings' to configure one")
	}

	docID := args[0]

	if ingestService.Ready(docID) {
		cmd.Printf("Document %s is ready.\n", docID)
		return nil
	}

	if registryStore != nil {
		if _, err := registryStore.Get(context.Background(), docID); err == nil {
			cmd.Printf("Document %s is registered but its collection is incomplete. Re-run 'docqa ingest'.\n", docID)
			return nil
		}
	}

	cmd.Printf("Document %s has not been ingested.\n", docID)
	return nil
}
