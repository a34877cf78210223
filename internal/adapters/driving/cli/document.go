package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, view, or remove ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document from the registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if registryStore == nil {
		return errors.New("document registry not configured")
	}

	ctx := context.Background()
	docs, err := registryStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		ready := ""
		if ingestService != nil && !ingestService.Ready(docs[i].ID) {
			ready = " (incomplete)"
		}
		cmd.Printf("  %s%s\n", docs[i].ID, ready)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		cmd.Printf("    Pages: %d, Chunks: %d\n", docs[i].NumPages, docs[i].NumChunks)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if registryStore == nil {
		return errors.New("document registry not configured")
	}

	docID := args[0]
	ctx := context.Background()

	doc, err := registryStore.Get(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Source:   %s\n", doc.Source)
	cmd.Printf("  Type:     %s\n", doc.MediaType)
	cmd.Printf("  Pages:    %d\n", doc.NumPages)
	cmd.Printf("  Chunks:   %d\n", doc.NumChunks)
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))

	if ingestService != nil {
		status := "ready"
		if !ingestService.Ready(doc.ID) {
			status = "incomplete"
		}
		cmd.Printf("  Status:   %s\n", status)
	}

	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if registryStore == nil {
		return errors.New("document registry not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if err := registryStore.Delete(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s removed from the registry.\n", docID)
	return nil
}
