package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
)

var (
	ingestID    string
	ingestTitle string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document for question answering",
	Long: `Reads a text document, splits it into token-sized chunks, embeds the
chunks and persists them as a queryable collection.

Pass '-' to read from stdin. Form feed characters (\f) mark page
boundaries; a file without them is treated as a single page.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document ID (defaults to the file name without extension)")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (defaults to the document ID)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("no embedding provider configured. Run 'docqa settings' to configure one")
	}

	path := args[0]
	text, source, err := readDocument(path)
	if err != nil {
		return err
	}

	docID := ingestID
	if docID == "" {
		docID = defaultDocumentID(path)
	}
	title := ingestTitle
	if title == "" {
		title = docID
	}

	req := driving.IngestRequest{
		DocumentID: docID,
		Title:      title,
		Source:     source,
		MediaType:  mediaTypeForPath(path),
		Pages:      splitPages(text),
	}

	cmd.Printf("Ingesting %s...\n", docID)

	result, err := ingestService.Ingest(context.Background(), req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d chunks from %d pages.\n", result.NumChunks, len(req.Pages))
	if result.Ready {
		cmd.Printf("Document %s is ready. Ask away: docqa ask %s \"your question\"\n", docID, docID)
	} else {
		cmd.Printf("Warning: collection for %s is incomplete.\n", docID)
	}
	return nil
}

func readDocument(path string) (text, source string, err error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read document: %w", err)
	}
	return string(data), path, nil
}

func defaultDocumentID(path string) string {
	if path == "-" {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func mediaTypeForPath(path string) domain.MediaType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return domain.MediaTypeHTML
	default:
		return domain.MediaTypeTXT
	}
}

// splitPages splits on form feeds, keeping page order. Blank pages are
// kept so page numbers line up with the source document.
func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
