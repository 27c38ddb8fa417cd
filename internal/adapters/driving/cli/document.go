package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect ingested documents",
	Long:  `List ingested documents or show one with its chunks.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

// documentShowChunks prints full chunk text instead of a count.
var documentShowChunks bool

func init() {
	documentShowCmd.Flags().BoolVar(&documentShowChunks, "chunks", false, "print every chunk's text")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:       %s\n", docs[i].Name)
		cmd.Printf("    Extraction: %s\n", docs[i].Extraction)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	details, err := documentService.GetDetails(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	doc := details.Document
	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:       %s\n", doc.Name)
	cmd.Printf("  MIME type:  %s\n", doc.MIMEType)
	cmd.Printf("  Extraction: %s\n", doc.Extraction)
	if doc.ExtractionNote != "" {
		cmd.Printf("  Note:       %s\n", doc.ExtractionNote)
	}
	if !doc.CreatedAt.IsZero() {
		cmd.Printf("  Created:    %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	cmd.Printf("  Chunks:     %d\n", len(details.Chunks))

	if documentShowChunks {
		for _, c := range details.Chunks {
			cmd.Printf("\n--- [%d] %s ---\n", c.Position, c.ID)
			cmd.Println(c.Text)
		}
	}
	return nil
}
