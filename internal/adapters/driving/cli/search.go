package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/services"
)

var (
	searchLimit int
	searchDocs  []string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Embeds the query and returns the nearest chunks from the vector index,
closest first. No answer is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "number of chunks to fetch (0 = configured top_k)")
	searchCmd.Flags().StringArrayVar(&searchDocs, "doc", nil, "restrict to this document ID (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchResult is the JSON shape of a hit.
type searchResult struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Text         string  `json:"text"`
	Distance     float32 `json:"distance"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if searchLimit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", domain.ErrInvalidInput)
	}

	results, err := retrievalService.Retrieve(commandContext(cmd), args[0], domain.RetrieveOptions{
		K:           searchLimit,
		DocumentIDs: searchDocs,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SourceChunk) error {
	out := make([]searchResult, 0, len(results))
	for _, r := range results {
		out = append(out, searchResult(r))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SourceChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		name := r.DocumentName
		if name == "" {
			name = r.DocumentID
		}
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, name, r.Distance)
		cmd.Printf("      %s\n", services.Snippet(r.Text))
		cmd.Println()
	}
	return nil
}
