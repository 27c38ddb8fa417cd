package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui/components/transcript"
	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 80

var (
	askDocs []string
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieve the passages closest to the question and ask the language
model to answer using only them. The passages are listed as sources.

Use --doc (repeatable) to restrict the answer to specific documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayVar(&askDocs, "doc", nil, "restrict to this document ID (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	answer, err := retrievalService.Answer(commandContext(cmd), args[0], domain.RetrieveOptions{
		DocumentIDs: askDocs,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	if answer.Sources == nil {
		answer.Sources = []domain.Source{}
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	width := terminalWidth()
	cmd.Println(transcript.Wrap(answer.Text, width))
	if len(answer.Sources) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, s := range answer.Sources {
		cmd.Printf("  [%d] %s (%s)\n", i+1, s.DocumentName, s.ChunkID)
		cmd.Printf("      %s\n", transcript.Wrap(s.Snippet, width-6))
	}
	return nil
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
