package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/siddhantttt/context-iq/internal/adapters/driving/tui"
)

// isTerminal reports whether stdin is interactive. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with your documents in the terminal",
	Long: `Launch the interactive chat. Each question is answered from the
ingested documents and followed by its sources.

Controls:
  Enter    - Ask
  Ctrl+D   - Choose which documents to ask about
  Ctrl+L   - Clear the conversation
  ↑/↓      - Scroll
  F1       - Help
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if !isTerminal() {
		return errors.New("chat needs an interactive terminal; use 'contextiq ask' instead")
	}

	app, err := tui.NewApp(&tui.Ports{
		Retrieval: retrievalService,
		Documents: documentService,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	if err := app.WithContext(commandContext(cmd)).Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
