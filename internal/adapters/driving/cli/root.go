// Package cli provides the contextiq command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/siddhantttt/context-iq/internal/core/ports/driving"
	"github.com/siddhantttt/context-iq/internal/logger"
)

// version is set at build time or by SetVersion.
var version = "dev"

// Services wired in by main. Commands fail with a clear error when the one
// they need is missing.
var (
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	documentService  driving.DocumentService
	settingsService  driving.SettingsService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "contextiq",
	Short: "Ask questions about your documents",
	Long: `contextiq ingests documents, indexes their text as embeddings and
answers questions using only the passages most relevant to each question.

Documents can be added from the command line, through the REST API
(contextiq serve) or by watching a directory (contextiq watch).`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
}

// Services are the core services the commands drive.
type Services struct {
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Documents driving.DocumentService
	Settings  driving.SettingsService
}

// SetServices wires the core services into the commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	retrievalService = s.Retrieval
	documentService = s.Documents
	settingsService = s.Settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx attached to every subcommand.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or Background when the
// command was executed without one (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
