package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/siddhantttt/context-iq/internal/connectors/filesystem"
	"github.com/siddhantttt/context-iq/internal/core/domain"
)

var (
	watchExisting bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they appear in a directory",
	Long: `Watch a directory tree and ingest every file that is created or
rewritten in it. Hidden files and directories are ignored. Runs until
interrupted.

Documents are not updated in place: a file that changes after it was
ingested is added again as a new document.

Use --existing to ingest the files already present before watching.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "ingest files already in the directory first")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", filesystem.DefaultDebounce,
		"quiet period before a changed file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	ctx := commandContext(cmd)

	w := filesystem.NewWatcher(args[0], ingestService,
		filesystem.WithDebounce(watchDebounce),
		filesystem.WithReport(func(path string, doc *domain.Document, err error) {
			if err != nil {
				cmd.PrintErrf("  %s: %v\n", path, err)
				return
			}
			cmd.Printf("  %s -> %s (%s)\n", path, doc.ID, doc.Extraction)
		}),
	)
	defer w.Close()

	if watchExisting {
		n, err := w.IngestExisting(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Ingested %d existing files.\n", n)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Watch(ctx)
}
