package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/siddhantttt/context-iq/internal/adapters/driving/httpapi"
	"github.com/siddhantttt/context-iq/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Serve the document and query API over HTTP:

  POST /documents        upload a file (multipart field "file")
  GET  /documents        list documents
  GET  /documents/{id}   show a document and its chunks
  POST /query            {"question": "...", "doc_ids": [...]}
  GET  /health           liveness

The address defaults to server.addr from the config file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil || retrievalService == nil || documentService == nil {
		return errors.New("services not configured")
	}

	addr := serveAddr
	if addr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			addr = settings.Server.Addr
		}
	}

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	server := httpapi.NewServer(addr, httpapi.Services{
		Ingest:    ingestService,
		Retrieval: retrievalService,
		Documents: documentService,
	})
	return server.Run(commandContext(cmd))
}
