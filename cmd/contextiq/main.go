// Command contextiq ingests documents and answers questions from them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/siddhantttt/context-iq/internal/adapters/driven/ai"
	"github.com/siddhantttt/context-iq/internal/adapters/driven/config/file"
	"github.com/siddhantttt/context-iq/internal/adapters/driven/storage/sqlite"
	"github.com/siddhantttt/context-iq/internal/adapters/driving/cli"
	"github.com/siddhantttt/context-iq/internal/core/services"
	"github.com/siddhantttt/context-iq/internal/logger"
	"github.com/siddhantttt/context-iq/internal/normalisers"
	"github.com/siddhantttt/context-iq/internal/normalisers/docx"
	"github.com/siddhantttt/context-iq/internal/normalisers/html"
	"github.com/siddhantttt/context-iq/internal/normalisers/markdown"
	"github.com/siddhantttt/context-iq/internal/normalisers/pdf"
	"github.com/siddhantttt/context-iq/internal/normalisers/plaintext"
	"github.com/siddhantttt/context-iq/internal/postprocessors"
	"github.com/siddhantttt/context-iq/internal/vectorindex"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Startup logs honour --verbose before cobra has parsed it.
	if slices.Contains(os.Args[1:], "--verbose") || slices.Contains(os.Args[1:], "-v") {
		logger.SetVerbose(true)
	}

	// A missing .env is normal; set variables always win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("reading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, os.Getenv)
	cli.SetVersion(version)

	settings, err := settingsService.Get()
	if err != nil {
		// Leave config commands usable so the file can be fixed.
		logger.Warn("invalid settings: %v", err)
		cli.SetServices(cli.Services{Settings: settingsService})
		return cli.Execute(ctx)
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	index, err := vectorindex.Open(settings.Index.Path, settings.Index.Dimensions)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer func() {
		if err := index.Close(); err != nil {
			logger.Error("closing index: %v", err)
		}
	}()

	aiServices, err := ai.Init(ctx, settings, false)
	if err != nil {
		return fmt.Errorf("initialising AI providers: %w", err)
	}
	defer aiServices.Close()
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	chunkers := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(chunkers)
	chunker, err := chunkers.Build(postprocessors.TokenChunker, postprocessors.Config{
		TargetTokens: settings.Chunking.TargetTokens,
		Model:        settings.Embedding.Model,
	})
	if err != nil {
		return fmt.Errorf("building chunker: %w", err)
	}

	extractor := normalisers.NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
		pdf.New(),
	)

	docStore := store.DocumentStore()
	cli.SetServices(cli.Services{
		Ingest: services.NewIngestService(
			normalisers.DetectMIMEType,
			extractor,
			chunker,
			aiServices.EmbeddingService,
			docStore,
			index,
		),
		Retrieval: services.NewRetrievalService(
			docStore,
			index,
			aiServices.EmbeddingService,
			aiServices.LLMService,
			services.RetrievalConfig{
				TopK:            settings.Index.TopK,
				MaxContextChars: settings.Index.MaxContextChars,
				Temperature:     settings.LLM.Temperature,
				MaxTokens:       settings.LLM.MaxTokens,
			},
		),
		Documents: services.NewDocumentService(docStore),
		Settings:  settingsService,
	})

	return cli.Execute(ctx)
}
