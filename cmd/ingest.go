package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eduassist/eduassist/internal/config"
	"github.com/eduassist/eduassist/internal/database"
	"github.com/eduassist/eduassist/internal/gemini"
	"github.com/eduassist/eduassist/internal/knowledge"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest documents into the knowledge base",
	Long: `Reads the given text or markdown files, chunks and embeds their
content, and stores the result for semantic search. Files that were
already ingested are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), args)
	},
}

func runIngest(ctx context.Context, paths []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logger := newLogger()

	pool, err := database.Connect(ctx, cfg.PostgresDSN(), logger)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	client, err := gemini.NewClient(gemini.ClientConfig{
		APIKey:          cfg.GeminiAPIKey,
		GenerationModel: cfg.GenerationModel,
		EmbedderModel:   cfg.EmbedderModel,
		EmbeddingDim:    cfg.EmbeddingDim,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating gemini client: %w", err)
	}

	store := knowledge.NewStore(pool, client, logger)
	ingestor := knowledge.NewIngestor(store, client, logger)

	var failed int
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Error("reading file", "path", path, "error", err)
			failed++
			continue
		}

		name := filepath.Base(path)
		res, err := ingestor.Ingest(ctx, knowledge.SourceDocument{
			SourceFile: name,
			Title:      name,
			Content:    string(content),
		})
		if errors.Is(err, knowledge.ErrSourceExists) {
			logger.Warn("skipping already ingested file", "source_file", name)
			continue
		}
		if err != nil {
			logger.Error("ingesting file", "path", path, "error", err)
			failed++
			continue
		}

		logger.Info("file ingested",
			"source_file", res.SourceFile,
			"chunks", res.ChunksInserted)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}
