package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eduassist/eduassist/internal/api"
	"github.com/eduassist/eduassist/internal/chat"
	"github.com/eduassist/eduassist/internal/config"
	"github.com/eduassist/eduassist/internal/database"
	"github.com/eduassist/eduassist/internal/gemini"
	"github.com/eduassist/eduassist/internal/knowledge"
	"github.com/eduassist/eduassist/internal/library"
	"github.com/eduassist/eduassist/internal/session"
	"github.com/eduassist/eduassist/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	knowledgeStore := knowledge.NewStore(pool, client, logger)
	sessionStore := session.NewStore(pool, logger)
	libraryStore := library.NewStore(pool, logger)
	ingestor := knowledge.NewIngestor(knowledgeStore, client, logger)

	registry := tools.NewRegistry(logger)
	registry.Register(tools.NewListTopics(knowledgeStore))
	registry.Register(tools.NewSearchKnowledgeBase(knowledgeStore))
	registry.Register(tools.NewGenerateObjectives(client))
	registry.Register(tools.NewSaveContent(libraryStore))
	registry.Register(tools.NewIdentifyMisconceptions(knowledgeStore, client))
	registry.Register(tools.NewGenerateLearningPath(client))

	loop := chat.New(client, registry, cfg.MaxLoopIterations, logger)

	server := api.New(api.Config{
		Addr:          cfg.ListenAddr,
		CORSOrigins:   cfg.CORSOrigins,
		TrustProxy:    cfg.TrustProxy,
		RatePerMinute: cfg.RatePerMinute,
		RateBurst:     cfg.RateBurst,
	}, loop, sessionStore, libraryStore, ingestor, pool, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errCh
}
