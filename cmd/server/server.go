package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"deckgen-server/internal/config"
	"deckgen-server/internal/domain/assets"
	"deckgen-server/internal/domain/generation"
	domain "deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/domain/slidegen"
	"deckgen-server/internal/domain/structure"
	"deckgen-server/internal/infrastructure/assetfetch"
	"deckgen-server/internal/infrastructure/llmclient"
	"deckgen-server/internal/infrastructure/logger"
	"deckgen-server/internal/infrastructure/observability"
	repo "deckgen-server/internal/infrastructure/repository/presentation"
	"deckgen-server/internal/infrastructure/tempstorage"
	"deckgen-server/internal/infrastructure/websearch"
	"deckgen-server/internal/interfaces/httpserver"
	"deckgen-server/internal/interfaces/httpserver/handlers"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	storage, err := tempstorage.New(cfg.TempStoragePath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize temp storage")
	}

	llmHTTPClient := resty.New().SetTimeout(cfg.LLMTimeout)
	assetHTTPClient := resty.New().SetTimeout(30 * time.Second)

	llm := llmclient.NewClient(llmHTTPClient, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, log)
	fetcher := assetfetch.NewClient(assetHTTPClient, cfg.PexelsAPIKey, log)
	search := websearch.NewClient(assetHTTPClient, cfg.SerperAPIKey, log)

	presentationRepo := repo.NewInMemoryRepository()
	snapshotRepo := repo.NewInMemorySnapshotRepository()

	structGen := structure.NewGenerator(llm, log)
	slideGen := slidegen.NewGenerator(llm, log)
	pipeline := assets.NewPipeline(fetcher, log)
	orchestrator := generation.NewOrchestrator(slideGen, pipeline, snapshotRepo, log)
	service := domain.NewService(presentationRepo, snapshotRepo, structGen, log)

	handlerProvider := handlers.NewProvider(service, orchestrator, llm, storage, search, cfg.SourceCharBudget, log)
	httpServer := httpserver.New(cfg, log, handlerProvider)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
