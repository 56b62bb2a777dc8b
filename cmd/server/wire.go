//go:build wireinject

package main

import (
	"time"

	"github.com/google/wire"
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
	repo "deckgen-server/internal/infrastructure/repository/presentation"
	"deckgen-server/internal/infrastructure/tempstorage"
	"deckgen-server/internal/infrastructure/websearch"
	"deckgen-server/internal/interfaces/httpserver"
	"deckgen-server/internal/interfaces/httpserver/handlers"
)

var generationSet = wire.NewSet(
	repo.NewInMemoryRepository,
	repo.NewInMemorySnapshotRepository,
	structure.NewGenerator,
	wire.Bind(new(structure.StructuredCaller), new(*llmclient.Client)),
	wire.Bind(new(slidegen.StructuredCaller), new(*llmclient.Client)),
	wire.Bind(new(domain.StructureGenerator), new(*structure.Generator)),
	slidegen.NewGenerator,
	wire.Bind(new(generation.SlideGenerator), new(*slidegen.Generator)),
	assets.NewPipeline,
	wire.Bind(new(assets.Fetcher), new(*assetfetch.Client)),
	generation.NewOrchestrator,
	domain.NewService,
)

// BuildApplication assembles the deck generation service with Wire.
func BuildApplication() (*Application, error) {
	wire.Build(
		config.Load,
		newLogger,
		newTempStorage,
		newLLMClient,
		newAssetFetcher,
		newWebSearch,
		newSourceCharBudget,
		generationSet,
		handlers.NewProvider,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}

func newTempStorage(cfg *config.Config, log zerolog.Logger) (*tempstorage.TempStorage, error) {
	return tempstorage.New(cfg.TempStoragePath, log)
}

func newLLMClient(cfg *config.Config, log zerolog.Logger) *llmclient.Client {
	httpClient := resty.New().SetTimeout(cfg.LLMTimeout)
	return llmclient.NewClient(httpClient, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, log)
}

func newAssetFetcher(cfg *config.Config, log zerolog.Logger) *assetfetch.Client {
	httpClient := resty.New().SetTimeout(30 * time.Second)
	return assetfetch.NewClient(httpClient, cfg.PexelsAPIKey, log)
}

func newWebSearch(cfg *config.Config, log zerolog.Logger) *websearch.Client {
	httpClient := resty.New().SetTimeout(30 * time.Second)
	return websearch.NewClient(httpClient, cfg.SerperAPIKey, log)
}

func newSourceCharBudget(cfg *config.Config) int {
	return cfg.SourceCharBudget
}
