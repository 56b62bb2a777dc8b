package handlers

import (
	"github.com/rs/zerolog"

	"deckgen-server/internal/domain/generation"
	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/infrastructure/llmclient"
	"deckgen-server/internal/infrastructure/tempstorage"
	"deckgen-server/internal/infrastructure/websearch"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Presentation *PresentationHandler
	Outline      *OutlineHandler
	File         *FileHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	service presentation.Service,
	orchestrator *generation.Orchestrator,
	llm *llmclient.Client,
	storage *tempstorage.TempStorage,
	search *websearch.Client,
	sourceCharBudget int,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Presentation: NewPresentationHandler(service, orchestrator, log),
		Outline:      NewOutlineHandler(service, llm, storage, search, sourceCharBudget, log),
		File:         NewFileHandler(storage, log),
	}
}
