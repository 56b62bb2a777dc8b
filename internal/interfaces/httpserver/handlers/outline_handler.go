package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"deckgen-server/internal/domain/outline"
	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/infrastructure/llmclient"
	"deckgen-server/internal/infrastructure/tempstorage"
	"deckgen-server/internal/infrastructure/websearch"
	"deckgen-server/internal/interfaces/httpserver/requests"
	"deckgen-server/internal/interfaces/httpserver/responses"
	"deckgen-server/internal/utils/decktext"
	"deckgen-server/internal/utils/platformerrors"
)

// OutlineHandler streams markdown outlines for presentations.
type OutlineHandler struct {
	service          presentation.Service
	llm              *llmclient.Client
	storage          *tempstorage.TempStorage
	search           *websearch.Client
	sourceCharBudget int
	log              zerolog.Logger
}

// NewOutlineHandler wires dependencies for outline routes.
func NewOutlineHandler(service presentation.Service, llm *llmclient.Client, storage *tempstorage.TempStorage, search *websearch.Client, sourceCharBudget int, log zerolog.Logger) *OutlineHandler {
	return &OutlineHandler{
		service:          service,
		llm:              llm,
		storage:          storage,
		search:           search,
		sourceCharBudget: sourceCharBudget,
		log:              log.With().Str("handler", "outline").Logger(),
	}
}

// Stream handles POST /v1/outline/stream. The chat-shaped body's first
// message id resolves the presentation; its content is replaced with the
// gathered source material. Uploaded file contents win over web search;
// either is truncated to the configured character budget before prompting.
func (h *OutlineHandler) Stream(c *gin.Context) {
	var req requests.OutlineStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "")
		return
	}
	id, err := req.PresentationID()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "messages[0].id is not a valid presentation id", "")
		return
	}

	ctx := c.Request.Context()
	pres, err := h.service.Get(ctx, id)
	if err != nil {
		responses.HandleError(c, err, "presentation not found")
		return
	}

	source := h.sourceMaterial(ctx, pres)
	request := outline.BuildRequest(pres, source)

	if err := h.llm.StreamToContext(c, request); err != nil {
		h.log.Error().Err(err).Stringer("presentation_id", pres.ID).Msg("outline stream terminated")
	}
}

func (h *OutlineHandler) sourceMaterial(ctx context.Context, pres *presentation.Presentation) string {
	if len(pres.FilePaths) > 0 {
		var parts []string
		for _, path := range pres.FilePaths {
			content, err := h.storage.Read(ctx, path)
			if err != nil {
				h.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable source file")
				continue
			}
			parts = append(parts, content)
		}
		if len(parts) > 0 {
			return decktext.TruncateBudget(strings.Join(parts, "\n\n"), h.sourceCharBudget)
		}
	}

	if pres.WebSearch && h.search.Enabled() {
		source, err := h.search.SourceMaterial(ctx, pres.Content)
		if err != nil {
			h.log.Warn().Err(err).Msg("web search failed, generating without source material")
			return ""
		}
		return decktext.TruncateBudget(source, h.sourceCharBudget)
	}

	return ""
}
