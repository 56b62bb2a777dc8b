package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"deckgen-server/internal/domain/generation"
	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/interfaces/httpserver/requests"
	"deckgen-server/internal/interfaces/httpserver/responses"
	"deckgen-server/internal/utils/platformerrors"
)

// PresentationHandler serves the presentation lifecycle routes.
type PresentationHandler struct {
	service      presentation.Service
	orchestrator *generation.Orchestrator
	log          zerolog.Logger
}

// NewPresentationHandler wires dependencies for presentation routes.
func NewPresentationHandler(service presentation.Service, orchestrator *generation.Orchestrator, log zerolog.Logger) *PresentationHandler {
	return &PresentationHandler{
		service:      service,
		orchestrator: orchestrator,
		log:          log.With().Str("handler", "presentation").Logger(),
	}
}

// Create handles POST /v1/presentation/create.
func (h *PresentationHandler) Create(c *gin.Context) {
	var req requests.CreatePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "")
		return
	}

	pres, err := h.service.Create(c.Request.Context(), presentation.CreateInput{
		Content:                req.Content,
		NSlides:                req.NSlides,
		Language:               req.Language,
		FilePaths:              req.FilePaths,
		Tone:                   presentation.Tone(req.Tone),
		Verbosity:              presentation.Verbosity(req.Verbosity),
		Instructions:           req.Instructions,
		IncludeTableOfContents: req.IncludeTableOfContents,
		IncludeTitleSlide:      req.IncludeTitleSlide,
		WebSearch:              req.WebSearch,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create presentation")
		return
	}

	c.JSON(http.StatusOK, pres)
}

// Prepare handles POST /v1/presentation/prepare.
func (h *PresentationHandler) Prepare(c *gin.Context) {
	var req requests.PreparePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "")
		return
	}

	pres, err := h.service.Prepare(c.Request.Context(), presentation.PrepareInput{
		ID:       req.PresentationID,
		Outlines: requests.ToOutlines(req.Outlines),
		Layout:   requests.ToLayout(req.Layout),
		Title:    req.Title,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to prepare presentation")
		return
	}

	c.JSON(http.StatusOK, pres)
}

// Stream handles GET /v1/presentation/stream/:id. The response is an SSE
// stream of chunk events forming a JSON array of slides, terminated by a
// complete (or error) event.
func (h *PresentationHandler) Stream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid presentation id", "")
		return
	}

	ctx := c.Request.Context()
	pres, err := h.service.Get(ctx, id)
	if err != nil {
		responses.HandleError(c, err, "presentation not found")
		return
	}
	if !pres.Prepared() {
		responses.HandleNewError(c, platformerrors.ErrorTypePrecondition,
			"presentation must have outlines and a layout before streaming", "")
		return
	}

	responses.SetupSSEHeaders(c)

	emit := func(event generation.Event) error {
		switch event.Type {
		case generation.EventChunk:
			return responses.WriteSSEEvent(c, generation.EventChunk, gin.H{"chunk": event.Chunk})
		case generation.EventComplete:
			return responses.WriteSSEEvent(c, generation.EventComplete, event.Presentation)
		case generation.EventError:
			return responses.WriteSSEEvent(c, generation.EventError, gin.H{"detail": event.Detail})
		}
		return nil
	}

	if err := h.orchestrator.Stream(ctx, pres, emit); err != nil {
		// Past the SSE headers there is no HTTP status left to send; the
		// error event already went out where possible.
		h.log.Error().Err(err).Stringer("presentation_id", id).Msg("stream terminated")
	}
}

// Get handles GET /v1/presentation/:id, returning the cached snapshot.
func (h *PresentationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid presentation id", "")
		return
	}

	snapshot, err := h.service.Snapshot(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "presentation not found")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Update handles PATCH /v1/presentation/update.
func (h *PresentationHandler) Update(c *gin.Context) {
	var req requests.UpdatePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "")
		return
	}

	snapshot, err := h.service.MergeSnapshot(c.Request.Context(), presentation.MergeSnapshotInput{
		ID:      req.PresentationID,
		NSlides: req.NSlides,
		Title:   req.Title,
		Slides:  req.Slides,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to update presentation")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Delete handles DELETE /v1/presentation/:id.
func (h *PresentationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid presentation id", "")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "presentation not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
