package requests

import (
	"github.com/google/uuid"

	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/domain/schema"
)

// CreatePresentationRequest creates a presentation shell to be prepared and
// streamed later.
type CreatePresentationRequest struct {
	Content                string   `json:"content" binding:"required"`
	NSlides                int      `json:"n_slides" binding:"required"`
	Language               string   `json:"language" binding:"required"`
	FilePaths              []string `json:"file_paths"`
	Tone                   string   `json:"tone"`
	Verbosity              string   `json:"verbosity"`
	Instructions           string   `json:"instructions"`
	IncludeTableOfContents bool     `json:"include_table_of_contents"`
	IncludeTitleSlide      bool     `json:"include_title_slide"`
	WebSearch              bool     `json:"web_search"`
}

// SlideOutlineRequest is one outline entry.
type SlideOutlineRequest struct {
	Content string `json:"content" binding:"required"`
}

// SlideLayoutRequest is one template in the submitted layout catalog.
type SlideLayoutRequest struct {
	ID          string         `json:"id" binding:"required"`
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	JSONSchema  map[string]any `json:"json_schema" binding:"required"`
}

// LayoutRequest is the layout catalog submitted at prepare time.
type LayoutRequest struct {
	Name    string               `json:"name" binding:"required"`
	Ordered bool                 `json:"ordered"`
	Slides  []SlideLayoutRequest `json:"slides" binding:"required"`
}

// PreparePresentationRequest attaches outlines and a layout to a
// presentation and generates its structure.
type PreparePresentationRequest struct {
	PresentationID uuid.UUID             `json:"presentation_id" binding:"required"`
	Outlines       []SlideOutlineRequest `json:"outlines"`
	Layout         LayoutRequest         `json:"layout" binding:"required"`
	Title          string                `json:"title"`
}

// UpdatePresentationRequest merges fields into a cached presentation
// snapshot. Pointer fields distinguish absent from zero.
type UpdatePresentationRequest struct {
	PresentationID uuid.UUID            `json:"presentation_id" binding:"required"`
	NSlides        *int                 `json:"n_slides"`
	Title          *string              `json:"title"`
	Slides         []presentation.Slide `json:"slides"`
}

// OutlineMessage is one chat message in an outline stream request. The first
// message's id carries the presentation id.
type OutlineMessage struct {
	ID      string `json:"id" binding:"required"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OutlineStreamRequest streams an outline for an existing presentation. The
// body is chat-shaped; the first message identifies the presentation and its
// content is replaced server-side with the gathered source material.
type OutlineStreamRequest struct {
	Messages []OutlineMessage `json:"messages" binding:"required,min=1,dive"`
}

// PresentationID parses the presentation id from the first message.
func (r OutlineStreamRequest) PresentationID() (uuid.UUID, error) {
	return uuid.Parse(r.Messages[0].ID)
}

// ToOutlines converts request outlines to domain outlines.
func ToOutlines(in []SlideOutlineRequest) []presentation.SlideOutline {
	out := make([]presentation.SlideOutline, 0, len(in))
	for _, o := range in {
		out = append(out, presentation.SlideOutline{Content: o.Content})
	}
	return out
}

// ToLayout converts a request layout to the domain layout catalog.
func ToLayout(in LayoutRequest) presentation.Layout {
	slides := make([]presentation.SlideLayout, 0, len(in.Slides))
	for _, s := range in.Slides {
		slides = append(slides, presentation.SlideLayout{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			JSONSchema:  schema.Schema(s.JSONSchema),
		})
	}
	return presentation.Layout{
		Name:    in.Name,
		Ordered: in.Ordered,
		Slides:  slides,
	}
}
