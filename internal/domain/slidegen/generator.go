// Package slidegen fills one slide template with schema-valid content.
package slidegen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/domain/schema"
	"deckgen-server/internal/utils/platformerrors"
)

// StructuredCaller issues a single schema-constrained generation call.
type StructuredCaller interface {
	CompleteStructured(ctx context.Context, name, system, user string, responseSchema schema.Schema) (map[string]any, error)
}

const systemPrompt = `Generate structured slide content from the provided outline.

# Steps
1. Analyze the outline.
2. Generate structured slide content following the slide schema.

# Notes
- Never use phrases like "This slide" or "This presentation" in the body.
- Rephrase the outline so the slide reads naturally.
- Use Markdown only to emphasize key points.
- Follow the requested language.
- Strictly respect the minimum and maximum character limits of every field. Exceeding a maximum breaks the slide design; plan the wording before writing.
- Never exceed an array's maximum item count; merge points if needed to stay within it.
- Do not use emoji.
- Keep metrics short and abbreviated rather than spelled out.
- User instructions always take priority over the conveniences above, but never over the character limits, the slide schema, or the item counts.

# Image and icon output format
image: { "__image_prompt__": string }
icon: { "__icon_query__": string }`

// Request carries everything needed to fill one slide.
type Request struct {
	Layout       presentation.SlideLayout
	OutlineText  string
	Language     string
	Tone         presentation.Tone
	Verbosity    presentation.Verbosity
	Instructions string
}

// Result is the schema-valid content map plus the extracted speaker note.
// Image/icon fields still hold prompts/queries, not resolved URLs.
type Result struct {
	Content     map[string]any
	SpeakerNote string
}

// Generator produces validated slide content via constrained model calls.
type Generator struct {
	llm StructuredCaller
	log zerolog.Logger
}

// NewGenerator wires the slide content generator.
func NewGenerator(llm StructuredCaller, log zerolog.Logger) *Generator {
	return &Generator{
		llm: llm,
		log: log.With().Str("component", "slide-generator").Logger(),
	}
}

// Generate builds the response schema for the slide's template, invokes the
// model, and validates the output before accepting it. A schema-violating
// response fails this slide; the caller decides what that means for the
// stream.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	responseSchema := req.Layout.JSONSchema.
		RemoveFields(schema.FieldImageURL, schema.FieldIconURL).
		AddField(schema.FieldSpeakerNote, schema.SpeakerNoteDef(), true)

	result, err := g.llm.CompleteStructured(ctx, req.Layout.ID, systemPrompt, g.buildUserPrompt(req), responseSchema)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, fmt.Sprintf("content generation failed for template %s", req.Layout.ID))
	}

	if err := responseSchema.Validate(result); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("content for template %s violates schema", req.Layout.ID), err, "")
	}

	note, _ := result[schema.FieldSpeakerNote].(string)
	delete(result, schema.FieldSpeakerNote)

	return &Result{Content: result, SpeakerNote: note}, nil
}

func (g *Generator) buildUserPrompt(req Request) string {
	schemaJSON, _ := json.Marshal(req.Layout.JSONSchema.RemoveFields(schema.FieldImageURL, schema.FieldIconURL))

	prompt := fmt.Sprintf("Slide outline:\n%s\n\nSlide schema (respect every min/max constraint):\n%s\n\nLanguage: %s",
		req.OutlineText, schemaJSON, req.Language)
	if req.Tone != "" {
		prompt += fmt.Sprintf("\nTone: %s", req.Tone)
	}
	if req.Verbosity != "" {
		prompt += fmt.Sprintf("\nVerbosity: %s", req.Verbosity)
	}
	if req.Instructions != "" {
		prompt += fmt.Sprintf("\n\nUser instructions:\n%s", req.Instructions)
	}
	return prompt
}
