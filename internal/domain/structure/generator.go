// Package structure assigns a layout template index to every outline slide.
package structure

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/domain/schema"
	"deckgen-server/internal/infrastructure/metrics"
	"deckgen-server/internal/utils/platformerrors"
)

// StructuredCaller issues a single schema-constrained generation call.
type StructuredCaller interface {
	CompleteStructured(ctx context.Context, name, system, user string, responseSchema schema.Schema) (map[string]any, error)
}

const systemPrompt = `You are an expert presentation designer. For each outline slide, choose the index of the layout template that best serves the slide's content. Consider user instructions, but never change the number of slides.`

// Generator produces the structure mapping outline slides to template indices.
type Generator struct {
	llm StructuredCaller
	log zerolog.Logger
}

// NewGenerator wires the structure generator.
func NewGenerator(llm StructuredCaller, log zerolog.Logger) *Generator {
	return &Generator{
		llm: llm,
		log: log.With().Str("component", "structure-generator").Logger(),
	}
}

// Generate returns exactly one valid template index per outline slide.
// Ordered layouts are assigned positionally without a model call; unordered
// layouts go through one constrained generation call. Out-of-range indices
// from the model are silently remapped to random valid ones.
func (g *Generator) Generate(ctx context.Context, outline *presentation.Outline, layout *presentation.Layout, instructions string) (*presentation.Structure, error) {
	n := len(outline.Slides)
	m := len(layout.Slides)
	if n == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "outline has no slides", nil, "")
	}
	if m == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "layout has no slide templates", nil, "")
	}

	if layout.Ordered {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i % m
		}
		return &presentation.Structure{Slides: indices}, nil
	}

	indices, err := g.generateIndices(ctx, outline, layout, instructions, n)
	if err != nil {
		return nil, err
	}

	indices = fitToLength(indices, n, m)
	g.repairOutOfRange(indices, m)

	return &presentation.Structure{Slides: indices}, nil
}

func (g *Generator) generateIndices(ctx context.Context, outline *presentation.Outline, layout *presentation.Layout, instructions string, n int) ([]int, error) {
	responseSchema := schema.Schema{
		"type": "object",
		"properties": map[string]any{
			"slides": map[string]any{
				"type":        "array",
				"description": "One layout template index per outline slide",
				"items":       map[string]any{"type": "integer"},
				"minItems":    n,
				"maxItems":    n,
			},
		},
		"required": []any{"slides"},
	}

	result, err := g.llm.CompleteStructured(ctx, "presentation_structure", systemPrompt, g.buildUserPrompt(outline, layout, instructions, n), responseSchema)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "structure generation failed")
	}

	raw, ok := result["slides"].([]any)
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "structure generation returned no slides array", nil, "")
	}

	indices := make([]int, 0, len(raw))
	for _, v := range raw {
		switch idx := v.(type) {
		case float64:
			indices = append(indices, int(idx))
		case int:
			indices = append(indices, idx)
		default:
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, fmt.Sprintf("structure generation returned non-integer index %v", v), nil, "")
		}
	}
	return indices, nil
}

func (g *Generator) buildUserPrompt(outline *presentation.Outline, layout *presentation.Layout, instructions string, n int) string {
	templates := make([]map[string]any, 0, len(layout.Slides))
	for i, sl := range layout.Slides {
		templates = append(templates, map[string]any{
			"index":       i,
			"name":        sl.Name,
			"description": sl.Description,
		})
	}
	outlines := make([]string, 0, len(outline.Slides))
	for _, sl := range outline.Slides {
		outlines = append(outlines, sl.Content)
	}

	payload, _ := json.Marshal(map[string]any{
		"layout_name": layout.Name,
		"templates":   templates,
		"outlines":    outlines,
		"n_slides":    n,
	})

	prompt := fmt.Sprintf("Presentation layout and outline:\n%s\n\nChoose the best template index for each of the %d slides.", payload, n)
	if instructions != "" {
		prompt += fmt.Sprintf("\n\nUser instructions:\n%s", instructions)
	}
	return prompt
}

// fitToLength truncates or pads positionally so the model's answer always
// yields exactly n entries.
func fitToLength(indices []int, n, m int) []int {
	if len(indices) > n {
		return indices[:n]
	}
	for i := len(indices); i < n; i++ {
		indices = append(indices, i%m)
	}
	return indices
}

// repairOutOfRange replaces invalid indices with random valid ones. Each
// repair is counted and logged so generator regressions stay observable.
func (g *Generator) repairOutOfRange(indices []int, m int) {
	for i, idx := range indices {
		if idx >= 0 && idx < m {
			continue
		}
		repaired := rand.Intn(m)
		metrics.StructureIndexRepairsTotal.Inc()
		g.log.Warn().
			Int("slide", i).
			Int("index", idx).
			Int("repaired", repaired).
			Int("templates", m).
			Msg("repaired out-of-range structure index")
		indices[i] = repaired
	}
}
