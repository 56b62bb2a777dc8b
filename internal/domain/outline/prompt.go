// Package outline builds the chat request that streams a markdown outline
// for a presentation.
package outline

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"deckgen-server/internal/domain/presentation"
)

const systemPrompt = `You are an expert presentation writer. Produce an outline for a presentation as markdown.

Rules:
- Emit exactly the requested number of slides.
- Each slide starts with a markdown heading followed by 100 to 300 characters of body text summarizing that slide.
- Write in the requested language and match the requested tone.
- Ground the outline in the provided source material when present; never invent citations.
- Output markdown only, no surrounding commentary.`

// BuildRequest renders the outline chat request for a presentation, with
// optional source material gathered from uploaded files or web search.
func BuildRequest(pres *presentation.Presentation, source string) openai.ChatCompletionRequest {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create an outline for a %d-slide presentation about:\n%s\n", pres.NSlides, pres.Content)
	fmt.Fprintf(&sb, "\nLanguage: %s\n", pres.Language)
	if pres.Tone != "" {
		fmt.Fprintf(&sb, "Tone: %s\n", pres.Tone)
	}
	if pres.Verbosity != "" {
		fmt.Fprintf(&sb, "Verbosity: %s\n", pres.Verbosity)
	}
	if pres.Instructions != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n", pres.Instructions)
	}
	if pres.IncludeTitleSlide {
		sb.WriteString("The first slide is a title slide.\n")
	}
	if pres.IncludeTableOfContents {
		sb.WriteString("Include a table of contents slide near the start.\n")
	}
	if source != "" {
		fmt.Fprintf(&sb, "\nSource material:\n%s\n", source)
	}

	return openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	}
}
