package presentation

import (
	"time"

	"github.com/google/uuid"

	"deckgen-server/internal/domain/schema"
)

// Tone steers the writing voice of generated slide content.
type Tone string

const (
	ToneDefault      Tone = "default"
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
	ToneFunny        Tone = "funny"
	ToneEducational  Tone = "educational"
	ToneSalesPitch   Tone = "sales_pitch"
)

// Verbosity controls how much text the model packs into each field.
type Verbosity string

const (
	VerbosityConcise   Verbosity = "concise"
	VerbosityStandard  Verbosity = "standard"
	VerbosityTextHeavy Verbosity = "text-heavy"
)

// SlideOutline is a short markdown summary of one intended slide.
type SlideOutline struct {
	Content string `json:"content"`
}

// Outline is the ordered list of slide outlines attached at prepare time.
type Outline struct {
	Slides []SlideOutline `json:"slides"`
}

// SlideLayout is one template in a layout catalog, with the schema of the
// fields a slide of this template can hold.
type SlideLayout struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	JSONSchema  schema.Schema `json:"json_schema"`
}

// Layout is a client-supplied named catalog of slide templates. When Ordered
// is true, templates are assigned positionally rather than by a model call.
type Layout struct {
	Name    string        `json:"name"`
	Ordered bool          `json:"ordered"`
	Slides  []SlideLayout `json:"slides"`
}

// Structure maps each outline slide to a template index in the layout catalog.
type Structure struct {
	Slides []int `json:"slides"`
}

// Presentation is the mutable aggregate created by /create and enriched by
// /prepare. It exclusively owns its outline, layout, and structure.
type Presentation struct {
	ID                     uuid.UUID  `json:"id"`
	Content                string     `json:"content"`
	NSlides                int        `json:"n_slides"`
	Language               string     `json:"language"`
	Title                  string     `json:"title,omitempty"`
	FilePaths              []string   `json:"file_paths,omitempty"`
	Tone                   Tone       `json:"tone,omitempty"`
	Verbosity              Verbosity  `json:"verbosity,omitempty"`
	Instructions           string     `json:"instructions,omitempty"`
	IncludeTableOfContents bool       `json:"include_table_of_contents"`
	IncludeTitleSlide      bool       `json:"include_title_slide"`
	WebSearch              bool       `json:"web_search"`
	Outlines               *Outline   `json:"outlines,omitempty"`
	Layout                 *Layout    `json:"layout,omitempty"`
	Structure              *Structure `json:"structure,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// Key implements memstore.Entity.
func (p *Presentation) Key() uuid.UUID { return p.ID }

// Touch implements memstore.Entity.
func (p *Presentation) Touch(now time.Time) { p.UpdatedAt = now }

// Prepared reports whether the presentation has everything streaming needs.
func (p *Presentation) Prepared() bool {
	return p.Layout != nil && p.Structure != nil &&
		p.Outlines != nil && len(p.Outlines.Slides) > 0
}

// Slide is one generated slide. Content conforms to the assigned template's
// schema; image/icon fields hold prompts/queries plus (eventually) URLs.
type Slide struct {
	ID             string         `json:"id"`
	PresentationID uuid.UUID      `json:"presentation_id"`
	LayoutGroup    string         `json:"layout_group"`
	LayoutID       string         `json:"layout_id"`
	Index          int            `json:"index"`
	SpeakerNote    string         `json:"speaker_note"`
	Content        map[string]any `json:"content"`
}

// PresentationWithSlides is the frozen snapshot produced once streaming
// completes: presentation metadata plus the final ordered slide list.
// AssetWarnings records asset fetches that fell back to placeholders.
type PresentationWithSlides struct {
	ID            uuid.UUID `json:"id"`
	Content       string    `json:"content"`
	NSlides       int       `json:"n_slides"`
	Language      string    `json:"language"`
	Title         string    `json:"title,omitempty"`
	Tone          Tone      `json:"tone,omitempty"`
	Verbosity     Verbosity `json:"verbosity,omitempty"`
	Slides        []Slide   `json:"slides"`
	AssetWarnings []string  `json:"asset_warnings,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Key implements memstore.Entity.
func (p *PresentationWithSlides) Key() uuid.UUID { return p.ID }

// Touch implements memstore.Entity.
func (p *PresentationWithSlides) Touch(now time.Time) { p.UpdatedAt = now }

// Snapshot freezes the presentation together with its generated slides.
func (p *Presentation) Snapshot(slides []Slide, warnings []string) *PresentationWithSlides {
	now := time.Now().UTC()
	return &PresentationWithSlides{
		ID:            p.ID,
		Content:       p.Content,
		NSlides:       p.NSlides,
		Language:      p.Language,
		Title:         p.Title,
		Tone:          p.Tone,
		Verbosity:     p.Verbosity,
		Slides:        slides,
		AssetWarnings: warnings,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     now,
	}
}
