package presentation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"deckgen-server/internal/utils/decktext"
	"deckgen-server/internal/utils/platformerrors"
)

// StructureGenerator assigns a layout template index to every outline slide.
type StructureGenerator interface {
	Generate(ctx context.Context, outline *Outline, layout *Layout, instructions string) (*Structure, error)
}

// CreateInput carries the /create request payload.
type CreateInput struct {
	Content                string
	NSlides                int
	Language               string
	FilePaths              []string
	Tone                   Tone
	Verbosity              Verbosity
	Instructions           string
	IncludeTableOfContents bool
	IncludeTitleSlide      bool
	WebSearch              bool
}

// PrepareInput carries the /prepare request payload.
type PrepareInput struct {
	ID       uuid.UUID
	Outlines []SlideOutline
	Layout   Layout
	Title    string
}

// MergeSnapshotInput carries the partial-update payload for a cached
// PresentationWithSlides.
type MergeSnapshotInput struct {
	ID      uuid.UUID
	NSlides *int
	Title   *string
	Slides  []Slide
}

// Service is the business surface for presentation lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Presentation, error)
	Get(ctx context.Context, id uuid.UUID) (*Presentation, error)
	Prepare(ctx context.Context, input PrepareInput) (*Presentation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Snapshot(ctx context.Context, id uuid.UUID) (*PresentationWithSlides, error)
	MergeSnapshot(ctx context.Context, input MergeSnapshotInput) (*PresentationWithSlides, error)
}

type service struct {
	repo      Repository
	snapshots SnapshotRepository
	structGen StructureGenerator
	log       zerolog.Logger
}

// NewService wires the presentation service.
func NewService(repo Repository, snapshots SnapshotRepository, structGen StructureGenerator, log zerolog.Logger) Service {
	return &service{
		repo:      repo,
		snapshots: snapshots,
		structGen: structGen,
		log:       log.With().Str("component", "presentation-service").Logger(),
	}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Presentation, error) {
	if input.NSlides <= 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"n_slides must be positive", nil, "")
	}
	if input.IncludeTableOfContents && input.NSlides < 3 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"number of slides cannot be less than 3 if table of contents is included", nil, "")
	}

	tone := input.Tone
	if tone == "" {
		tone = ToneDefault
	}
	verbosity := input.Verbosity
	if verbosity == "" {
		verbosity = VerbosityStandard
	}

	now := time.Now().UTC()
	pres := &Presentation{
		ID:                     uuid.New(),
		Content:                input.Content,
		NSlides:                input.NSlides,
		Language:               input.Language,
		FilePaths:              input.FilePaths,
		Tone:                   tone,
		Verbosity:              verbosity,
		Instructions:           input.Instructions,
		IncludeTableOfContents: input.IncludeTableOfContents,
		IncludeTitleSlide:      input.IncludeTitleSlide,
		WebSearch:              input.WebSearch,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	s.log.Info().Stringer("presentation_id", pres.ID).Int("n_slides", pres.NSlides).Msg("presentation created")
	return s.repo.Create(pres), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Presentation, error) {
	pres, ok := s.repo.Get(id)
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"presentation not found", nil, "")
	}
	return pres, nil
}

func (s *service) Prepare(ctx context.Context, input PrepareInput) (*Presentation, error) {
	if len(input.Outlines) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"outlines cannot be empty", nil, "")
	}
	if len(input.Layout.Slides) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"layout must contain at least one slide template", nil, "")
	}

	pres, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	outline := &Outline{Slides: input.Outlines}
	layout := input.Layout

	structure, err := s.structGen.Generate(ctx, outline, &layout, pres.Instructions)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate presentation structure")
	}

	pres.Outlines = outline
	pres.Layout = &layout
	pres.Structure = structure
	if input.Title != "" {
		pres.Title = input.Title
	} else if pres.Title == "" {
		pres.Title = decktext.TitleFromOutline(outline.Slides[0].Content)
	}

	s.log.Info().
		Stringer("presentation_id", pres.ID).
		Int("outline_slides", len(outline.Slides)).
		Str("layout", layout.Name).
		Bool("ordered", layout.Ordered).
		Msg("presentation prepared")

	return s.repo.Update(pres), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found := s.repo.Delete(id)
	s.snapshots.Delete(id)
	if !found {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"presentation not found", nil, "")
	}
	return nil
}

func (s *service) Snapshot(ctx context.Context, id uuid.UUID) (*PresentationWithSlides, error) {
	snapshot, ok := s.snapshots.Get(id)
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"presentation with slides not found", nil, "")
	}
	return snapshot, nil
}

func (s *service) MergeSnapshot(ctx context.Context, input MergeSnapshotInput) (*PresentationWithSlides, error) {
	snapshot, err := s.Snapshot(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.NSlides != nil {
		snapshot.NSlides = *input.NSlides
	}
	if input.Title != nil {
		snapshot.Title = *input.Title
	}
	if input.Slides != nil {
		snapshot.Slides = input.Slides
	}

	return s.snapshots.Update(snapshot), nil
}
