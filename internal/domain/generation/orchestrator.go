// Package generation drives the per-slide streaming loop: emit slide content
// chunks in order on the fast path, fan asset resolution out in the
// background, and join everything before publishing the final aggregate.
package generation

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"deckgen-server/internal/domain/assets"
	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/domain/slidegen"
	"deckgen-server/internal/infrastructure/metrics"
	"deckgen-server/internal/utils/idgen"
	"deckgen-server/internal/utils/platformerrors"
)

// Event kinds emitted on the stream.
const (
	EventChunk    = "chunk"
	EventComplete = "complete"
	EventError    = "error"
)

// Event is one wire event. Chunk events carry fragments of a streamed JSON
// array-of-slides document; the complete event carries the final aggregate.
type Event struct {
	Type         string
	Chunk        string
	Presentation *presentation.PresentationWithSlides
	Detail       string
}

// Emitter delivers one event to the client. A returned error aborts the
// stream (the client is gone).
type Emitter func(Event) error

// SlideGenerator produces validated content for one slide.
type SlideGenerator interface {
	Generate(ctx context.Context, req slidegen.Request) (*slidegen.Result, error)
}

// Orchestrator runs the streaming state machine for prepared presentations.
type Orchestrator struct {
	slides    SlideGenerator
	pipeline  *assets.Pipeline
	snapshots presentation.SnapshotRepository
	log       zerolog.Logger
}

// NewOrchestrator wires the streaming orchestrator.
func NewOrchestrator(slides SlideGenerator, pipeline *assets.Pipeline, snapshots presentation.SnapshotRepository, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		slides:    slides,
		pipeline:  pipeline,
		snapshots: snapshots,
		log:       log.With().Str("component", "stream-orchestrator").Logger(),
	}
}

// Stream generates every slide of a prepared presentation sequentially,
// emitting each as soon as its content is ready. Asset fetches for emitted
// slides run concurrently with later slides' generation and are joined only
// after the closing chunk; the terminal complete event carries the cached
// PresentationWithSlides. A content-generation failure at slide k emits an
// error event and stops without retracting slides before k.
func (o *Orchestrator) Stream(ctx context.Context, pres *presentation.Presentation, emit Emitter) error {
	if !pres.Prepared() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypePrecondition,
			"presentation is not prepared for streaming", nil, "")
	}

	if err := emit(Event{Type: EventChunk, Chunk: "["}); err != nil {
		return err
	}

	run := o.pipeline.NewRun(ctx)
	slides := make([]presentation.Slide, 0, len(pres.Outlines.Slides))

	for i, outline := range pres.Outlines.Slides {
		layout := pres.Layout.Slides[pres.Structure.Slides[i]]

		result, err := o.slides.Generate(ctx, slidegen.Request{
			Layout:       layout,
			OutlineText:  outline.Content,
			Language:     pres.Language,
			Tone:         pres.Tone,
			Verbosity:    pres.Verbosity,
			Instructions: pres.Instructions,
		})
		if err != nil {
			o.log.Error().Err(err).Int("slide", i).Stringer("presentation_id", pres.ID).Msg("slide generation failed, aborting stream")
			return o.fail(run, emit, err.Error())
		}

		slide, err := o.buildSlide(ctx, pres, layout, i, result)
		if err != nil {
			return o.fail(run, emit, err.Error())
		}

		assets.InsertPlaceholders(slide.Content)

		payload, err := json.Marshal(slide)
		if err != nil {
			return o.fail(run, emit, "failed to serialize slide")
		}

		fragment := string(payload)
		if i > 0 {
			fragment = "," + fragment
		}
		if err := emit(Event{Type: EventChunk, Chunk: fragment}); err != nil {
			run.Wait()
			return err
		}

		// Scheduled after emission so the fast path never races the
		// background mutation of the slide's content maps.
		run.Schedule(&slide)
		slides = append(slides, slide)
		metrics.SlidesGeneratedTotal.Inc()
	}

	if err := emit(Event{Type: EventChunk, Chunk: "]"}); err != nil {
		run.Wait()
		return err
	}

	warnings := run.Wait()

	snapshot := pres.Snapshot(slides, warnings)
	o.snapshots.Create(snapshot)

	metrics.GenerationStreamsTotal.WithLabelValues("complete").Inc()
	return emit(Event{Type: EventComplete, Presentation: snapshot})
}

// fail tells the client the stream died before draining pending asset
// fetches, so the error is not delayed behind slow providers. The drain
// still runs so nothing outlives the stream.
func (o *Orchestrator) fail(run *assets.Run, emit Emitter, detail string) error {
	metrics.GenerationStreamsTotal.WithLabelValues("error").Inc()
	err := emit(Event{Type: EventError, Detail: detail})
	run.Wait()
	return err
}

func (o *Orchestrator) buildSlide(ctx context.Context, pres *presentation.Presentation, layout presentation.SlideLayout, index int, result *slidegen.Result) (presentation.Slide, error) {
	id, err := idgen.GenerateSecureID("slide", 16)
	if err != nil {
		return presentation.Slide{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate slide id")
	}
	return presentation.Slide{
		ID:             id,
		PresentationID: pres.ID,
		LayoutGroup:    pres.Layout.Name,
		LayoutID:       layout.ID,
		Index:          index,
		SpeakerNote:    result.SpeakerNote,
		Content:        result.Content,
	}, nil
}
