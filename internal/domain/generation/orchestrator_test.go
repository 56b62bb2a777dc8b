package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"deckgen-server/internal/domain/assets"
	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/domain/schema"
	"deckgen-server/internal/domain/slidegen"
	"deckgen-server/internal/infrastructure/repository/memstore"
)

type stubSlideGen struct {
	failAt int // 1-based call number that fails, 0 for never
	calls  int
}

func (s *stubSlideGen) Generate(ctx context.Context, req slidegen.Request) (*slidegen.Result, error) {
	s.calls++
	if s.failAt > 0 && s.calls == s.failAt {
		return nil, errors.New("model unavailable")
	}
	return &slidegen.Result{
		Content: map[string]any{
			"title": "Generated from: " + req.OutlineText,
			"image": map[string]any{
				schema.FieldImagePrompt: "an illustration of " + req.OutlineText,
			},
		},
		SpeakerNote: strings.Repeat("Walk the audience through this point with a concrete example. ", 2)[:110],
	}, nil
}

type stubFetcher struct {
	delay time.Duration
	err   error
}

func (f *stubFetcher) FetchImage(ctx context.Context, prompt string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return "https://example.test/" + strings.ReplaceAll(prompt, " ", "-") + ".jpg", nil
}

func (f *stubFetcher) FetchIcon(ctx context.Context, query string) (string, error) {
	return "https://example.test/icon.svg", nil
}

func preparedPresentation(n int) *presentation.Presentation {
	outlines := make([]presentation.SlideOutline, n)
	indices := make([]int, n)
	for i := range outlines {
		outlines[i] = presentation.SlideOutline{Content: "topic"}
		indices[i] = 0
	}
	return &presentation.Presentation{
		ID:       uuid.New(),
		Content:  "a launch deck",
		NSlides:  n,
		Language: "English",
		Title:    "Launch",
		Outlines: &presentation.Outline{Slides: outlines},
		Layout: &presentation.Layout{
			Name:    "default",
			Ordered: true,
			Slides: []presentation.SlideLayout{{
				ID:   "basic",
				Name: "Basic",
				JSONSchema: schema.Schema{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
						"image": map[string]any{
							"type": "object",
							"properties": map[string]any{
								schema.FieldImagePrompt: map[string]any{"type": "string"},
								schema.FieldImageURL:    map[string]any{"type": "string"},
							},
						},
					},
				},
			}},
		},
		Structure: &presentation.Structure{Slides: indices},
	}
}

type capturedEvents struct {
	events []Event
}

func (c *capturedEvents) emit(e Event) error {
	c.events = append(c.events, e)
	return nil
}

func (c *capturedEvents) chunks() []string {
	var out []string
	for _, e := range c.events {
		if e.Type == EventChunk {
			out = append(out, e.Chunk)
		}
	}
	return out
}

func (c *capturedEvents) last() Event {
	return c.events[len(c.events)-1]
}

func newTestOrchestrator(gen SlideGenerator, fetcher assets.Fetcher) (*Orchestrator, presentation.SnapshotRepository) {
	snapshots := memstore.New[uuid.UUID, *presentation.PresentationWithSlides]()
	pipeline := assets.NewPipeline(fetcher, zerolog.Nop())
	return NewOrchestrator(gen, pipeline, snapshots, zerolog.Nop()), snapshots
}

func TestStreamEmitsFramedSlideArray(t *testing.T) {
	orch, snapshots := newTestOrchestrator(&stubSlideGen{}, &stubFetcher{})
	pres := preparedPresentation(3)
	captured := &capturedEvents{}

	if err := orch.Stream(context.Background(), pres, captured.emit); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	chunks := captured.chunks()
	if len(chunks) != 5 {
		t.Fatalf("got %d chunk events, want n+2 = 5", len(chunks))
	}
	if chunks[0] != "[" || chunks[len(chunks)-1] != "]" {
		t.Errorf("framing chunks = %q ... %q", chunks[0], chunks[len(chunks)-1])
	}

	var slides []presentation.Slide
	if err := json.Unmarshal([]byte(strings.Join(chunks, "")), &slides); err != nil {
		t.Fatalf("concatenated chunks are not a JSON array: %v", err)
	}
	if len(slides) != 3 {
		t.Fatalf("decoded %d slides, want 3", len(slides))
	}
	for i, slide := range slides {
		if slide.Index != i {
			t.Errorf("slide %d emitted out of order (index %d)", i, slide.Index)
		}
		if slide.PresentationID != pres.ID {
			t.Errorf("slide %d has wrong presentation id", i)
		}
	}

	last := captured.last()
	if last.Type != EventComplete {
		t.Fatalf("last event = %s, want complete", last.Type)
	}
	if _, ok := snapshots.Get(pres.ID); !ok {
		t.Error("snapshot not cached after complete")
	}
}

func TestEmittedSlidesCarryPlaceholders(t *testing.T) {
	// Slow fetches must never show up in the chunk payloads.
	orch, _ := newTestOrchestrator(&stubSlideGen{}, &stubFetcher{delay: 200 * time.Millisecond})
	pres := preparedPresentation(1)
	captured := &capturedEvents{}

	if err := orch.Stream(context.Background(), pres, captured.emit); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var slides []presentation.Slide
	if err := json.Unmarshal([]byte(strings.Join(captured.chunks(), "")), &slides); err != nil {
		t.Fatalf("decode chunks: %v", err)
	}
	image := slides[0].Content["image"].(map[string]any)
	if image[schema.FieldImageURL] != assets.PlaceholderImageURL {
		t.Errorf("chunk image url = %v, want placeholder", image[schema.FieldImageURL])
	}

	// The complete event fires only after the join barrier, so by then the
	// same content map holds the resolved URL.
	complete := captured.last()
	if complete.Type != EventComplete {
		t.Fatalf("last event = %s", complete.Type)
	}
	finalImage := complete.Presentation.Slides[0].Content["image"].(map[string]any)
	url, _ := finalImage[schema.FieldImageURL].(string)
	if !strings.HasPrefix(url, "https://example.test/") {
		t.Errorf("final image url = %q, want resolved", url)
	}
}

func TestMidStreamFailureTruncates(t *testing.T) {
	orch, snapshots := newTestOrchestrator(&stubSlideGen{failAt: 3}, &stubFetcher{})
	pres := preparedPresentation(4)
	captured := &capturedEvents{}

	if err := orch.Stream(context.Background(), pres, captured.emit); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	chunks := captured.chunks()
	// Opening frame plus the two slides generated before the failure.
	if len(chunks) != 3 {
		t.Fatalf("got %d chunk events, want 3", len(chunks))
	}

	last := captured.last()
	if last.Type != EventError {
		t.Fatalf("last event = %s, want error", last.Type)
	}
	for _, e := range captured.events {
		if e.Type == EventComplete {
			t.Error("complete event emitted after failure")
		}
	}
	if _, ok := snapshots.Get(pres.ID); ok {
		t.Error("snapshot cached despite failure")
	}
}

func TestErrorEventOutrunsPendingFetches(t *testing.T) {
	fetchDelay := 300 * time.Millisecond
	orch, _ := newTestOrchestrator(&stubSlideGen{failAt: 2}, &stubFetcher{delay: fetchDelay})
	pres := preparedPresentation(3)

	start := time.Now()
	var errorAt time.Time
	emit := func(e Event) error {
		if e.Type == EventError {
			errorAt = time.Now()
		}
		return nil
	}

	if err := orch.Stream(context.Background(), pres, emit); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	if errorAt.IsZero() {
		t.Fatal("no error event emitted")
	}
	// The failure happens while slide 1's fetch is still in flight; the
	// client must not wait for that fetch to learn the stream died.
	if waited := errorAt.Sub(start); waited >= fetchDelay {
		t.Errorf("error event delayed %v behind pending fetches", waited)
	}
	// The drain still happens before Stream returns.
	if total := time.Since(start); total < fetchDelay {
		t.Errorf("Stream returned after %v, before pending fetches settled", total)
	}
}

func TestAssetFailureIsSoft(t *testing.T) {
	orch, snapshots := newTestOrchestrator(&stubSlideGen{}, &stubFetcher{err: errors.New("provider down")})
	pres := preparedPresentation(2)
	captured := &capturedEvents{}

	if err := orch.Stream(context.Background(), pres, captured.emit); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	last := captured.last()
	if last.Type != EventComplete {
		t.Fatalf("last event = %s, want complete despite asset failures", last.Type)
	}
	if len(last.Presentation.AssetWarnings) != 2 {
		t.Errorf("asset warnings = %v, want one per slide", last.Presentation.AssetWarnings)
	}

	snapshot, _ := snapshots.Get(pres.ID)
	image := snapshot.Slides[0].Content["image"].(map[string]any)
	if image[schema.FieldImageURL] != assets.PlaceholderImageURL {
		t.Error("failed fetch did not keep the placeholder")
	}
}

func TestUnpreparedPresentationRejected(t *testing.T) {
	orch, _ := newTestOrchestrator(&stubSlideGen{}, &stubFetcher{})
	pres := preparedPresentation(2)
	pres.Structure = nil
	captured := &capturedEvents{}

	if err := orch.Stream(context.Background(), pres, captured.emit); err == nil {
		t.Fatal("unprepared presentation accepted")
	}
	if len(captured.events) != 0 {
		t.Errorf("events emitted before precondition check: %v", captured.events)
	}
}
