package presentation_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/domain/schema"
	"deckgen-server/internal/infrastructure/repository/memstore"
	"deckgen-server/internal/utils/platformerrors"
)

type stubStructGen struct {
	calls int
}

func (s *stubStructGen) Generate(ctx context.Context, outline *presentation.Outline, layout *presentation.Layout, instructions string) (*presentation.Structure, error) {
	s.calls++
	indices := make([]int, len(outline.Slides))
	return &presentation.Structure{Slides: indices}, nil
}

func newTestService() (presentation.Service, *stubStructGen, presentation.SnapshotRepository) {
	repo := memstore.New[uuid.UUID, *presentation.Presentation]()
	snapshots := memstore.New[uuid.UUID, *presentation.PresentationWithSlides]()
	structGen := &stubStructGen{}
	return presentation.NewService(repo, snapshots, structGen, zerolog.Nop()), structGen, snapshots
}

func testLayout() presentation.Layout {
	return presentation.Layout{
		Name:    "default",
		Ordered: true,
		Slides: []presentation.SlideLayout{
			{ID: "basic", Name: "Basic", JSONSchema: schema.Schema{"type": "object"}},
		},
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _, _ := newTestService()

	pres, err := svc.Create(context.Background(), presentation.CreateInput{
		Content:  "AI in healthcare",
		NSlides:  5,
		Language: "English",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if pres.ID == uuid.Nil {
		t.Error("presentation id not assigned")
	}
	if pres.Tone != presentation.ToneDefault {
		t.Errorf("tone = %q, want default", pres.Tone)
	}
	if pres.Verbosity != presentation.VerbosityStandard {
		t.Errorf("verbosity = %q, want standard", pres.Verbosity)
	}
	if pres.CreatedAt.IsZero() || pres.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	got, err := svc.Get(context.Background(), pres.ID)
	if err != nil {
		t.Fatalf("Get after Create: %v", err)
	}
	if got.Content != "AI in healthcare" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestCreateTableOfContentsNeedsThreeSlides(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), presentation.CreateInput{
		Content:                "AI",
		NSlides:                2,
		Language:               "English",
		IncludeTableOfContents: true,
	})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}

	if _, err := svc.Create(context.Background(), presentation.CreateInput{
		Content:                "AI",
		NSlides:                3,
		Language:               "English",
		IncludeTableOfContents: true,
	}); err != nil {
		t.Fatalf("three slides with TOC rejected: %v", err)
	}
}

func TestPrepareUnknownPresentation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Prepare(context.Background(), presentation.PrepareInput{
		ID:       uuid.New(),
		Outlines: []presentation.SlideOutline{{Content: "intro"}},
		Layout:   testLayout(),
	})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestPrepareRejectsEmptyOutlines(t *testing.T) {
	svc, _, _ := newTestService()
	pres, _ := svc.Create(context.Background(), presentation.CreateInput{Content: "AI", NSlides: 4, Language: "English"})

	_, err := svc.Prepare(context.Background(), presentation.PrepareInput{
		ID:     pres.ID,
		Layout: testLayout(),
	})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestPrepareGeneratesStructureAndTitle(t *testing.T) {
	svc, structGen, _ := newTestService()
	pres, _ := svc.Create(context.Background(), presentation.CreateInput{Content: "AI", NSlides: 2, Language: "English"})

	prepared, err := svc.Prepare(context.Background(), presentation.PrepareInput{
		ID: pres.ID,
		Outlines: []presentation.SlideOutline{
			{Content: "# The State of AI\n\nWhere the field stands today."},
			{Content: "# What Comes Next"},
		},
		Layout: testLayout(),
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	if structGen.calls != 1 {
		t.Errorf("structure generator called %d times, want 1", structGen.calls)
	}
	if !prepared.Prepared() {
		t.Error("presentation not marked prepared")
	}
	if len(prepared.Structure.Slides) != 2 {
		t.Errorf("structure length = %d, want 2", len(prepared.Structure.Slides))
	}
	if prepared.Title != "The State of AI" {
		t.Errorf("derived title = %q", prepared.Title)
	}
}

func TestPrepareKeepsExplicitTitle(t *testing.T) {
	svc, _, _ := newTestService()
	pres, _ := svc.Create(context.Background(), presentation.CreateInput{Content: "AI", NSlides: 1, Language: "English"})

	prepared, err := svc.Prepare(context.Background(), presentation.PrepareInput{
		ID:       pres.ID,
		Outlines: []presentation.SlideOutline{{Content: "# Something Else"}},
		Layout:   testLayout(),
		Title:    "My Deck",
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if prepared.Title != "My Deck" {
		t.Errorf("title = %q, want explicit title kept", prepared.Title)
	}
}

func TestMergeSnapshot(t *testing.T) {
	svc, _, snapshots := newTestService()
	pres, _ := svc.Create(context.Background(), presentation.CreateInput{Content: "AI", NSlides: 2, Language: "English"})
	snapshots.Create(pres.Snapshot([]presentation.Slide{{ID: "slide_1", Index: 0}}, nil))

	newTitle := "Renamed"
	newN := 6
	merged, err := svc.MergeSnapshot(context.Background(), presentation.MergeSnapshotInput{
		ID:      pres.ID,
		Title:   &newTitle,
		NSlides: &newN,
	})
	if err != nil {
		t.Fatalf("MergeSnapshot: %v", err)
	}

	if merged.Title != "Renamed" || merged.NSlides != 6 {
		t.Errorf("merged = %q/%d", merged.Title, merged.NSlides)
	}
	if len(merged.Slides) != 1 {
		t.Error("slides dropped by a partial merge")
	}

	_, err = svc.MergeSnapshot(context.Background(), presentation.MergeSnapshotInput{ID: uuid.New()})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("missing snapshot err = %v, want not found", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _, snapshots := newTestService()
	pres, _ := svc.Create(context.Background(), presentation.CreateInput{Content: "AI", NSlides: 2, Language: "English"})
	snapshots.Create(pres.Snapshot(nil, nil))

	if err := svc.Delete(context.Background(), pres.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), pres.ID); err == nil {
		t.Error("presentation still readable after delete")
	}
	if _, ok := snapshots.Get(pres.ID); ok {
		t.Error("snapshot survived delete")
	}

	if err := svc.Delete(context.Background(), pres.ID); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}
