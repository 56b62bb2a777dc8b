package structure

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"deckgen-server/internal/domain/presentation"
	"deckgen-server/internal/domain/schema"
	"deckgen-server/internal/utils/platformerrors"
)

type stubCaller struct {
	calls  int
	result map[string]any
	err    error
}

func (s *stubCaller) CompleteStructured(ctx context.Context, name, system, user string, responseSchema schema.Schema) (map[string]any, error) {
	s.calls++
	return s.result, s.err
}

func outlineOf(n int) *presentation.Outline {
	slides := make([]presentation.SlideOutline, n)
	for i := range slides {
		slides[i] = presentation.SlideOutline{Content: "slide outline"}
	}
	return &presentation.Outline{Slides: slides}
}

func layoutOf(m int, ordered bool) *presentation.Layout {
	slides := make([]presentation.SlideLayout, m)
	for i := range slides {
		slides[i] = presentation.SlideLayout{ID: "tpl", Name: "tpl", JSONSchema: schema.Schema{"type": "object"}}
	}
	return &presentation.Layout{Name: "default", Ordered: ordered, Slides: slides}
}

func TestOrderedLayoutSkipsModel(t *testing.T) {
	caller := &stubCaller{}
	gen := NewGenerator(caller, zerolog.Nop())

	structure, err := gen.Generate(context.Background(), outlineOf(5), layoutOf(3, true), "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := []int{0, 1, 2, 0, 1}
	if len(structure.Slides) != len(want) {
		t.Fatalf("got %d indices, want %d", len(structure.Slides), len(want))
	}
	for i, idx := range structure.Slides {
		if idx != want[i] {
			t.Errorf("slide %d: index %d, want %d", i, idx, want[i])
		}
	}
	if caller.calls != 0 {
		t.Errorf("ordered layout made %d model calls, want 0", caller.calls)
	}
}

func TestUnorderedLayoutUsesModel(t *testing.T) {
	caller := &stubCaller{result: map[string]any{
		"slides": []any{float64(2), float64(0), float64(1)},
	}}
	gen := NewGenerator(caller, zerolog.Nop())

	structure, err := gen.Generate(context.Background(), outlineOf(3), layoutOf(3, false), "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if caller.calls != 1 {
		t.Errorf("made %d model calls, want 1", caller.calls)
	}

	want := []int{2, 0, 1}
	for i, idx := range structure.Slides {
		if idx != want[i] {
			t.Errorf("slide %d: index %d, want %d", i, idx, want[i])
		}
	}
}

func TestOutOfRangeIndicesRepaired(t *testing.T) {
	caller := &stubCaller{result: map[string]any{
		"slides": []any{float64(7), float64(-1), float64(1), float64(99)},
	}}
	gen := NewGenerator(caller, zerolog.Nop())

	structure, err := gen.Generate(context.Background(), outlineOf(4), layoutOf(3, false), "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(structure.Slides) != 4 {
		t.Fatalf("got %d indices, want 4", len(structure.Slides))
	}
	for i, idx := range structure.Slides {
		if idx < 0 || idx >= 3 {
			t.Errorf("slide %d: index %d out of range after repair", i, idx)
		}
	}
	if structure.Slides[2] != 1 {
		t.Errorf("in-range index rewritten: got %d, want 1", structure.Slides[2])
	}
}

func TestShortAnswerPadded(t *testing.T) {
	caller := &stubCaller{result: map[string]any{
		"slides": []any{float64(1)},
	}}
	gen := NewGenerator(caller, zerolog.Nop())

	structure, err := gen.Generate(context.Background(), outlineOf(4), layoutOf(2, false), "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []int{1, 1, 0, 1}
	for i, idx := range structure.Slides {
		if idx != want[i] {
			t.Errorf("slide %d: index %d, want %d", i, idx, want[i])
		}
	}
}

func TestGenerationErrorPropagates(t *testing.T) {
	caller := &stubCaller{err: errors.New("upstream down")}
	gen := NewGenerator(caller, zerolog.Nop())

	_, err := gen.Generate(context.Background(), outlineOf(2), layoutOf(2, false), "")
	if err == nil {
		t.Fatal("expected error")
	}
	var platformErr *platformerrors.PlatformError
	if !errors.As(err, &platformErr) {
		t.Errorf("error %T is not a PlatformError", err)
	}
}

func TestEmptyInputsRejected(t *testing.T) {
	gen := NewGenerator(&stubCaller{}, zerolog.Nop())

	if _, err := gen.Generate(context.Background(), outlineOf(0), layoutOf(2, true), ""); err == nil {
		t.Error("empty outline accepted")
	}
	if _, err := gen.Generate(context.Background(), outlineOf(2), layoutOf(0, true), ""); err == nil {
		t.Error("empty layout accepted")
	}
}
