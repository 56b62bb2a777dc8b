package tempstorage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestStorage(t *testing.T) *TempStorage {
	t.Helper()
	storage, err := New(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return storage
}

func TestSaveAndRead(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	path, err := storage.Save(ctx, "notes.md", strings.NewReader("# Research notes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(path) != "notes.md" {
		t.Errorf("stored name = %s", filepath.Base(path))
	}

	content, err := storage.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if content != "# Research notes" {
		t.Errorf("content = %q", content)
	}
}

func TestSaveIsolatesNames(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	first, _ := storage.Save(ctx, "doc.txt", strings.NewReader("one"))
	second, _ := storage.Save(ctx, "doc.txt", strings.NewReader("two"))
	if first == second {
		t.Error("same-named uploads share a path")
	}
}

func TestOverwrite(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	path, _ := storage.Save(ctx, "doc.txt", strings.NewReader("old"))
	if err := storage.Overwrite(ctx, path, strings.NewReader("new")); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}

	content, _ := storage.Read(ctx, path)
	if content != "new" {
		t.Errorf("content = %q", content)
	}
}

func TestPathsOutsideRootRejected(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	if err := storage.Overwrite(ctx, "/etc/hosts", strings.NewReader("x")); err == nil {
		t.Error("overwrite outside root accepted")
	}
	if _, err := storage.Read(ctx, "/etc/hosts"); err == nil {
		t.Error("read outside root accepted")
	}
	if err := storage.Overwrite(ctx, filepath.Join(t.TempDir(), "other.txt"), strings.NewReader("x")); err == nil {
		t.Error("overwrite in sibling temp dir accepted")
	}
}
