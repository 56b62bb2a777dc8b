// Package tempstorage persists uploaded source documents under a uuid-scoped
// temporary directory so presentation requests can reference them by path.
package tempstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"deckgen-server/internal/utils/platformerrors"
)

// TempStorage handles uploads to a local scratch directory.
type TempStorage struct {
	basePath string
	log      zerolog.Logger
}

// New creates the temp storage backend, creating the base directory when
// missing.
func New(basePath string, log zerolog.Logger) (*TempStorage, error) {
	logger := log.With().Str("component", "temp-storage").Logger()

	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, fmt.Errorf("temp storage path cannot be empty")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp storage directory: %w", err)
	}

	logger.Info().Str("path", basePath).Msg("temp storage initialized")

	return &TempStorage{
		basePath: basePath,
		log:      logger,
	}, nil
}

// Save stores an uploaded file under a fresh uuid-scoped directory and
// returns its absolute path.
func (t *TempStorage) Save(ctx context.Context, filename string, body io.Reader) (string, error) {
	name := filepath.Base(filepath.FromSlash(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
			"invalid file name", nil, "")
	}

	dir := filepath.Join(t.basePath, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	fullPath := filepath.Join(dir, name)
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	t.log.Debug().
		Str("path", fullPath).
		Int64("bytes", written).
		Msg("file saved to temp storage")

	return fullPath, nil
}

// Overwrite replaces the contents of an existing stored file. The path must
// resolve inside the storage root; anything else is rejected.
func (t *TempStorage) Overwrite(ctx context.Context, path string, body io.Reader) error {
	if !t.Contains(path) {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
			"path is outside temp storage", nil, "")
	}

	if _, err := os.Stat(path); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotFound,
			"file not found", err, "")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file for writing: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Read returns the contents of a stored file.
func (t *TempStorage) Read(ctx context.Context, path string) (string, error) {
	if !t.Contains(path) {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
			"path is outside temp storage", nil, "")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotFound,
			"file not found", err, "")
	}
	return string(data), nil
}

// Contains reports whether the given path resolves inside the storage root.
func (t *TempStorage) Contains(path string) bool {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return false
	}
	base, err := filepath.Abs(t.basePath)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
