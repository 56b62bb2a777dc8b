package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"deckgen-server/internal/infrastructure/tempstorage"
	"deckgen-server/internal/interfaces/httpserver/responses"
	"deckgen-server/internal/utils/platformerrors"
)

// FileHandler serves source document upload routes.
type FileHandler struct {
	storage *tempstorage.TempStorage
	log     zerolog.Logger
}

// NewFileHandler wires dependencies for file routes.
func NewFileHandler(storage *tempstorage.TempStorage, log zerolog.Logger) *FileHandler {
	return &FileHandler{
		storage: storage,
		log:     log.With().Str("handler", "file").Logger(),
	}
}

// Upload handles POST /v1/files/upload. Accepts multipart form files and
// returns the stored temp paths for later use in presentation requests.
func (h *FileHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid multipart form", "")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "no files provided", "")
		return
	}

	paths := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			responses.HandleError(c, err, "failed to read uploaded file")
			return
		}

		path, err := h.storage.Save(c.Request.Context(), header.Filename, file)
		file.Close()
		if err != nil {
			responses.HandleError(c, err, "failed to store uploaded file")
			return
		}
		paths = append(paths, path)
	}

	c.JSON(http.StatusOK, gin.H{"file_paths": paths})
}

// Update handles POST /v1/files/update, overwriting a previously uploaded
// file in place.
func (h *FileHandler) Update(c *gin.Context) {
	path := c.PostForm("file_path")
	if path == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "file_path is required", "")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "file is required", "")
		return
	}

	file, err := header.Open()
	if err != nil {
		responses.HandleError(c, err, "failed to read uploaded file")
		return
	}
	defer file.Close()

	if err := h.storage.Overwrite(c.Request.Context(), path, file); err != nil {
		responses.HandleError(c, err, "failed to update file")
		return
	}

	c.JSON(http.StatusOK, gin.H{"file_path": path})
}
