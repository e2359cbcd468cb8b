package file

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// HandlerV1 is the handler for v1 file routes
type HandlerV1 struct {
	fileService port.FileService
	logger      *slog.Logger
	maxUpload   int64
}

// NewFileHandlerV1 creates HandlerV1. maxUpload caps the multipart form size
// in bytes.
func NewFileHandlerV1(service port.FileService, maxUpload int64, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		fileService: service,
		logger:      logger,
		maxUpload:   maxUpload,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.StoreFileV1)
	router.Get("/{fileID}", h.GetFileV1)
	router.Get("/{fileID}/status", h.GetFileStatusV1)
	router.Delete("/{fileID}", h.DeleteFileV1)

	return router
}
