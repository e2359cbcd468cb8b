package file

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// GetFileV1 reassembles a file from its chunks and streams it back.
func (h *HandlerV1) GetFileV1(w http.ResponseWriter, r *http.Request) {

	fileID := chi.URLParam(r, "fileID")
	if fileID == "" {
		http.Error(w, "file id is required", http.StatusBadRequest)
		return
	}
	uuidFileID, parseErr := uuid.Parse(fileID)
	if parseErr != nil {
		http.Error(w, parseErr.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.fileService.RetrieveFile(r.Context(), uuidFileID)
	switch {
	case errors.Is(err, domain.ErrFileNotFound):
		http.Error(w, "file not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrFileNotFullyStored),
		errors.Is(err, domain.ErrNoChunksFound):
		http.Error(w, "file not fully stored", http.StatusConflict)
		return
	case errors.Is(err, domain.ErrChunkIntegrity),
		errors.Is(err, domain.ErrFileIntegrity):
		h.logger.Error("integrity check failed on retrieve", "file_id", uuidFileID, "error", err)
		http.Error(w, "file integrity check failed", http.StatusInternalServerError)
		return
	case err != nil:
		h.logger.Error("error retrieving file", "file_id", uuidFileID, "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	contentType := result.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.File.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.logger.Error("error writing file response", "file_id", uuidFileID, "error", err)
	}
}
