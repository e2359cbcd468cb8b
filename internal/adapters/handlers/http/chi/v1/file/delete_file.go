package file

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// DeleteFileV1 removes the chunk payloads of a file and soft deletes its
// metadata.
func (h *HandlerV1) DeleteFileV1(w http.ResponseWriter, r *http.Request) {

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

	err := h.fileService.DeleteFile(r.Context(), uuidFileID)
	switch {
	case errors.Is(err, domain.ErrFileNotFound):
		http.Error(w, "file not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("error deleting file", "file_id", uuidFileID, "error", err)
		http.Error(w, "file partially deleted", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
