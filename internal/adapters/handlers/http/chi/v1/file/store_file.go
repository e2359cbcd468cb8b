package file

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// V1StoreFileResponse is the response to store file
type V1StoreFileResponse struct {
	FileID     string `json:"file_id"`
	ChunkCount int    `json:"chunk_count"`
	Status     string `json:"status"`
}

// StoreFileV1 accepts a multipart upload under the "file" field, splits it
// into chunks and distributes them across providers.
func (h *HandlerV1) StoreFileV1(w http.ResponseWriter, r *http.Request) {

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer src.Close()

	contentType := header.Header.Get("Content-Type")

	result, err := h.fileService.StoreFile(r.Context(), header.Filename, contentType, header.Size, src)
	switch {
	case errors.Is(err, domain.ErrFileNameInvalid),
		errors.Is(err, domain.ErrExtensionNotAllowed),
		errors.Is(err, domain.ErrFileSizeTooBig),
		errors.Is(err, domain.ErrFileSizeTooSmall),
		errors.Is(err, domain.ErrTooManyChunks),
		errors.Is(err, domain.ErrSizeMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrNoActiveProviders),
		errors.Is(err, domain.ErrNotEnoughProviders),
		errors.Is(err, domain.ErrProvidersOverloaded):
		http.Error(w, "no storage capacity available", http.StatusServiceUnavailable)
		return
	case err != nil:
		h.logger.Error("error storing file", "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := V1StoreFileResponse{
		FileID:     result.FileID.String(),
		ChunkCount: result.ChunkCount,
		Status:     string(result.Status),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
