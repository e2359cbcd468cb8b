package file

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// V1ChunkStatus is one chunk entry in the status response
type V1ChunkStatus struct {
	ChunkID    string `json:"chunk_id"`
	Order      int    `json:"order"`
	SizeBytes  int64  `json:"size_bytes"`
	Status     string `json:"status"`
	ProviderID string `json:"provider_id"`
}

// V1FileStatusResponse is the response to get file status
type V1FileStatusResponse struct {
	FileID    string          `json:"file_id"`
	Name      string          `json:"name"`
	SizeBytes int64           `json:"size_bytes"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Chunks    []V1ChunkStatus `json:"chunks"`
}

// GetFileStatusV1 reports the file status and the status of every chunk.
func (h *HandlerV1) GetFileStatusV1(w http.ResponseWriter, r *http.Request) {

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

	file, chunks, err := h.fileService.GetFileStatus(r.Context(), uuidFileID)
	switch {
	case errors.Is(err, domain.ErrFileNotFound):
		http.Error(w, "file not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("error getting file status", "file_id", uuidFileID, "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := V1FileStatusResponse{
		FileID:    file.ID.String(),
		Name:      file.Name,
		SizeBytes: file.SizeBytes,
		Status:    string(file.Status),
		CreatedAt: file.CreatedAt,
		UpdatedAt: file.UpdatedAt,
	}
	for _, chunk := range chunks {
		providerID := ""
		if chunk.ProviderID != uuid.Nil {
			providerID = chunk.ProviderID.String()
		}
		resp.Chunks = append(resp.Chunks, V1ChunkStatus{
			ChunkID:    chunk.ID.String(),
			Order:      chunk.Order,
			SizeBytes:  chunk.SizeBytes,
			Status:     string(chunk.Status),
			ProviderID: providerID,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
