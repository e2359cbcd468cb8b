package health

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// HandlerV1 is the handler for v1 health routes
type HandlerV1 struct {
	healthService port.HealthService
	logger        *slog.Logger
}

// NewHealthHandlerV1 creates HandlerV1
func NewHealthHandlerV1(service port.HealthService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		healthService: service,
		logger:        logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/report", h.GetReportV1)

	return router
}

// V1HealthReportResponse is the response to get health report
type V1HealthReportResponse struct {
	HealthyFiles       int            `json:"healthy_files"`
	UnhealthyFiles     int            `json:"unhealthy_files"`
	HealthyChunks      int            `json:"healthy_chunks"`
	CorruptedChunks    int            `json:"corrupted_chunks"`
	ChunksToReplicate  int            `json:"chunks_to_replicate"`
	HealthyProviders   int            `json:"healthy_providers"`
	UnhealthyProviders int            `json:"unhealthy_providers"`
	FilesByStatus      map[string]int `json:"files_by_status"`
	ChunksByStatus     map[string]int `json:"chunks_by_status"`
}

// GetReportV1 produces a read-only snapshot of system health.
func (h *HandlerV1) GetReportV1(w http.ResponseWriter, r *http.Request) {

	report, err := h.healthService.Report(r.Context())
	if err != nil {
		h.logger.Error("error building health report", "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := V1HealthReportResponse{
		HealthyFiles:       report.HealthyFiles,
		UnhealthyFiles:     report.UnhealthyFiles,
		HealthyChunks:      report.HealthyChunks,
		CorruptedChunks:    report.CorruptedChunks,
		ChunksToReplicate:  report.ChunksToReplicate,
		HealthyProviders:   report.HealthyProviders,
		UnhealthyProviders: report.UnhealthyProviders,
		FilesByStatus:      map[string]int{},
		ChunksByStatus:     map[string]int{},
	}
	for status, count := range report.FilesByStatus {
		resp.FilesByStatus[string(status)] = count
	}
	for status, count := range report.ChunksByStatus {
		resp.ChunksByStatus[string(status)] = count
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}
