package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/user/aura-service/internal/delivery/http/request"
	"github.com/user/aura-service/internal/delivery/http/response"
	"github.com/user/aura-service/internal/entity"
	"github.com/user/aura-service/internal/usecase"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	coordinator usecase.Coordinator
	logger      *zap.Logger
}

func NewHandler(coordinator usecase.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		logger:      logger,
	}
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req request.AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.coordinator.Analyze(r.Context(), req.ToEntity())
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidURL) {
			h.writeJSONError(w, "Invalid URL format", http.StatusBadRequest)
			return
		}
		h.logger.Error("Failed to analyze URL", zap.String("url", req.URL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusAccepted
	if res.Status == entity.StatusCompleted || res.Status == entity.StatusPreliminary {
		status = http.StatusOK
	}
	h.writeJSON(w, status, response.FromResult(res))
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
