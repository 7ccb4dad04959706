package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cardsim/cardsim-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var invalidScenario *domain.ErrInvalidScenario
	var unknownParam *domain.ErrUnknownParameter
	var notFound *domain.ErrNotFound
	var invalidPlan *domain.ErrInvalidPricingTable

	switch {
	case errors.As(err, &invalidScenario):
		logger.Debug("invalid scenario", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unknownParam):
		logger.Debug("unknown parameter", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalidPlan):
		// Plan data is server-side configuration, so a bad table is an
		// operator problem, not a caller problem.
		logger.Error("invalid pricing table", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
