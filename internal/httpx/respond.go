// Package httpx holds the JSON response and error-mapping helpers shared
// by all HTTP controllers.
package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "stockledger/internal/errors"
)

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func WriteValidationError(w http.ResponseWriter, logger *zap.Logger, traceID string, message string, details ...apperrors.ValidationDetail) {
	response := ValidationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	}

	WriteJSON(w, logger, http.StatusBadRequest, response)
}

// WriteError maps application errors to HTTP responses. Insufficient stock
// is a client error distinct from generic validation so callers can show
// the available quantity.
func WriteError(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		WriteValidationError(w, logger, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsInsufficientStockError(err); ok {
		writeErrorResponse(w, logger, traceID, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error())
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		writeErrorResponse(w, logger, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		writeErrorResponse(w, logger, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		writeErrorResponse(w, logger, traceID, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		writeErrorResponse(w, logger, traceID, http.StatusConflict, "DEADLOCK", err.Error())
		return
	}

	logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	writeErrorResponse(w, logger, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func writeErrorResponse(w http.ResponseWriter, logger *zap.Logger, traceID string, statusCode int, code string, message string) {
	response := ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	WriteJSON(w, logger, statusCode, response)
}
