package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/framelift/extraction-service/internal/domain/extraction"
	"github.com/framelift/extraction-service/internal/usecase"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// statusClientClosedRequest is nginx's non-standard code for requests the
// client walked away from; it is the closest fit for a cancelled extraction.
const statusClientClosedRequest = 499

func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()[:8]
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			requestID, _ := r.Context().Value(RequestIDKey).(string)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", requestID),
			)
		})
	}
}

func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID, _ := r.Context().Value(RequestIDKey).(string)
					logger.Error("panic recovered",
						zap.Any("error", err),
						zap.String("request_id", requestID),
					)
					WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// WriteFailure maps a failure from the extraction or import flow onto an HTTP
// status and a structured body. Violations travel with the response so the
// caller sees every finding, not just the headline.
func WriteFailure(w http.ResponseWriter, err error) {
	var xerr *extraction.Error
	if errors.As(err, &xerr) {
		WriteJSON(w, httpStatusForFailure(xerr.Code), ErrorResponse{
			Error:      xerr.Message,
			Code:       string(xerr.Code),
			Violations: xerr.Violations,
		})
		return
	}

	switch {
	case errors.Is(err, extraction.ErrExtractionInFlight):
		WriteError(w, http.StatusConflict, err.Error(), "EXTRACTION_IN_FLIGHT")
	case errors.Is(err, usecase.ErrPermissionDenied):
		WriteError(w, http.StatusForbidden, err.Error(), "PERMISSION_DENIED")
	case errors.Is(err, usecase.ErrPermissionBlocked):
		WriteError(w, http.StatusForbidden, err.Error(), "PERMISSION_BLOCKED")
	case errors.Is(err, usecase.ErrPermissionUnavailable):
		WriteError(w, http.StatusNotImplemented, err.Error(), "PERMISSION_UNAVAILABLE")
	default:
		WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

func httpStatusForFailure(code extraction.FailureCode) int {
	switch code {
	case extraction.FailureInvalidParameters:
		return http.StatusUnprocessableEntity
	case extraction.FailureInsufficientStorage:
		return http.StatusInsufficientStorage
	case extraction.FailureVideoNotFound:
		return http.StatusNotFound
	case extraction.FailureUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case extraction.FailureCancelled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}
