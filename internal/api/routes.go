package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/framelift/extraction-service/internal/usecase"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extractions/validate", validateHandler(cfg))
		r.Post("/extractions/plan", planHandler(cfg))
		r.Post("/extractions", extractHandler(cfg))
		r.Get("/extractions/current", extractionStatusHandler(cfg))
		r.Delete("/extractions/current", cancelHandler(cfg))
		r.Post("/imports", importHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

// validateHandler reports findings without touching the video. The response
// is 200 even for an invalid request: the caller asked for a verdict and got
// one.
func validateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ExtractionRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		result := cfg.Extractions.ValidateRequest(body.ToRequest())
		WriteJSON(w, http.StatusOK, result)
	}
}

func planHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ExtractionRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		plan, err := cfg.Extractions.PlanExtraction(r.Context(), body.ToRequest())
		if err != nil {
			WriteFailure(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, PlanToResponse(plan))
	}
}

func extractHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ExtractionRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		result, err := cfg.Extractions.ExtractFrames(r.Context(), body.ToRequest())
		if err != nil {
			WriteFailure(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, ResultToResponse(result))
	}
}

func extractionStatusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Extractions.Status())
	}
}

// cancelHandler only requests the abort. The running extraction observes it
// and reports the cancellation through its own failure, so this returns 202
// rather than pretending the work already stopped.
func cancelHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Extractions.CancelExtraction()
		w.WriteHeader(http.StatusAccepted)
	}
}

func importHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ImportRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		var source usecase.ImportSource
		switch body.Source {
		case "", string(usecase.ImportSourceLibrary):
			source = usecase.ImportSourceLibrary
		case string(usecase.ImportSourceCamera):
			source = usecase.ImportSourceCamera
		default:
			WriteError(w, http.StatusBadRequest, "unknown import source", "BAD_REQUEST")
			return
		}

		imported, err := cfg.Imports.ImportVideo(r.Context(), source)
		if err != nil {
			WriteFailure(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, ImportResponse{
			Cancelled: imported.Cancelled,
			File:      imported.File,
			Warnings:  imported.Warnings,
		})
	}
}
