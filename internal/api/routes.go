package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelcut/reelcut-agent/internal/upload"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	// Upload surface used by the shipped mobile client; shapes and paths
	// are frozen, and it carries no auth header.
	r.Get("/health", healthHandler(cfg))
	r.Post("/api/get-presigned-url", presignHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Post("/sessions", openSessionHandler(cfg))
		r.Get("/sessions/{id}", getSessionHandler(cfg))
		r.Delete("/sessions/{id}", closeSessionHandler(cfg))
		r.Post("/sessions/{id}/split", splitHandler(cfg))
		r.Delete("/sessions/{id}/segments/{segmentID}", deleteSegmentHandler(cfg))
		r.Put("/sessions/{id}/trim", trimHandler(cfg))
		r.Post("/sessions/{id}/position", reportPositionHandler(cfg))
		r.Get("/sessions/{id}/frames", framesHandler(cfg))
		r.Post("/sessions/{id}/overlays", addOverlayHandler(cfg))
		r.Patch("/sessions/{id}/overlays/{overlayID}", patchOverlayHandler(cfg))
		r.Delete("/sessions/{id}/overlays/{overlayID}", deleteOverlayHandler(cfg))
		r.Post("/sessions/{id}/effects", addEffectHandler(cfg))
		r.Post("/sessions/{id}/splits/{splitID}/transition", splitTransitionHandler(cfg))
		r.Post("/sessions/{id}/export", exportHandler(cfg))
		r.Post("/sessions/{id}/mixdown", mixdownHandler(cfg))

		r.Get("/videos", listVideosHandler(cfg))
		r.Post("/videos", saveVideoHandler(cfg))
		r.Delete("/videos/{id}", deleteVideoHandler(cfg))
		r.Post("/videos/{id}/uploaded", markUploadedHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status: "ok",
			Config: HealthConfig{
				Bucket:                 cfg.Config.S3Bucket(),
				Region:                 cfg.Config.S3Region(),
				Prefix:                 cfg.Config.S3Prefix(),
				HasCredentials:         cfg.Config.HasCredentials(),
				PresignedExpirySeconds: int(cfg.Config.PresignExpiry().Seconds()),
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func presignHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PresignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteJSON(w, http.StatusBadRequest, PresignErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		if req.FileName == "" {
			WriteJSON(w, http.StatusBadRequest, PresignErrorResponse{
				Error: "fileName is required",
			})
			return
		}

		target, err := cfg.Uploader.RequestUploadTarget(r.Context(), req.FileName, req.ContentType)
		if err != nil {
			status := http.StatusInternalServerError
			resp := PresignErrorResponse{Error: "failed to generate presigned URL"}
			if errors.Is(err, upload.ErrNotConfigured) {
				status = http.StatusServiceUnavailable
				resp.Error = "upload not configured"
			} else {
				resp.Details = err.Error()
			}
			WriteJSON(w, status, resp)
			return
		}

		WriteJSON(w, http.StatusOK, PresignResponse{
			Success:      true,
			PresignedURL: target.URL,
			Key:          target.Key,
			Bucket:       target.Bucket,
			Region:       target.Region,
			ExpiresIn:    target.ExpiresIn,
		})
	}
}
