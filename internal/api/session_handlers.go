package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelcut/reelcut-agent/internal/export"
	"github.com/reelcut/reelcut-agent/internal/session"
	"github.com/reelcut/reelcut-agent/internal/timeline"
)

const mixTimeout = 5 * time.Minute

// requireSession resolves the {id} route param or writes a 404.
func requireSession(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := cfg.Sessions.Get(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
		return nil, false
	}
	return sess, true
}

// requireConfirm enforces the ?confirm=true guard on destructive routes.
func requireConfirm(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") != "true" {
		WriteError(w, http.StatusConflict, "confirmation required: retry with ?confirm=true", "CONFIRM_REQUIRED")
		return false
	}
	return true
}

func openSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.MediaURI == "" {
			WriteError(w, http.StatusBadRequest, "media_uri is required", "BAD_REQUEST")
			return
		}

		sess := cfg.Sessions.Open(req.MediaURI, req.Duration)
		WriteJSON(w, http.StatusCreated, SnapshotToResponse(sess.Snapshot()))
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, SnapshotToResponse(sess.Snapshot()))
	}
}

func closeSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.Sessions.Close(chi.URLParam(r, "id")) {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func splitHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}

		var req SplitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if _, err := sess.Split(req.Time); err != nil {
			switch {
			case errors.Is(err, timeline.ErrSplitOutOfBounds):
				WriteError(w, http.StatusBadRequest, "split time is outside the trimmed range", "SPLIT_OUT_OF_BOUNDS")
			case errors.Is(err, timeline.ErrSplitTooClose):
				WriteError(w, http.StatusBadRequest, "a split already exists at this position", "SPLIT_TOO_CLOSE")
			default:
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			}
			return
		}

		WriteJSON(w, http.StatusOK, SnapshotToResponse(sess.Snapshot()))
	}
}

func deleteSegmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}
		if !requireConfirm(w, r) {
			return
		}

		var req DeleteSegmentRequest
		// An absent body means the playhead position is unknown; deletion
		// proceeds without relocation.
		_ = json.NewDecoder(r.Body).Decode(&req)

		relocate, found := sess.DeleteSegment(chi.URLParam(r, "segmentID"), req.CurrentTime)
		if !found {
			// Benign race: the client may already reflect the removal.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		WriteJSON(w, http.StatusOK, DeleteSegmentResponse{RelocateTo: relocate})
	}
}

func trimHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}

		var req TrimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Start == nil && req.End == nil {
			WriteError(w, http.StatusBadRequest, "start or end is required", "BAD_REQUEST")
			return
		}

		if req.Start != nil {
			sess.SetTrimStart(*req.Start)
		}
		if req.End != nil {
			sess.SetTrimEnd(*req.End)
		}

		WriteJSON(w, http.StatusOK, SnapshotToResponse(sess.Snapshot()))
	}
}

func reportPositionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}

		var req PositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		position, active := sess.ReportPosition(req.CurrentTime, req.Playing)
		WriteJSON(w, http.StatusOK, PositionResponse{Position: position, Transition: active})
	}
}

func framesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"frames": sess.Frames()})
	}
}

func addOverlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}

		var req AddOverlayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		added, err := sess.AddOverlay(req.Overlay, req.CurrentTime)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusCreated, added)
	}
}

func patchOverlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}

		var req OverlayPatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		overlayID := chi.URLParam(r, "overlayID")
		found := false

		if req.X != nil && req.Y != nil {
			if _, ok := sess.RepositionOverlay(overlayID, *req.X, *req.Y); ok {
				found = true
			}
		}
		if req.Size != nil {
			if _, ok := sess.ResizeOverlay(overlayID, *req.Size); ok {
				found = true
			}
		}
		if req.Start != nil && req.End != nil {
			if _, ok := sess.RetimeOverlay(overlayID, *req.Start, *req.End); ok {
				found = true
			}
		}

		if !found {
			WriteError(w, http.StatusNotFound, "overlay not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, SnapshotToResponse(sess.Snapshot()))
	}
}

func deleteOverlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}
		if !requireConfirm(w, r) {
			return
		}

		sess.RemoveOverlay(chi.URLParam(r, "overlayID"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func addEffectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}

		var req EffectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		effect, err := sess.AddEffect(req.Name, req.Timestamp, req.Duration)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "unknown effect name", "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusCreated, effect)
	}
}

func splitTransitionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}

		var req SplitTransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := sess.BeginSplitTransition(chi.URLParam(r, "splitID")); err != nil {
			WriteError(w, http.StatusNotFound, "split point not found", "NOT_FOUND")
			return
		}
		if err := sess.CommitSplitTransition(req.Type); err != nil {
			WriteError(w, http.StatusBadRequest, "unknown transition type", "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, SnapshotToResponse(sess.Snapshot()))
	}
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}

		var req ExportRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Title == "" {
			req.Title = "Reelcut Edit"
		}

		clips := export.ClipsFromTimeline(sess.Timeline(), sess.MediaURI, export.SanitizeName(req.Title, 24))
		edl := export.GenerateEDL(clips, req.Title, req.FrameRate)

		WriteJSON(w, http.StatusOK, ExportResponse{EDL: edl})
	}
}

func mixdownHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := requireSession(cfg, w, r)
		if !ok {
			return
		}

		// Mixing shells out to ffmpeg; run detached and report via logs.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), mixTimeout)
			defer cancel()
			if err := sess.Mixdown(ctx, cfg.Mixer, cfg.MixOutputDir); err != nil {
				cfg.Logger.Error("mixdown failed", "session_id", sess.ID, "error", err)
			}
		}()

		w.WriteHeader(http.StatusAccepted)
	}
}
