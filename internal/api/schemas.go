package api

import (
	"time"

	"github.com/reelcut/reelcut-agent/internal/catalog"
	"github.com/reelcut/reelcut-agent/internal/frames"
	"github.com/reelcut/reelcut-agent/internal/overlay"
	"github.com/reelcut/reelcut-agent/internal/session"
	"github.com/reelcut/reelcut-agent/internal/timeline"
	"github.com/reelcut/reelcut-agent/internal/transition"
)

// --- upload surface (field names are the mobile client's wire contract,
// do not rename) ---

type HealthResponse struct {
	Status    string       `json:"status"`
	Config    HealthConfig `json:"config"`
	Timestamp string       `json:"timestamp"`
}

type HealthConfig struct {
	Bucket                 string `json:"bucket"`
	Region                 string `json:"region"`
	Prefix                 string `json:"prefix"`
	HasCredentials         bool   `json:"hasCredentials"`
	PresignedExpirySeconds int    `json:"presignedExpirySeconds"`
}

type PresignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

type PresignResponse struct {
	Success      bool   `json:"success"`
	PresignedURL string `json:"presignedUrl"`
	Key          string `json:"key"`
	Bucket       string `json:"bucket"`
	Region       string `json:"region"`
	ExpiresIn    int    `json:"expiresIn"`
}

type PresignErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// --- session surface ---

type OpenSessionRequest struct {
	MediaURI string  `json:"media_uri"`
	Duration float64 `json:"duration"`
}

type SplitRequest struct {
	Time float64 `json:"time"`
}

// TrimRequest carries optional bounds; a nil field leaves that bound alone.
type TrimRequest struct {
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// CurrentTime accompanies segment deletion so the server can decide
// whether the playhead needs relocating.
type DeleteSegmentRequest struct {
	CurrentTime float64 `json:"current_time"`
}

type DeleteSegmentResponse struct {
	RelocateTo *float64 `json:"relocate_to,omitempty"`
}

// AddOverlayRequest is an overlay record plus the playback position it was
// created at, which anchors the default time window.
type AddOverlayRequest struct {
	overlay.Overlay
	CurrentTime float64 `json:"current_time"`
}

type OverlayPatchRequest struct {
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Size  *float64 `json:"size,omitempty"`
	Start *float64 `json:"start_time,omitempty"`
	End   *float64 `json:"end_time,omitempty"`
}

// PositionRequest reports where the client's player currently is, in
// absolute media seconds.
type PositionRequest struct {
	CurrentTime float64 `json:"current_time"`
	Playing     bool    `json:"playing"`
}

// PositionResponse carries the reconciled position the player must adopt
// and the transition effect active there, if any.
type PositionResponse struct {
	Position   float64            `json:"position"`
	Transition *transition.Active `json:"transition,omitempty"`
}

type EffectRequest struct {
	Name      string  `json:"name"`
	Timestamp float64 `json:"timestamp"`
	Duration  float64 `json:"duration,omitempty"`
}

type SplitTransitionRequest struct {
	Type string `json:"type"`
}

type ExportRequest struct {
	Title     string  `json:"title,omitempty"`
	FrameRate float64 `json:"frame_rate,omitempty"`
}

type ExportResponse struct {
	EDL string `json:"edl"`
}

// SessionResponse is the full edit state snapshot. Collection elements
// marshal with their package-level JSON tags.
type SessionResponse struct {
	ID                string                `json:"id"`
	MediaURI          string                `json:"media_uri"`
	Duration          float64               `json:"duration"`
	Mode              string                `json:"mode"`
	TrimStart         float64               `json:"trim_start"`
	TrimEnd           float64               `json:"trim_end"`
	EffectiveDuration float64               `json:"effective_duration"`
	Segments          []timeline.Segment    `json:"segments"`
	Splits            []timeline.SplitPoint `json:"splits"`
	Overlays          []overlay.Overlay     `json:"overlays"`
	Effects           []transition.Effect   `json:"effects"`
	Frames            []frames.Frame        `json:"frames"`
	ActiveSplitID     string                `json:"active_split_id,omitempty"`
}

func SnapshotToResponse(s session.Snapshot) SessionResponse {
	return SessionResponse{
		ID:                s.ID,
		MediaURI:          s.MediaURI,
		Duration:          s.Duration,
		Mode:              s.Mode.String(),
		TrimStart:         s.TrimStart,
		TrimEnd:           s.TrimEnd,
		EffectiveDuration: s.EffectiveDuration,
		Segments:          s.Segments,
		Splits:            s.Splits,
		Overlays:          s.Overlays,
		Effects:           s.Effects,
		Frames:            s.Frames,
		ActiveSplitID:     s.ActiveSplitID,
	}
}

// --- catalog surface ---

type SaveVideoRequest struct {
	Title    string  `json:"title"`
	MediaURI string  `json:"media_uri"`
	Duration float64 `json:"duration"`
}

type MarkUploadedRequest struct {
	Key string `json:"key"`
}

type VideoResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	MediaURI    string  `json:"media_uri"`
	Duration    float64 `json:"duration"`
	UploadedKey string  `json:"uploaded_key,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type VideosResponse struct {
	Videos []VideoResponse `json:"videos"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func VideoToResponse(v *catalog.Video) VideoResponse {
	return VideoResponse{
		ID:          v.ID,
		Title:       v.Title,
		MediaURI:    v.MediaURI,
		Duration:    v.Duration,
		UploadedKey: v.UploadedKey,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
	}
}
