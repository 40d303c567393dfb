// Package session binds one media file's edit state together: the
// timeline, the overlay registry, standalone transition effects, and the
// split point currently being configured with a transition. Edit state
// lives only as long as the session; nothing here is persisted.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/reelcut/reelcut-agent/internal/frames"
	"github.com/reelcut/reelcut-agent/internal/mixer"
	"github.com/reelcut/reelcut-agent/internal/overlay"
	"github.com/reelcut/reelcut-agent/internal/playback"
	"github.com/reelcut/reelcut-agent/internal/timeline"
	"github.com/reelcut/reelcut-agent/internal/transition"
)

const (
	// defaultFrameCount is how many preview thumbnails are extracted per
	// trim range.
	defaultFrameCount = 10

	extractTimeout = 30 * time.Second
)

var (
	ErrUnknownSplit      = errors.New("unknown split point")
	ErrNoActiveSplit     = errors.New("no split point selected for transition")
	ErrUnknownTransition = errors.New("unknown transition name")
)

// Session is the edit state for one media file. All access goes through
// the mutex; the underlying collections are swapped whole on mutation so a
// reader between lock acquisitions never sees a torn value.
type Session struct {
	ID       string
	MediaURI string
	Duration float64

	mu            sync.Mutex
	timeline      *timeline.Timeline
	overlays      *overlay.Registry
	effects       []transition.Effect
	frames        []frames.Frame
	activeSplitID string

	extractor  frames.Extractor
	frameCount int
	logger     *slog.Logger

	player *reportedPlayer
	sync   *playback.Synchronizer
}

func New(mediaURI string, duration float64, extractor frames.Extractor, logger *slog.Logger) *Session {
	s := &Session{
		ID:         timeline.NewID(),
		MediaURI:   mediaURI,
		Duration:   duration,
		timeline:   timeline.New(duration),
		overlays:   overlay.NewRegistry(duration),
		extractor:  extractor,
		frameCount: defaultFrameCount,
		logger:     logger,
	}
	s.attachSynchronizer()
	// Initial thumbnail set covers the whole media.
	go s.refreshFrames(s.timeline.TrimStart(), s.timeline.TrimEnd())
	return s
}

func (s *Session) attachSynchronizer() {
	s.player = &reportedPlayer{duration: s.Duration}
	s.sync = playback.NewSynchronizer(playback.Config{
		Player:  s.player,
		State:   s,
		Effects: s.Effects,
		Logger:  s.logger,
	})
}

// --- playback.State ---

func (s *Session) Mode() timeline.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Mode()
}

func (s *Session) ActiveSegments() []timeline.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.ActiveSegments()
}

func (s *Session) TrimStart() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.TrimStart()
}

func (s *Session) TrimEnd() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.TrimEnd()
}

// ReportPosition feeds a client-reported player position through one
// synchronizer tick and returns the corrected position together with the
// transition effect active there, if any. The reconciliation rules (clamp
// into active segments, loop at the edit's end) are the synchronizer's.
func (s *Session) ReportPosition(at float64, playing bool) (float64, *transition.Active) {
	s.player.report(at, playing)
	s.sync.Tick()
	corrected := s.player.CurrentTime()
	return corrected, transition.ActiveAt(s.Effects(), corrected)
}

// --- split/delete ---

func (s *Session) Split(at float64) (timeline.SplitPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Split(at)
}

// DeleteSegment soft-deletes a segment. When currentTime was inside the
// removed range, the second return value carries the position the playhead
// should relocate to (the start of the nearest remaining segment).
func (s *Session) DeleteSegment(id string, currentTime float64) (relocateTo *float64, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	victim, ok := s.timeline.DeleteSegment(id)
	if !ok {
		return nil, false
	}
	if s.activeSplitID != "" {
		// The split being configured may have vanished with the segment.
		if !s.splitExistsLocked(s.activeSplitID) {
			s.activeSplitID = ""
		}
	}
	if victim.Contains(currentTime) {
		if target, ok := s.timeline.NearestActiveStart(currentTime); ok {
			return &target, true
		}
	}
	return nil, true
}

func (s *Session) splitExistsLocked(id string) bool {
	for _, sp := range s.timeline.Splits() {
		if sp.ID == id {
			return true
		}
	}
	return false
}

// --- trim ---

// SetTrimStart applies a new lower trim bound and re-extracts preview
// thumbnails for the new range. The returned value is the clamped bound
// actually applied.
func (s *Session) SetTrimStart(v float64) float64 {
	s.mu.Lock()
	applied := s.timeline.SetTrimStart(v)
	start, end := s.timeline.TrimStart(), s.timeline.TrimEnd()
	s.mu.Unlock()

	go s.refreshFrames(start, end)
	return applied
}

// SetTrimEnd applies a new upper trim bound, see SetTrimStart.
func (s *Session) SetTrimEnd(v float64) float64 {
	s.mu.Lock()
	applied := s.timeline.SetTrimEnd(v)
	start, end := s.timeline.TrimStart(), s.timeline.TrimEnd()
	s.mu.Unlock()

	go s.refreshFrames(start, end)
	return applied
}

// refreshFrames asks the extraction collaborator for thumbnails covering
// [start, end]. The request is tagged with the trim range it was issued
// for: if the trim moved again while extraction ran, the stale response is
// discarded instead of overwriting the newer set.
func (s *Session) refreshFrames(start, end float64) {
	if s.extractor == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	extracted, err := s.extractor.ExtractFrames(ctx, s.MediaURI, s.frameCount, start, end)
	if err != nil {
		// Collaborator failure never touches edit state.
		if s.logger != nil {
			s.logger.Warn("frame extraction failed", "error", err, "start", start, "end", end)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timeline.TrimStart() != start || s.timeline.TrimEnd() != end {
		if s.logger != nil {
			s.logger.Debug("discarding stale frame extraction",
				"requested_start", start, "requested_end", end,
				"current_start", s.timeline.TrimStart(), "current_end", s.timeline.TrimEnd())
		}
		return
	}
	s.frames = extracted
}

// Frames returns the current preview thumbnail set.
func (s *Session) Frames() []frames.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]frames.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// --- overlays ---

func (s *Session) AddOverlay(o overlay.Overlay, currentTime float64) (overlay.Overlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays.Add(o, currentTime)
}

func (s *Session) RemoveOverlay(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays.Remove(id)
}

func (s *Session) RepositionOverlay(id string, x, y float64) (overlay.Overlay, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays.Reposition(id, x, y)
}

func (s *Session) ResizeOverlay(id string, size float64) (overlay.Overlay, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays.Resize(id, size)
}

func (s *Session) RetimeOverlay(id string, start, end float64) (overlay.Overlay, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays.Retime(id, start, end)
}

func (s *Session) VisibleOverlays(at float64) []overlay.Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays.VisibleAt(at)
}

// --- transitions ---

// AddEffect registers a standalone transition effect anchored at an
// absolute timestamp, independent of any split point.
func (s *Session) AddEffect(name string, timestamp, duration float64) (transition.Effect, error) {
	if !transition.Known(name) {
		return transition.Effect{}, ErrUnknownTransition
	}
	if duration <= 0 {
		duration = transition.DefaultDuration
	}
	e := transition.Effect{
		ID:        timeline.NewID(),
		Name:      name,
		Timestamp: timestamp,
		Duration:  duration,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	effects := make([]transition.Effect, 0, len(s.effects)+1)
	effects = append(effects, s.effects...)
	effects = append(effects, e)
	s.effects = effects
	return e, nil
}

// Effects returns the standalone effect list for the synchronizer.
func (s *Session) Effects() []transition.Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]transition.Effect, len(s.effects))
	copy(out, s.effects)
	return out
}

// BeginSplitTransition marks a split point as the target of the transition
// picker.
func (s *Session) BeginSplitTransition(splitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.splitExistsLocked(splitID) {
		return ErrUnknownSplit
	}
	s.activeSplitID = splitID
	return nil
}

// CommitSplitTransition writes the chosen transition onto the split point
// selected by BeginSplitTransition and clears the selection.
func (s *Session) CommitSplitTransition(name string) error {
	if name != timeline.TransitionNone && !transition.Known(name) {
		return ErrUnknownTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeSplitID == "" {
		return ErrNoActiveSplit
	}
	if !s.timeline.SetSplitTransition(s.activeSplitID, name) {
		s.activeSplitID = ""
		return ErrUnknownSplit
	}
	s.activeSplitID = ""
	return nil
}

// ActiveSplitID returns the split currently being configured, if any.
func (s *Session) ActiveSplitID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSplitID
}

// --- mixdown ---

// Mixdown invokes the external mixing service once per audio overlay,
// using each overlay's absolute-time window and volume. Outputs land in
// outputDir. A failing mix is reported but leaves edit state untouched.
func (s *Session) Mixdown(ctx context.Context, mix mixer.Mixer, outputDir string) error {
	s.mu.Lock()
	audio := s.overlays.AudioOverlays()
	s.mu.Unlock()

	for i, o := range audio {
		out := filepath.Join(outputDir, fmt.Sprintf("%s_mix_%02d.mp4", s.ID, i+1))
		opts := mixer.Options{
			Start:  o.Start,
			End:    o.End,
			Volume: o.Audio.Volume,
		}
		if err := mix.Mix(ctx, s.MediaURI, o.Audio.URI, out, opts); err != nil {
			return fmt.Errorf("mix overlay %s: %w", o.ID, err)
		}
	}
	return nil
}

// --- snapshot ---

// Snapshot is a consistent copy of the whole edit state for the API layer.
type Snapshot struct {
	ID                string
	MediaURI          string
	Duration          float64
	Mode              timeline.Mode
	TrimStart         float64
	TrimEnd           float64
	EffectiveDuration float64
	Segments          []timeline.Segment
	Splits            []timeline.SplitPoint
	Overlays          []overlay.Overlay
	Effects           []transition.Effect
	Frames            []frames.Frame
	ActiveSplitID     string
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	effects := make([]transition.Effect, len(s.effects))
	copy(effects, s.effects)
	frameSet := make([]frames.Frame, len(s.frames))
	copy(frameSet, s.frames)

	return Snapshot{
		ID:                s.ID,
		MediaURI:          s.MediaURI,
		Duration:          s.Duration,
		Mode:              s.timeline.Mode(),
		TrimStart:         s.timeline.TrimStart(),
		TrimEnd:           s.timeline.TrimEnd(),
		EffectiveDuration: s.timeline.EffectiveDuration(),
		Segments:          s.timeline.Segments(),
		Splits:            s.timeline.Splits(),
		Overlays:          s.overlays.Overlays(),
		Effects:           effects,
		Frames:            frameSet,
		ActiveSplitID:     s.activeSplitID,
	}
}

// ToVirtual converts absolute media time to the edited timeline's time.
func (s *Session) ToVirtual(abs float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.ToVirtual(abs)
}

// ToAbsolute converts edited-timeline time back to absolute media time.
func (s *Session) ToAbsolute(virt float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.ToAbsolute(virt)
}

// Timeline exposes the underlying edit model for exporters. Callers must
// treat it as read-only.
func (s *Session) Timeline() *timeline.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline
}
