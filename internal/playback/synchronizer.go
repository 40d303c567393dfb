// Package playback reconciles an external media player's position against
// the edit model on a fixed-period tick. Deleted footage is made genuinely
// unreachable by enforcement on every tick rather than by a single seek.
package playback

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/reelcut/reelcut-agent/internal/timeline"
	"github.com/reelcut/reelcut-agent/internal/transition"
)

const (
	// TickInterval is the reconciliation period.
	TickInterval = 100 * time.Millisecond

	// endTolerance is how close to a segment end the playhead may get
	// before advancing to the next segment.
	endTolerance = 0.05

	// publishDelta damps position publication: UI state is only updated
	// when the position moved further than this since the last publish.
	publishDelta = 0.1
)

// State is the read surface the synchronizer needs from the edit model.
// *timeline.Timeline satisfies it directly.
type State interface {
	Mode() timeline.Mode
	ActiveSegments() []timeline.Segment
	TrimStart() float64
	TrimEnd() float64
}

// Synchronizer drives one player against one edit model. All observers of
// player time register on the same tick; independent timers drifting
// against each other is exactly what this avoids.
type Synchronizer struct {
	player  Player
	state   State
	effects func() []transition.Effect
	logger  *slog.Logger

	onPosition   func(float64)
	onTransition func(*transition.Active)
	hooks        []func(float64)

	lastPublished float64
	hasPublished  bool
	running       atomic.Bool
}

// Config wires a Synchronizer.
type Config struct {
	Player  Player
	State   State
	Effects func() []transition.Effect
	Logger  *slog.Logger

	// OnPosition receives the damped playback position.
	OnPosition func(float64)

	// OnTransition receives the active standalone transition effect, or
	// nil when no effect window contains the current position.
	OnTransition func(*transition.Active)
}

func NewSynchronizer(cfg Config) *Synchronizer {
	return &Synchronizer{
		player:       cfg.Player,
		state:        cfg.State,
		effects:      cfg.Effects,
		logger:       cfg.Logger,
		onPosition:   cfg.OnPosition,
		onTransition: cfg.OnTransition,
	}
}

// AddHook registers an additional observer of the reconciled position,
// called on every tick. Hooks must be registered before Run starts.
func (s *Synchronizer) AddHook(fn func(float64)) {
	s.hooks = append(s.hooks, fn)
}

// Run ticks until the context is cancelled.
func (s *Synchronizer) Run(ctx context.Context) {
	if s.running.Swap(true) {
		return
	}
	if s.logger != nil {
		s.logger.Info("playback synchronizer started")
	}

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.Info("playback synchronizer stopping")
			}
			s.running.Store(false)
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// IsRunning reports whether the tick loop is active.
func (s *Synchronizer) IsRunning() bool {
	return s.running.Load()
}

// Tick performs one reconciliation: read the player's position, force it
// back inside valid segments, publish the damped position, and evaluate
// standalone transition windows.
func (s *Synchronizer) Tick() {
	if s.player == nil || s.state == nil {
		return
	}

	raw := s.player.CurrentTime()
	t := math.Round(raw*10) / 10
	target := s.reconcile(t)

	// Compare against the raw reading: a position that merely rounds onto
	// a legal value may still sit inside deleted footage.
	if target != raw {
		s.player.SetCurrentTime(target)
	}

	if !s.hasPublished || math.Abs(target-s.lastPublished) > publishDelta {
		s.lastPublished = target
		s.hasPublished = true
		if s.onPosition != nil {
			s.onPosition(target)
		}
	}

	if s.onTransition != nil && s.effects != nil {
		s.onTransition(transition.ActiveAt(s.effects(), target))
	}

	for _, h := range s.hooks {
		h(target)
	}
}

// reconcile maps a reported position to the nearest legal one.
func (s *Synchronizer) reconcile(t float64) float64 {
	if s.state.Mode() == timeline.ModeSplit {
		if segs := s.state.ActiveSegments(); len(segs) > 0 {
			return reconcileSegments(t, segs)
		}
	}

	// Trim-only mode: clamp to the trim bounds, looping at the end.
	start, end := s.state.TrimStart(), s.state.TrimEnd()
	if math.IsNaN(t) || t < start {
		return start
	}
	if t >= end-endTolerance {
		return start
	}
	return t
}

func reconcileSegments(t float64, segs []timeline.Segment) float64 {
	idx := -1
	for i, seg := range segs {
		if seg.Contains(t) {
			idx = i
			break
		}
	}
	if idx == -1 {
		// In a gap or outside the edit entirely: restart from the top.
		return segs[0].Start
	}

	seg := segs[idx]
	if t < seg.Start {
		return seg.Start
	}
	if t >= seg.End-endTolerance {
		// Advance to the next segment, wrapping to the first at the end.
		next := idx + 1
		if next >= len(segs) {
			next = 0
		}
		return segs[next].Start
	}
	return t
}
