package playback

import (
	"math"
	"testing"

	"github.com/reelcut/reelcut-agent/internal/timeline"
	"github.com/reelcut/reelcut-agent/internal/transition"
)

type fakePlayer struct {
	time     float64
	duration float64
	playing  bool
	seeks    int
}

func (p *fakePlayer) CurrentTime() float64     { return p.time }
func (p *fakePlayer) SetCurrentTime(t float64) { p.time = t; p.seeks++ }
func (p *fakePlayer) Duration() float64        { return p.duration }
func (p *fakePlayer) Playing() bool            { return p.playing }

func splitTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	tl := timeline.New(10)
	tl.Split(3)
	tl.Split(7)
	for _, s := range tl.Segments() {
		if math.Abs(s.Start-3) < 0.01 && math.Abs(s.End-7) < 0.01 {
			tl.DeleteSegment(s.ID)
		}
	}
	return tl
}

func newSync(player Player, state State) *Synchronizer {
	return NewSynchronizer(Config{Player: player, State: state})
}

func TestTick_SegmentEnforcement(t *testing.T) {
	tl := splitTimeline(t)

	tests := []struct {
		name string
		at   float64
		want float64
	}{
		{"inside first segment stays", 1.5, 1.5},
		{"inside deleted gap restarts", 5, 0},
		{"near segment end advances", 2.98, 7},
		{"at last segment end wraps", 10, 0},
		{"past media end restarts", 12, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := &fakePlayer{time: tt.at, duration: 10}
			newSync(player, tl).Tick()
			if math.Abs(player.time-tt.want) > 0.01 {
				t.Errorf("player time = %v, want %v", player.time, tt.want)
			}
		})
	}
}

func TestTick_GapPositionRoundingOntoBoundary(t *testing.T) {
	// 6.99 sits inside the deleted gap [3,7) but rounds to 7.0, a legal
	// position. The write-back must still happen or the player dwells in
	// deleted footage.
	tl := splitTimeline(t)
	player := &fakePlayer{time: 6.99, duration: 10}

	newSync(player, tl).Tick()

	if player.time != 7 {
		t.Fatalf("player time = %v, want 7", player.time)
	}
	if player.seeks != 1 {
		t.Errorf("seeks = %d, want 1", player.seeks)
	}

	contained := false
	for _, s := range tl.ActiveSegments() {
		if s.Contains(player.time) {
			contained = true
		}
	}
	if !contained {
		t.Errorf("player at %v, outside all active segments", player.time)
	}
}

func TestTick_TrimOnlyClamp(t *testing.T) {
	tl := timeline.New(10)
	tl.SetTrimStart(2)
	tl.SetTrimEnd(8)

	tests := []struct {
		name string
		at   float64
		want float64
	}{
		{"before trim start clamps", 0.5, 2},
		{"inside trim stays", 5, 5},
		{"at trim end loops", 8, 2},
		{"near trim end loops", 7.96, 2},
		{"NaN clamps to start", math.NaN(), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := &fakePlayer{time: tt.at, duration: 10}
			newSync(player, tl).Tick()
			if math.Abs(player.time-tt.want) > 0.01 {
				t.Errorf("player time = %v, want %v", player.time, tt.want)
			}
		})
	}
}

func TestTick_PlaybackContainment(t *testing.T) {
	// After any number of ticks from any starting position, the player is
	// inside an active segment.
	tl := splitTimeline(t)

	for _, start := range []float64{0, 2.5, 3.5, 5, 6.99, 7, 9.99, 10, 15, -1} {
		player := &fakePlayer{time: start, duration: 10}
		sync := newSync(player, tl)
		for i := 0; i < 5; i++ {
			sync.Tick()
			player.time += 0.1 // simulate playback between ticks
		}
		sync.Tick()

		contained := false
		for _, s := range tl.ActiveSegments() {
			if s.Contains(player.time) {
				contained = true
			}
		}
		if !contained {
			t.Errorf("start %v: player at %v, outside all active segments", start, player.time)
		}
	}
}

func TestTick_PublishDamping(t *testing.T) {
	tl := timeline.New(10)
	player := &fakePlayer{time: 1, duration: 10}

	var published []float64
	sync := NewSynchronizer(Config{
		Player:     player,
		State:      tl,
		OnPosition: func(t float64) { published = append(published, t) },
	})

	sync.Tick() // first publish always fires
	player.time = 1.04
	sync.Tick() // within damping window, suppressed
	player.time = 1.3
	sync.Tick() // beyond damping window, published

	want := []float64{1, 1.3}
	if len(published) != len(want) {
		t.Fatalf("published %v, want %v", published, want)
	}
	for i := range want {
		if math.Abs(published[i]-want[i]) > 0.01 {
			t.Errorf("published[%d] = %v, want %v", i, published[i], want[i])
		}
	}
}

func TestTick_RoundsToOneDecimal(t *testing.T) {
	tl := timeline.New(10)
	player := &fakePlayer{time: 1.2345, duration: 10}

	var got float64
	sync := NewSynchronizer(Config{
		Player:     player,
		State:      tl,
		OnPosition: func(t float64) { got = t },
	})
	sync.Tick()

	if got != 1.2 {
		t.Errorf("published position = %v, want 1.2", got)
	}
}

func TestTick_TransitionWindow(t *testing.T) {
	tl := timeline.New(10)
	effects := []transition.Effect{
		{ID: "fx", Name: "fade", Timestamp: 2, Duration: 1},
	}

	player := &fakePlayer{time: 2.5, duration: 10}
	var active *transition.Active
	sync := NewSynchronizer(Config{
		Player:       player,
		State:        tl,
		Effects:      func() []transition.Effect { return effects },
		OnTransition: func(a *transition.Active) { active = a },
	})

	sync.Tick()
	if active == nil {
		t.Fatal("no active transition published inside window")
	}
	if math.Abs(active.Progress-0.5) > 0.01 {
		t.Errorf("progress = %v, want 0.5", active.Progress)
	}

	// Leaving the window clears the active transition.
	player.time = 4
	sync.Tick()
	if active != nil {
		t.Errorf("active transition = %+v after leaving window, want nil", active)
	}
}

func TestTick_HooksShareTheTick(t *testing.T) {
	tl := timeline.New(10)
	player := &fakePlayer{time: 3, duration: 10}
	sync := newSync(player, tl)

	var hookCalls int
	var hookPos float64
	sync.AddHook(func(t float64) { hookCalls++; hookPos = t })

	sync.Tick()
	sync.Tick()

	if hookCalls != 2 {
		t.Errorf("hook calls = %d, want 2", hookCalls)
	}
	if hookPos != 3 {
		t.Errorf("hook position = %v, want 3", hookPos)
	}
}

func TestTick_NilPlayer(t *testing.T) {
	tl := timeline.New(10)
	sync := newSync(nil, tl)
	sync.Tick() // must not panic
}
