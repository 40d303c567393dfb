package session

import "sync"

// reportedPlayer adapts client position reports to the playback.Player
// interface. The mobile host owns the real player; the agent observes it
// only through reported positions, and the synchronizer's corrections are
// read back from the same slot.
type reportedPlayer struct {
	mu       sync.Mutex
	time     float64
	playing  bool
	duration float64
}

func (p *reportedPlayer) report(t float64, playing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.time = t
	p.playing = playing
}

func (p *reportedPlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.time
}

func (p *reportedPlayer) SetCurrentTime(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.time = t
}

func (p *reportedPlayer) Duration() float64 { return p.duration }

func (p *reportedPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
