// Package transition models fixed-duration visual effects anchored at
// absolute media times, and the parameter curves used to render them.
package transition

import (
	"errors"
	"math"
)

// DefaultDuration is the effect window length used when a caller does not
// supply one.
const DefaultDuration = 0.5

var ErrUnknownEffect = errors.New("unknown transition effect")

// Effect is a visual effect anchored at an absolute timestamp, independent
// of any split point.
type Effect struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Timestamp float64 `json:"timestamp"`
	Duration  float64 `json:"duration"`
}

// Active reports an effect whose window contains the current playback
// position, with progress through the window.
type Active struct {
	Effect   Effect  `json:"effect"`
	Progress float64 `json:"progress"`
}

// Names lists every renderable effect name.
var Names = []string{
	"fade",
	"slide-left",
	"slide-right",
	"slide-up",
	"slide-down",
	"zoom-in",
	"zoom-out",
	"spin",
	"blur",
}

// Known reports whether name is a renderable effect.
func Known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// ActiveAt returns the first effect whose window [timestamp,
// timestamp+duration] contains t, with progress clamped to [0,1]. Returns
// nil when no window matches.
func ActiveAt(effects []Effect, t float64) *Active {
	for _, e := range effects {
		if e.Duration <= 0 || math.IsNaN(e.Duration) {
			continue
		}
		if t < e.Timestamp || t > e.Timestamp+e.Duration {
			continue
		}
		progress := (t - e.Timestamp) / e.Duration
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
		return &Active{Effect: e, Progress: progress}
	}
	return nil
}
