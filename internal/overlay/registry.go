// Package overlay manages time-anchored annotations over a video: text,
// stickers, images, and audio clips. Overlay timing is always expressed in
// absolute media time, independent of the edit model; an overlay is visible
// whenever the current absolute time falls inside its window.
package overlay

import (
	"errors"
	"math"

	"github.com/reelcut/reelcut-agent/internal/timeline"
)

// DefaultWindow is the overlay lifetime when created without an explicit
// end time.
const DefaultWindow = 3.0

var (
	ErrInvalidKind   = errors.New("unknown overlay kind")
	ErrInvalidWindow = errors.New("overlay end time must be after start time")
)

type Kind string

const (
	KindText    Kind = "text"
	KindSticker Kind = "sticker"
	KindImage   Kind = "image"
	KindAudio   Kind = "audio"
)

// Size limits per overlay kind, in normalized canvas units.
var sizeLimits = map[Kind][2]float64{
	KindText:    {0.05, 1.0},
	KindSticker: {0.02, 0.5},
	KindImage:   {0.05, 1.0},
	KindAudio:   {0, 0}, // audio has no visual extent
}

// Overlay is one annotation. Exactly one payload pointer is set, matching
// Kind.
type Overlay struct {
	ID    string  `json:"id"`
	Kind  Kind    `json:"kind"`
	Start float64 `json:"start_time"`
	End   float64 `json:"end_time"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size,omitempty"`

	Text    *TextPayload    `json:"text,omitempty"`
	Sticker *StickerPayload `json:"sticker,omitempty"`
	Image   *ImagePayload   `json:"image,omitempty"`
	Audio   *AudioPayload   `json:"audio,omitempty"`
}

type TextPayload struct {
	Content string `json:"content"`
	Color   string `json:"color,omitempty"`
	Font    string `json:"font,omitempty"`
}

type StickerPayload struct {
	Glyph string `json:"glyph"`
}

type ImagePayload struct {
	URI string `json:"uri"`
}

type AudioPayload struct {
	URI    string  `json:"uri"`
	Name   string  `json:"name,omitempty"`
	Volume float64 `json:"volume"`
}

// VisibleAt reports whether the overlay's window contains t.
func (o Overlay) VisibleAt(t float64) bool {
	return t >= o.Start && t <= o.End
}

// Registry holds the overlays for one edit session. The overlay slice is
// swapped whole on every mutation so concurrent readers never observe a
// torn list.
type Registry struct {
	duration float64
	overlays []Overlay
}

// NewRegistry creates an empty registry for media of the given duration.
func NewRegistry(duration float64) *Registry {
	if math.IsNaN(duration) || duration <= 0 {
		duration = DefaultWindow
	}
	return &Registry{duration: duration}
}

// Overlays returns a copy of the overlay list.
func (r *Registry) Overlays() []Overlay {
	out := make([]Overlay, len(r.overlays))
	copy(out, r.overlays)
	return out
}

// VisibleAt returns the overlays whose windows contain t. Overlap across
// kinds and instances is unrestricted.
func (r *Registry) VisibleAt(t float64) []Overlay {
	var out []Overlay
	for _, o := range r.overlays {
		if o.VisibleAt(t) {
			out = append(out, o)
		}
	}
	return out
}

// Add inserts an overlay anchored at the current playback time. A zero,
// negative, or NaN o.Start counts as unset and anchors at currentTime; an
// overlay starting at the media head is expressed by a playhead at 0. When
// o.End is not after the start, the default window of min(start+3,
// duration) applies. The payload must match the kind.
func (r *Registry) Add(o Overlay, currentTime float64) (Overlay, error) {
	switch o.Kind {
	case KindText:
		if o.Text == nil {
			return Overlay{}, ErrInvalidKind
		}
	case KindSticker:
		if o.Sticker == nil {
			return Overlay{}, ErrInvalidKind
		}
	case KindImage:
		if o.Image == nil {
			return Overlay{}, ErrInvalidKind
		}
	case KindAudio:
		if o.Audio == nil {
			return Overlay{}, ErrInvalidKind
		}
	default:
		return Overlay{}, ErrInvalidKind
	}

	if math.IsNaN(o.Start) || o.Start <= 0 {
		o.Start = currentTime
	}
	if math.IsNaN(o.Start) || o.Start < 0 {
		o.Start = 0
	}
	if o.Start > r.duration {
		o.Start = r.duration
	}
	if math.IsNaN(o.End) || o.End <= o.Start {
		o.End = math.Min(o.Start+DefaultWindow, r.duration)
	}
	if o.End > r.duration {
		o.End = r.duration
	}
	if o.End <= o.Start {
		return Overlay{}, ErrInvalidWindow
	}

	o.ID = timeline.NewID()
	o.X, o.Y = clampPosition(o.X, o.Y)
	o.Size = clampSize(o.Kind, o.Size)

	overlays := make([]Overlay, 0, len(r.overlays)+1)
	overlays = append(overlays, r.overlays...)
	overlays = append(overlays, o)
	r.overlays = overlays
	return o, nil
}

// Remove deletes the overlay with the given id. Unknown ids are a benign
// no-op; the UI may already reflect the removal.
func (r *Registry) Remove(id string) bool {
	idx := r.indexOf(id)
	if idx == -1 {
		return false
	}
	overlays := make([]Overlay, 0, len(r.overlays)-1)
	overlays = append(overlays, r.overlays[:idx]...)
	overlays = append(overlays, r.overlays[idx+1:]...)
	r.overlays = overlays
	return true
}

// Reposition moves an overlay, bounded to the normalized canvas.
func (r *Registry) Reposition(id string, x, y float64) (Overlay, bool) {
	return r.update(id, func(o *Overlay) {
		o.X, o.Y = clampPosition(x, y)
	})
}

// Resize scales an overlay within its kind's limits.
func (r *Registry) Resize(id string, size float64) (Overlay, bool) {
	return r.update(id, func(o *Overlay) {
		o.Size = clampSize(o.Kind, size)
	})
}

// Retime adjusts an overlay's absolute time window, as dragged on the
// timeline. The window is clamped to the media duration and must keep a
// positive length; a degenerate drag leaves the overlay unchanged.
func (r *Registry) Retime(id string, start, end float64) (Overlay, bool) {
	if math.IsNaN(start) || math.IsNaN(end) {
		return Overlay{}, false
	}
	if start < 0 {
		start = 0
	}
	if end > r.duration {
		end = r.duration
	}
	if end <= start {
		return Overlay{}, false
	}
	return r.update(id, func(o *Overlay) {
		o.Start = start
		o.End = end
	})
}

func (r *Registry) update(id string, fn func(*Overlay)) (Overlay, bool) {
	idx := r.indexOf(id)
	if idx == -1 {
		return Overlay{}, false
	}
	overlays := make([]Overlay, len(r.overlays))
	copy(overlays, r.overlays)
	fn(&overlays[idx])
	r.overlays = overlays
	return overlays[idx], true
}

func (r *Registry) indexOf(id string) int {
	for i, o := range r.overlays {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// AudioOverlays returns the audio-kind overlays, the inputs to the external
// mixing service.
func (r *Registry) AudioOverlays() []Overlay {
	var out []Overlay
	for _, o := range r.overlays {
		if o.Kind == KindAudio {
			out = append(out, o)
		}
	}
	return out
}

func clampPosition(x, y float64) (float64, float64) {
	clamp := func(v float64) float64 {
		if math.IsNaN(v) || v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return clamp(x), clamp(y)
}

func clampSize(kind Kind, size float64) float64 {
	limits := sizeLimits[kind]
	if limits[1] == 0 {
		return 0
	}
	if math.IsNaN(size) || size == 0 {
		return limits[0]
	}
	if size < limits[0] {
		return limits[0]
	}
	if size > limits[1] {
		return limits[1]
	}
	return size
}
