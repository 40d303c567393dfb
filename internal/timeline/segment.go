package timeline

import (
	"crypto/rand"
	"fmt"
	"math"
	"sort"
)

// mergeEpsilon is the gap below which two adjacent segments are considered
// contiguous and merged during normalization.
const mergeEpsilon = 0.001

// Segment is a contiguous kept range of the physical media, in absolute
// seconds. Deleted segments are retained as tombstones and excluded from
// virtual-time computation and playback.
type Segment struct {
	ID      string  `json:"id"`
	Start   float64 `json:"start_time"`
	End     float64 `json:"end_time"`
	Deleted bool    `json:"is_deleted"`
}

// Length returns the segment duration in seconds.
func (s Segment) Length() float64 {
	return s.End - s.Start
}

// Contains reports whether t falls inside the segment, bounds inclusive.
func (s Segment) Contains(t float64) bool {
	return t >= s.Start && t <= s.End
}

// TransitionNone marks a split point with no transition effect attached.
const TransitionNone = "none"

// SplitPoint is a cut location inside the trimmed range. Transition names a
// visual effect rendered around the cut, or TransitionNone.
type SplitPoint struct {
	ID         string  `json:"id"`
	Time       float64 `json:"time"`
	Transition string  `json:"transition_type"`
}

// NormalizeSegments returns a well-formed copy of segs: negative bounds
// clamped to zero, degenerate entries dropped, sorted by start, and entries
// closer than mergeEpsilon merged. The result is idempotent: normalizing a
// normalized list returns an equal list.
//
// Deleted tombstones pass through untouched; only active segments are
// normalized against each other.
func NormalizeSegments(segs []Segment) []Segment {
	var active, tombstones []Segment
	for _, s := range segs {
		if s.Deleted {
			tombstones = append(tombstones, s)
			continue
		}
		if math.IsNaN(s.Start) || math.IsNaN(s.End) {
			continue
		}
		if s.Start < 0 {
			s.Start = 0
		}
		if s.End < 0 {
			s.End = 0
		}
		if s.End <= s.Start {
			continue
		}
		active = append(active, s)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Start < active[j].Start
	})

	var merged []Segment
	for _, s := range active {
		if n := len(merged); n > 0 && s.Start <= merged[n-1].End+mergeEpsilon {
			if s.End > merged[n-1].End {
				merged[n-1].End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}

	out := make([]Segment, 0, len(merged)+len(tombstones))
	out = append(out, merged...)
	out = append(out, tombstones...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// NewID returns a random identifier for segments, split points, overlays and
// sessions.
func NewID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
