// Package timeline implements the non-destructive edit model for a single
// media file: a list of kept segments over the physical duration, trim
// bounds, split points, and the mapping between absolute media time and the
// gap-free virtual time the user perceives.
//
// The model is copy-on-write: every mutation swaps whole slices rather than
// editing entries in place, so a concurrent reader observing the model
// mid-mutation sees either the old state or the new one, never a torn mix.
package timeline

import (
	"errors"
	"math"
	"sort"
)

const (
	// minSplitGap is the tolerance inside which a second split at the same
	// location is rejected.
	minSplitGap = 0.1

	// minTrimGap is the smallest span the trim bounds may be narrowed to.
	minTrimGap = 0.1

	// fallbackDuration stands in for media that reports no usable duration,
	// keeping every downstream computation finite.
	fallbackDuration = 0.1
)

var (
	ErrSplitOutOfBounds = errors.New("split time outside trim bounds")
	ErrSplitTooClose    = errors.New("split too close to an existing split point")
)

// Mode is the explicit edit state machine. Trimming and splitting are
// mutually exclusive: applying a trim discards split state and returns the
// model to a single segment.
type Mode int

const (
	ModeUncut Mode = iota
	ModeTrimmed
	ModeSplit
)

func (m Mode) String() string {
	switch m {
	case ModeTrimmed:
		return "trimmed"
	case ModeSplit:
		return "split"
	default:
		return "uncut"
	}
}

// Timeline is the authoritative edit model for one media file.
type Timeline struct {
	duration  float64
	mode      Mode
	trimStart float64
	trimEnd   float64
	segments  []Segment
	splits    []SplitPoint
}

// New creates a timeline covering the full media duration with a single
// kept segment. A NaN or non-positive duration is clamped to a small
// positive fallback rather than rejected; the caller is typically a render
// loop that cannot tolerate an error here.
func New(duration float64) *Timeline {
	if math.IsNaN(duration) || duration <= 0 {
		duration = fallbackDuration
	}
	t := &Timeline{duration: duration}
	t.reset()
	return t
}

func (t *Timeline) reset() {
	t.trimStart = 0
	t.trimEnd = t.duration
	t.mode = ModeUncut
	t.splits = nil
	t.segments = []Segment{{ID: NewID(), Start: 0, End: t.duration}}
}

// Duration returns the full physical media duration.
func (t *Timeline) Duration() float64 { return t.duration }

// Mode returns the current edit mode.
func (t *Timeline) Mode() Mode { return t.mode }

// TrimStart returns the lower trim bound in absolute seconds.
func (t *Timeline) TrimStart() float64 { return t.trimStart }

// TrimEnd returns the upper trim bound in absolute seconds.
func (t *Timeline) TrimEnd() float64 { return t.trimEnd }

// Segments returns a copy of the full segment list, tombstones included.
func (t *Timeline) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Splits returns a copy of the split point list, sorted by time.
func (t *Timeline) Splits() []SplitPoint {
	out := make([]SplitPoint, len(t.splits))
	copy(out, t.splits)
	return out
}

// ActiveSegments returns the non-deleted segments in ascending order.
func (t *Timeline) ActiveSegments() []Segment {
	var out []Segment
	for _, s := range t.segments {
		if !s.Deleted {
			out = append(out, s)
		}
	}
	return out
}

// ActiveSegmentAt returns the non-deleted segment containing t, if any.
func (t *Timeline) ActiveSegmentAt(at float64) (Segment, bool) {
	for _, s := range t.segments {
		if !s.Deleted && s.Contains(at) {
			return s, true
		}
	}
	return Segment{}, false
}

// EffectiveDuration returns the total length of the non-deleted segments.
// This is what the seek bar and timeline UI treat as the edited video's
// length.
func (t *Timeline) EffectiveDuration() float64 {
	var total float64
	for _, s := range t.segments {
		if !s.Deleted {
			total += s.Length()
		}
	}
	return total
}

// Split inserts a cut at the given absolute time and rebuilds the segment
// partition from the trim bounds and all split points. The recomputed
// partition is authoritative: every resulting segment starts undeleted.
//
// Rejected with ErrSplitOutOfBounds at or outside the trim bounds, and with
// ErrSplitTooClose within minSplitGap of an existing split point.
func (t *Timeline) Split(at float64) (SplitPoint, error) {
	if math.IsNaN(at) || at <= t.trimStart || at >= t.trimEnd {
		return SplitPoint{}, ErrSplitOutOfBounds
	}
	for _, sp := range t.splits {
		if math.Abs(sp.Time-at) < minSplitGap {
			return SplitPoint{}, ErrSplitTooClose
		}
	}

	point := SplitPoint{ID: NewID(), Time: at, Transition: TransitionNone}

	splits := make([]SplitPoint, 0, len(t.splits)+1)
	splits = append(splits, t.splits...)
	splits = append(splits, point)
	sort.SliceStable(splits, func(i, j int) bool {
		return splits[i].Time < splits[j].Time
	})
	t.splits = splits

	t.rebuildPartition()
	t.mode = ModeSplit
	return point, nil
}

// rebuildPartition replaces the segment set with the partition induced by
// the trim bounds and the sorted split points. The pieces are contiguous on
// purpose, so they must not go through NormalizeSegments, which would merge
// them straight back together.
func (t *Timeline) rebuildPartition() {
	bounds := make([]float64, 0, len(t.splits)+2)
	bounds = append(bounds, t.trimStart)
	for _, sp := range t.splits {
		bounds = append(bounds, sp.Time)
	}
	bounds = append(bounds, t.trimEnd)

	segs := make([]Segment, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		if bounds[i+1] <= bounds[i] {
			continue
		}
		segs = append(segs, Segment{ID: NewID(), Start: bounds[i], End: bounds[i+1]})
	}
	t.segments = segs
}

// DeleteSegment soft-deletes the segment with the given id and removes any
// split point falling inside its range; the cut that produced a segment is
// meaningless once the segment is gone. An unknown id is a benign no-op.
//
// The deleted segment is returned so the caller can relocate the playhead
// if it was inside the removed range.
func (t *Timeline) DeleteSegment(id string) (Segment, bool) {
	idx := -1
	for i, s := range t.segments {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Segment{}, false
	}

	segs := make([]Segment, len(t.segments))
	copy(segs, t.segments)
	segs[idx].Deleted = true
	t.segments = segs
	victim := segs[idx]

	var splits []SplitPoint
	for _, sp := range t.splits {
		if sp.Time >= victim.Start && sp.Time <= victim.End {
			continue
		}
		splits = append(splits, sp)
	}
	t.splits = splits

	return victim, true
}

// NearestActiveStart returns the start of the non-deleted segment nearest
// to t, preferring the later segment on ties so playback continues forward
// after a delete. The second result is false when every segment has been
// deleted.
func (t *Timeline) NearestActiveStart(at float64) (float64, bool) {
	best := math.Inf(1)
	var start float64
	found := false
	for _, s := range t.segments {
		if s.Deleted {
			continue
		}
		d := 0.0
		switch {
		case at < s.Start:
			d = s.Start - at
		case at > s.End:
			d = at - s.End
		}
		if d < best || (d == best && s.Start > start) {
			best = d
			start = s.Start
			found = true
		}
	}
	return start, found
}

// SetTrimStart narrows the lower trim bound. The value is clamped to
// [0, trimEnd-minTrimGap]. Trimming collapses the model back to a single
// segment and discards split state; trim and split are mutually exclusive
// edit modes.
func (t *Timeline) SetTrimStart(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > t.trimEnd-minTrimGap {
		v = t.trimEnd - minTrimGap
	}
	t.trimStart = v
	t.collapseToTrim()
	return v
}

// SetTrimEnd narrows the upper trim bound, clamped to
// [trimStart+minTrimGap, duration].
func (t *Timeline) SetTrimEnd(v float64) float64 {
	if math.IsNaN(v) || v > t.duration {
		v = t.duration
	}
	if v < t.trimStart+minTrimGap {
		v = t.trimStart + minTrimGap
	}
	t.trimEnd = v
	t.collapseToTrim()
	return v
}

// ResetTrim restores the no-trim state covering the full media duration.
func (t *Timeline) ResetTrim() {
	t.reset()
}

func (t *Timeline) collapseToTrim() {
	t.splits = nil
	t.segments = NormalizeSegments([]Segment{{ID: NewID(), Start: t.trimStart, End: t.trimEnd}})
	if t.trimStart == 0 && t.trimEnd == t.duration {
		t.mode = ModeUncut
	} else {
		t.mode = ModeTrimmed
	}
}

// SetSplitTransition writes a transition effect name onto the split point
// with the given id. Returns false for an unknown id.
func (t *Timeline) SetSplitTransition(id, transition string) bool {
	for i, sp := range t.splits {
		if sp.ID == id {
			splits := make([]SplitPoint, len(t.splits))
			copy(splits, t.splits)
			splits[i].Transition = transition
			t.splits = splits
			return true
		}
	}
	return false
}
