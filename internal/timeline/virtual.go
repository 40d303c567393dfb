package timeline

import "math"

// ToVirtual converts an absolute media time to virtual (gap-free) time by
// accumulating active segment lengths in order.
//
// An absolute time that falls inside a removed gap maps to the accumulated
// active length strictly before the gap, i.e. it clamps to the virtual
// boundary where the gap was cut out. Times before the first active segment
// map to 0 and times past the last map to the total virtual duration.
func (t *Timeline) ToVirtual(abs float64) float64 {
	if math.IsNaN(abs) {
		return 0
	}
	var acc float64
	for _, s := range t.segments {
		if s.Deleted {
			continue
		}
		if abs < s.Start {
			return acc
		}
		if abs <= s.End {
			return acc + (abs - s.Start)
		}
		acc += s.Length()
	}
	return acc
}

// ToAbsolute converts a virtual time back to absolute media time by
// consuming the virtual length against active segments in order.
//
// A virtual time landing exactly on a segment boundary is ambiguous when a
// gap was removed there: it names both the end of one segment and the start
// of the next. It resolves to the following segment's start, the next
// playable frame. A virtual time beyond the total virtual duration clamps
// to the end of the last active segment; with no active segments the trim
// start is returned.
func (t *Timeline) ToAbsolute(virt float64) float64 {
	if math.IsNaN(virt) || virt < 0 {
		virt = 0
	}
	active := t.ActiveSegments()
	if len(active) == 0 {
		return t.trimStart
	}
	remaining := virt
	for i, s := range active {
		last := i == len(active)-1
		if remaining < s.Length() || (last && remaining <= s.Length()) {
			return s.Start + remaining
		}
		remaining -= s.Length()
	}
	return active[len(active)-1].End
}
