package lyrics

import (
    "sort"
    "time"
)

// Tracker holds the mutable display state for one track: which line is
// highlighted and the user's sync offset. It is not safe for concurrent use;
// Driver serialises access.
type Tracker struct {
    Lines   []Line
    Index   int
    Offset  time.Duration
    MinWake time.Duration
}

func NewTracker(offset, minWake time.Duration) *Tracker {
    if minWake <= 0 { minWake = 20 * time.Millisecond }
    return &Tracker{Index: -1, Offset: offset, MinWake: minWake}
}

// Reset swaps in the lines of a new track.
func (t *Tracker) Reset(lines []Line) {
    t.Lines = lines
    t.Index = -1
}

// Adjusted applies the sync offset to a reported player position.
func (t *Tracker) Adjusted(pos time.Duration) time.Duration {
    p := pos - t.Offset
    if p < 0 { p = 0 }
    return p
}

// Select returns the index of the last line whose time is <= pos, or -1 when
// pos is before the first line.
func Select(lines []Line, pos time.Duration) int {
    i := sort.Search(len(lines), func(i int) bool { return lines[i].Time > pos })
    return i - 1
}

// Advance recomputes the highlighted line for a reported position and says
// whether it moved.
func (t *Tracker) Advance(pos time.Duration) bool {
    idx := Select(t.Lines, t.Adjusted(pos))
    if idx == t.Index { return false }
    t.Index = idx
    return true
}

// NextWake returns how long until the line after the current one is due. ok is
// false when there is no further line.
func (t *Tracker) NextWake(pos time.Duration) (time.Duration, bool) {
    next := t.Index + 1
    if next < 0 { next = 0 }
    if next >= len(t.Lines) { return 0, false }
    d := t.Lines[next].Time - t.Adjusted(pos)
    if d < t.MinWake { d = t.MinWake }
    return d, true
}

// Current returns the highlighted line.
func (t *Tracker) Current() (Line, bool) {
    if t.Index < 0 || t.Index >= len(t.Lines) { return Line{}, false }
    return t.Lines[t.Index], true
}

// ScrollOffset returns the first visible row that vertically centres the
// active line, clamped to the scrollable range.
func ScrollOffset(index, lineCount, viewHeight int) int {
    if viewHeight <= 0 || lineCount <= viewHeight { return 0 }
    if index < 0 { return 0 }
    top := index - viewHeight/2
    maxTop := lineCount - viewHeight
    if top < 0 { top = 0 }
    if top > maxTop { top = maxTop }
    return top
}
