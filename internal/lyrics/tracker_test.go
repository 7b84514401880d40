package lyrics

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func threeLines() []Line {
    return []Line{{Time: 0, Text: "a"}, {Time: ms(5000), Text: "b"}, {Time: ms(10000), Text: "c"}}
}

func TestSelect(t *testing.T) {
    lines := threeLines()
    assert.Equal(t, 1, Select(lines, ms(7000)))
    assert.Equal(t, 0, Select(lines, 0))
    assert.Equal(t, 1, Select(lines, ms(5000)))
    assert.Equal(t, 2, Select(lines, time.Hour))
    assert.Equal(t, -1, Select(lines[1:], ms(100)))
    assert.Equal(t, -1, Select(nil, ms(100)))
}

func TestTrackerOffsetShiftsSelection(t *testing.T) {
    tr := NewTracker(ms(-550), 0)
    tr.Reset(threeLines())
    assert.True(t, tr.Advance(ms(4500)))
    assert.Equal(t, 1, tr.Index)
    assert.False(t, tr.Advance(ms(4600)))

    tr.Offset = ms(1000)
    assert.True(t, tr.Advance(ms(500)))
    assert.Equal(t, 0, tr.Index, "adjusted position clamps at zero")
}

func TestTrackerNextWake(t *testing.T) {
    tr := NewTracker(0, ms(20))
    tr.Reset(threeLines())
    tr.Advance(ms(7000))
    d, ok := tr.NextWake(ms(7000))
    assert.True(t, ok)
    assert.Equal(t, ms(3000), d)

    d, ok = tr.NextWake(ms(9995))
    assert.True(t, ok)
    assert.Equal(t, ms(20), d)

    tr.Advance(ms(11000))
    _, ok = tr.NextWake(ms(11000))
    assert.False(t, ok)
}

func TestTrackerCurrent(t *testing.T) {
    tr := NewTracker(0, 0)
    _, ok := tr.Current()
    assert.False(t, ok)
    tr.Reset(threeLines())
    tr.Advance(ms(5000))
    l, ok := tr.Current()
    assert.True(t, ok)
    assert.Equal(t, "b", l.Text)
}

func TestScrollOffset(t *testing.T) {
    assert.Equal(t, 0, ScrollOffset(3, 5, 10), "everything fits")
    assert.Equal(t, 0, ScrollOffset(2, 40, 10))
    assert.Equal(t, 15, ScrollOffset(20, 40, 10))
    assert.Equal(t, 30, ScrollOffset(39, 40, 10))
    assert.Equal(t, 0, ScrollOffset(-1, 40, 10))
}
