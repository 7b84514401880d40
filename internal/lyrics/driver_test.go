package lyrics

import (
    "context"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestDriverWakesPerLine(t *testing.T) {
    start := time.Now()
    var samples atomic.Int32
    src := SourceFunc(func(context.Context) (Sample, error) {
        samples.Add(1)
        return Sample{Position: time.Since(start), Playing: true}, nil
    })
    got := make(chan int, 16)
    d := NewDriver(src, 0, ms(5), time.Minute, func(i int) { got <- i }, nil)
    d.SetLines([]Line{{Time: 0, Text: "a"}, {Time: ms(60), Text: "b"}, {Time: ms(120), Text: "c"}})
    assert.Equal(t, -1, d.Index())

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    done := make(chan error, 1)
    go func() { done <- d.Run(ctx) }()

    var seq []int
    deadline := time.After(2 * time.Second)
    for len(seq) < 3 {
        select {
        case i := <-got:
            seq = append(seq, i)
        case <-deadline:
            t.Fatalf("only saw %v", seq)
        }
    }
    assert.Equal(t, []int{0, 1, 2}, seq)
    assert.LessOrEqual(t, int(samples.Load()), 8, "driver should sleep between lines, not spin")

    cancel()
    assert.ErrorIs(t, <-done, context.Canceled)
}

func TestDriverPausedDoesNotSchedule(t *testing.T) {
    var samples atomic.Int32
    src := SourceFunc(func(context.Context) (Sample, error) {
        samples.Add(1)
        return Sample{Position: ms(1000), Playing: false}, nil
    })
    d := NewDriver(src, 0, ms(5), time.Minute, nil, nil)
    d.SetLines([]Line{{Time: 0, Text: "a"}, {Time: ms(1010), Text: "b"}})

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    go func() { _ = d.Run(ctx) }()

    time.Sleep(80 * time.Millisecond)
    before := samples.Load()
    assert.LessOrEqual(t, int(before), 2)
    assert.Equal(t, 0, d.Index())

    d.Seeked()
    assert.Eventually(t, func() bool { return samples.Load() > before }, time.Second, 5*time.Millisecond)
}

func TestDriverAdjustOffset(t *testing.T) {
    src := SourceFunc(func(context.Context) (Sample, error) {
        return Sample{Position: ms(4800), Playing: false}, nil
    })
    d := NewDriver(src, 0, 0, time.Minute, nil, nil)
    d.SetLines(threeLines())

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    go func() { _ = d.Run(ctx) }()

    assert.Eventually(t, func() bool { return d.Index() == 0 }, time.Second, 5*time.Millisecond)
    assert.Equal(t, ms(-250), d.AdjustOffset(ms(-250)))
    assert.Eventually(t, func() bool { return d.Index() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDriverResyncCatchesSilentJump(t *testing.T) {
    var pos atomic.Int64
    pos.Store(int64(ms(1000)))
    src := SourceFunc(func(context.Context) (Sample, error) {
        return Sample{Position: time.Duration(pos.Load()), Playing: false}, nil
    })
    got := make(chan int, 4)
    d := NewDriver(src, 0, ms(5), ms(30), func(i int) { got <- i }, nil)
    d.SetLines(threeLines())

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    go func() { _ = d.Run(ctx) }()
    assert.Eventually(t, func() bool { return d.Index() == 0 }, time.Second, 5*time.Millisecond)

    // paused, so no line wake is pending; only the resync tick can notice
    pos.Store(int64(ms(6000)))
    assert.Eventually(t, func() bool { return d.Index() == 1 }, time.Second, 5*time.Millisecond)
    assert.Equal(t, 0, <-got)
    assert.Equal(t, 1, <-got)
}
