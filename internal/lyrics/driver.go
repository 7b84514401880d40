package lyrics

import (
    "context"
    "sync"
    "time"

    "github.com/sirupsen/logrus"
)

// Sample is one reading of the player clock.
type Sample struct {
    Position time.Duration
    Playing  bool
}

// PositionSource reads the current player position.
type PositionSource interface {
    Sample(ctx context.Context) (Sample, error)
}

type SourceFunc func(ctx context.Context) (Sample, error)

func (f SourceFunc) Sample(ctx context.Context) (Sample, error) { return f(ctx) }

// Driver keeps a Tracker in sync with the player. It does not poll at a fixed
// rate: after each sample it sleeps until the next line is due, plus a slow
// safety resync, and it resamples immediately on Seek or when lines or offset
// change.
type Driver struct {
    src    PositionSource
    resync time.Duration
    onLine func(index int)
    log    logrus.FieldLogger

    mu      sync.Mutex
    tracker *Tracker

    kick chan struct{}
}

// NewDriver builds a driver. onLine runs on the driver goroutine every time
// the highlighted line changes; it must not block.
func NewDriver(src PositionSource, offset, minWake, resync time.Duration, onLine func(int), log logrus.FieldLogger) *Driver {
    if resync <= 0 { resync = 10 * time.Second }
    if onLine == nil { onLine = func(int) {} }
    return &Driver{
        src:     src,
        resync:  resync,
        onLine:  onLine,
        log:     log,
        tracker: NewTracker(offset, minWake),
        kick:    make(chan struct{}, 1),
    }
}

func (d *Driver) poke() {
    select {
    case d.kick <- struct{}{}:
    default:
    }
}

// SetLines replaces the lyrics and resamples. The highlight is cleared
// without an onLine call; the caller knows it just replaced the lines.
func (d *Driver) SetLines(lines []Line) {
    d.mu.Lock()
    d.tracker.Reset(lines)
    d.mu.Unlock()
    d.poke()
}

// Seeked tells the driver the player jumped.
func (d *Driver) Seeked() { d.poke() }

// AdjustOffset shifts the sync offset and returns the new value.
func (d *Driver) AdjustOffset(delta time.Duration) time.Duration {
    d.mu.Lock()
    d.tracker.Offset += delta
    off := d.tracker.Offset
    d.mu.Unlock()
    d.poke()
    return off
}

func (d *Driver) Offset() time.Duration {
    d.mu.Lock()
    defer d.mu.Unlock()
    return d.tracker.Offset
}

// Index returns the highlighted line, -1 when none.
func (d *Driver) Index() int {
    d.mu.Lock()
    defer d.mu.Unlock()
    return d.tracker.Index
}

// Run drives the tracker until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
    resync := time.NewTicker(d.resync)
    defer resync.Stop()
    wake := time.NewTimer(time.Hour)
    stopTimer(wake)
    defer wake.Stop()

    for {
        if next, ok := d.step(ctx); ok {
            wake.Reset(next)
        }
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-wake.C:
        case <-resync.C:
            stopTimer(wake)
        case <-d.kick:
            stopTimer(wake)
        }
    }
}

// step samples the player once, moves the highlight and returns the delay
// until the next line is due. Nothing is scheduled while paused.
func (d *Driver) step(ctx context.Context) (time.Duration, bool) {
    s, err := d.src.Sample(ctx)
    if err != nil {
        if ctx.Err() == nil && d.log != nil { d.log.WithError(err).Debug("lyrics: position sample failed") }
        return 0, false
    }
    d.mu.Lock()
    moved := d.tracker.Advance(s.Position)
    idx := d.tracker.Index
    next, ok := d.tracker.NextWake(s.Position)
    d.mu.Unlock()
    if moved { d.onLine(idx) }
    if !s.Playing { return 0, false }
    return next, ok
}

func stopTimer(t *time.Timer) {
    if !t.Stop() {
        select {
        case <-t.C:
        default:
        }
    }
}
