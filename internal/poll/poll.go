package poll

import (
    "context"
    "sync"
    "sync/atomic"
    "time"
)

// Poller calls fn once immediately and then every interval until stopped.
// At most one fn call per run is in flight; ticks that arrive while fn is still
// running are skipped rather than queued.
type Poller struct {
    interval time.Duration
    fn       func(ctx context.Context)

    mu      sync.Mutex
    cancel  context.CancelFunc
    trigger chan struct{}
    running bool

    ticks atomic.Int64
}

func New(interval time.Duration, fn func(ctx context.Context)) *Poller {
    if interval <= 0 { interval = time.Second }
    return &Poller{interval: interval, fn: fn}
}

// Start begins polling. Starting an already-running poller is a no-op.
func (p *Poller) Start(parent context.Context) {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.running { return }
    ctx, cancel := context.WithCancel(parent)
    p.cancel = cancel
    p.trigger = make(chan struct{}, 1)
    p.running = true
    // busy is per run: a call left over from before a Stop must not block
    // the immediate call of this one
    go p.loop(ctx, p.trigger, new(atomic.Bool))
}

// Stop cancels the timer and the context handed to any in-flight call, so
// late results can be recognised and discarded.
func (p *Poller) Stop() {
    p.mu.Lock()
    defer p.mu.Unlock()
    if !p.running { return }
    p.cancel()
    p.running = false
}

// TriggerOnce requests an immediate extra call. It does nothing when the
// poller is stopped, and collapses with any trigger already pending.
func (p *Poller) TriggerOnce() {
    p.mu.Lock()
    defer p.mu.Unlock()
    if !p.running { return }
    select {
    case p.trigger <- struct{}{}:
    default:
    }
}

func (p *Poller) Running() bool {
    p.mu.Lock()
    defer p.mu.Unlock()
    return p.running
}

// Ticks counts calls of fn since construction.
func (p *Poller) Ticks() int64 { return p.ticks.Load() }

func (p *Poller) loop(ctx context.Context, trigger <-chan struct{}, busy *atomic.Bool) {
    t := time.NewTicker(p.interval)
    defer t.Stop()
    p.fire(ctx, busy)
    for {
        select {
        case <-ctx.Done():
            return
        case <-t.C:
            p.fire(ctx, busy)
        case <-trigger:
            p.fire(ctx, busy)
        }
    }
}

func (p *Poller) fire(ctx context.Context, busy *atomic.Bool) {
    if !busy.CompareAndSwap(false, true) { return }
    p.ticks.Add(1)
    go func() {
        defer busy.Store(false)
        if ctx.Err() != nil { return }
        p.fn(ctx)
    }()
}
