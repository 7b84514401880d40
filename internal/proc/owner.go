package proc

import (
    "context"
    "sync"
)

// Owner ties async work to the lifetime of whatever requested it (a panel, a
// player view). Once closed, its context is cancelled and guarded callbacks
// are dropped instead of touching state that is gone.
type Owner struct {
    ctx    context.Context
    cancel context.CancelFunc
    mu     sync.RWMutex
    closed bool
}

func NewOwner(parent context.Context) *Owner {
    ctx, cancel := context.WithCancel(parent)
    return &Owner{ctx: ctx, cancel: cancel}
}

func (o *Owner) Context() context.Context { return o.ctx }

func (o *Owner) Alive() bool {
    o.mu.RLock()
    defer o.mu.RUnlock()
    return !o.closed
}

// Close cancels in-flight work. Safe to call more than once.
func (o *Owner) Close() {
    o.mu.Lock()
    o.closed = true
    o.mu.Unlock()
    o.cancel()
}

// Guard runs fn only while the owner is alive. The read lock is held for the
// duration of fn so Close cannot interleave with a running callback.
func (o *Owner) Guard(fn func()) bool {
    o.mu.RLock()
    defer o.mu.RUnlock()
    if o.closed { return false }
    fn()
    return true
}

// Go runs the command asynchronously and hands the outcome to done under Guard.
// Cancellation outcomes are swallowed.
func (o *Owner) Go(r Runner, done func(Result, error), name string, args ...string) {
    ch := Async(o.ctx, r, name, args...)
    go func() {
        out := <-ch
        if IsCancelled(out.Err) { return }
        o.Guard(func() { done(out.Result, out.Err) })
    }()
}
