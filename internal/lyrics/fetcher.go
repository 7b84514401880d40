package lyrics

import (
    "context"
    "sync"

    "golang.org/x/sync/singleflight"
)

// Fetcher runs at most one lyric lookup per track. Asking for a different
// track cancels the previous lookup; asking again for the same track joins the
// lookup already running.
type Fetcher struct {
    res *Resolver

    mu      sync.Mutex
    current string
    ctx     context.Context
    cancel  context.CancelFunc
    group   singleflight.Group
}

func NewFetcher(r *Resolver) *Fetcher { return &Fetcher{res: r} }

// Fetch resolves t. A superseded call returns context.Canceled.
func (f *Fetcher) Fetch(parent context.Context, t Track) (Resolved, error) {
    key := t.Signature() + "|" + t.Album

    f.mu.Lock()
    if f.current != key || f.cancel == nil {
        if f.cancel != nil {
            f.cancel()
            f.group.Forget(f.current)
        }
        f.current = key
        f.ctx, f.cancel = context.WithCancel(parent)
    }
    ctx := f.ctx
    f.mu.Unlock()

    ch := f.group.DoChan(key, func() (any, error) { return f.res.Resolve(ctx, t) })
    select {
    case <-parent.Done():
        return Resolved{}, parent.Err()
    case r := <-ch:
        if ctx.Err() != nil { return Resolved{}, context.Canceled }
        if r.Err != nil { return Resolved{}, r.Err }
        return r.Val.(Resolved), nil
    }
}

// Cancel aborts whatever lookup is running.
func (f *Fetcher) Cancel() {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.cancel != nil {
        f.cancel()
        f.group.Forget(f.current)
    }
    f.cancel = nil
    f.current = ""
}
