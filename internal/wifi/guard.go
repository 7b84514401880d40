package wifi

import (
    "sync"

    "github.com/pkg/errors"
)

// ErrInFlight means a connection chain for the SSID is already running.
var ErrInFlight = errors.New("connection already in progress")

// Guard allows one chain per SSID. A second start while one is running is
// rejected rather than superseding the first.
type Guard struct {
    mu       sync.Mutex
    inflight map[string]struct{}
}

// Begin claims ssid. The returned release must be called when the chain ends.
func (g *Guard) Begin(ssid string) (func(), error) {
    g.mu.Lock()
    defer g.mu.Unlock()
    if g.inflight == nil { g.inflight = map[string]struct{}{} }
    if _, busy := g.inflight[ssid]; busy { return nil, errors.Wrap(ErrInFlight, ssid) }
    g.inflight[ssid] = struct{}{}
    var once sync.Once
    return func() {
        once.Do(func() {
            g.mu.Lock()
            delete(g.inflight, ssid)
            g.mu.Unlock()
        })
    }, nil
}

// Busy reports whether a chain for ssid is running.
func (g *Guard) Busy(ssid string) bool {
    g.mu.Lock()
    defer g.mu.Unlock()
    _, ok := g.inflight[ssid]
    return ok
}
