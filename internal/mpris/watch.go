package mpris

import (
    "context"
    "strings"
    "sync"
    "time"

    "github.com/godbus/dbus/v5"
    "github.com/pkg/errors"
)

type EventKind int

const (
    // Seeked carries the new position.
    Seeked EventKind = iota
    // Changed carries whichever of metadata and status the player updated.
    Changed
    Appeared
    Vanished
)

// Event is one player notification, keyed by well-known bus name.
type Event struct {
    Kind     EventKind
    Player   string
    Position time.Duration
    Metadata *Metadata
    Status   Status
}

// owners maps unique connection names (":1.42") to MPRIS names, since player
// signals are sent from the unique name.
type owners struct {
    mu sync.Mutex
    m  map[string]string
}

func (o *owners) set(unique, name string) {
    o.mu.Lock()
    defer o.mu.Unlock()
    for u, n := range o.m {
        if n == name { delete(o.m, u) }
    }
    if unique != "" { o.m[unique] = name }
}

func (o *owners) lookup(sender string) string {
    o.mu.Lock()
    defer o.mu.Unlock()
    if n, ok := o.m[sender]; ok { return n }
    return sender
}

var watchRules = [][]dbus.MatchOption{
    {
        dbus.WithMatchSender("org.freedesktop.DBus"),
        dbus.WithMatchInterface("org.freedesktop.DBus"),
        dbus.WithMatchMember("NameOwnerChanged"),
        dbus.WithMatchArg0Namespace("org.mpris.MediaPlayer2"),
    },
    {
        dbus.WithMatchObjectPath(ObjectPath),
        dbus.WithMatchInterface(PlayerIface),
        dbus.WithMatchMember("Seeked"),
    },
    {
        dbus.WithMatchObjectPath(ObjectPath),
        dbus.WithMatchInterface(propsIface),
        dbus.WithMatchMember("PropertiesChanged"),
        dbus.WithMatchArg(0, PlayerIface),
    },
}

// matcher is the part of *dbus.Conn that manages match rules.
type matcher interface {
    AddMatchSignalContext(ctx context.Context, options ...dbus.MatchOption) error
    RemoveMatchSignal(options ...dbus.MatchOption) error
}

// addMatches installs rules and returns a func that removes them again. On
// error the rules added so far are removed before returning.
func addMatches(ctx context.Context, m matcher, rules [][]dbus.MatchOption) (func(), error) {
    var added [][]dbus.MatchOption
    release := func() {
        for _, r := range added { _ = m.RemoveMatchSignal(r...) }
    }
    for _, r := range rules {
        if err := m.AddMatchSignalContext(ctx, r...); err != nil {
            release()
            return nil, errors.Wrap(err, "add match")
        }
        added = append(added, r)
    }
    return release, nil
}

// Watch subscribes to player signals. The channel closes when ctx ends, and
// the match rules are dropped with it.
func (b *Bus) Watch(ctx context.Context) (<-chan Event, error) {
    release, err := addMatches(ctx, b.conn, watchRules)
    if err != nil { return nil, err }

    own := &owners{m: map[string]string{}}
    if names, err := b.Players(ctx); err == nil {
        for _, n := range names {
            var unique string
            if err := b.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.GetNameOwner", 0, n).Store(&unique); err == nil {
                own.set(unique, n)
            }
        }
    }

    sigs := make(chan *dbus.Signal, 16)
    b.conn.Signal(sigs)
    out := make(chan Event, 16)
    go func() {
        defer close(out)
        defer release()
        defer b.conn.RemoveSignal(sigs)
        for {
            select {
            case <-ctx.Done():
                return
            case sig, ok := <-sigs:
                if !ok { return }
                ev, ok := classify(sig, own)
                if !ok { continue }
                select {
                case out <- ev:
                case <-ctx.Done():
                    return
                }
            }
        }
    }()
    return out, nil
}

// classify turns a raw signal into an Event, keeping the owner map current.
func classify(sig *dbus.Signal, own *owners) (Event, bool) {
    switch sig.Name {
    case "org.freedesktop.DBus.NameOwnerChanged":
        if len(sig.Body) != 3 { return Event{}, false }
        name, _ := sig.Body[0].(string)
        newOwner, _ := sig.Body[2].(string)
        if !strings.HasPrefix(name, NamePrefix) { return Event{}, false }
        own.set(newOwner, name)
        if newOwner == "" { return Event{Kind: Vanished, Player: name}, true }
        return Event{Kind: Appeared, Player: name}, true

    case PlayerIface + ".Seeked":
        if len(sig.Body) != 1 { return Event{}, false }
        us, ok := variantInt(dbus.MakeVariant(sig.Body[0]))
        if !ok { return Event{}, false }
        return Event{Kind: Seeked, Player: own.lookup(sig.Sender), Position: time.Duration(us) * time.Microsecond}, true

    case propsIface + ".PropertiesChanged":
        if len(sig.Body) < 2 { return Event{}, false }
        if iface, _ := sig.Body[0].(string); iface != PlayerIface { return Event{}, false }
        changed, _ := sig.Body[1].(map[string]dbus.Variant)
        ev := Event{Kind: Changed, Player: own.lookup(sig.Sender)}
        if v, ok := changed["Metadata"]; ok {
            if md, ok := v.Value().(map[string]dbus.Variant); ok {
                m := ParseMetadata(md)
                ev.Metadata = &m
            }
        }
        if v, ok := changed["PlaybackStatus"]; ok {
            s, _ := v.Value().(string)
            ev.Status = Status(s)
        }
        if ev.Metadata == nil && ev.Status == "" { return Event{}, false }
        return ev, true
    }
    return Event{}, false
}
