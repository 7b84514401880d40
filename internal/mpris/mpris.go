// Package mpris reads media players over the session bus. The Player type is
// the lyrics position source; Playerctl is the subprocess fallback.
package mpris

import (
    "context"
    "sort"
    "strings"
    "time"

    "github.com/godbus/dbus/v5"
    "github.com/pkg/errors"

    "hyprwidgets/internal/lyrics"
)

const (
    NamePrefix  = "org.mpris.MediaPlayer2."
    ObjectPath  = dbus.ObjectPath("/org/mpris/MediaPlayer2")
    PlayerIface = "org.mpris.MediaPlayer2.Player"

    propsIface = "org.freedesktop.DBus.Properties"
)

// Status is the MPRIS PlaybackStatus.
type Status string

const (
    Playing Status = "Playing"
    Paused  Status = "Paused"
    Stopped Status = "Stopped"
)

// Metadata is the part of xesam metadata the widgets use.
type Metadata struct {
    TrackID string
    Title   string
    Artist  string
    Album   string
    Length  time.Duration
}

// Track converts to the lyrics lookup key.
func (m Metadata) Track() lyrics.Track {
    return lyrics.Track{Artist: m.Artist, Title: m.Title, Album: m.Album, Duration: m.Length}
}

// ParseMetadata decodes an a{sv} metadata map. Only the first artist is kept.
func ParseMetadata(md map[string]dbus.Variant) Metadata {
    var m Metadata
    if v, ok := md["mpris:trackid"]; ok {
        switch id := v.Value().(type) {
        case dbus.ObjectPath:
            m.TrackID = string(id)
        case string:
            m.TrackID = id
        }
    }
    m.Title = variantString(md["xesam:title"])
    m.Album = variantString(md["xesam:album"])
    if v, ok := md["xesam:artist"]; ok {
        switch a := v.Value().(type) {
        case []string:
            if len(a) > 0 { m.Artist = a[0] }
        case string:
            m.Artist = a
        }
    }
    if v, ok := md["mpris:length"]; ok {
        if us, ok := variantInt(v); ok { m.Length = time.Duration(us) * time.Microsecond }
    }
    return m
}

func variantString(v dbus.Variant) string {
    s, _ := v.Value().(string)
    return s
}

// variantInt accepts the integer widths players actually send for lengths
// and positions.
func variantInt(v dbus.Variant) (int64, bool) {
    switch n := v.Value().(type) {
    case int64:
        return n, true
    case uint64:
        return int64(n), true
    case int32:
        return int64(n), true
    case uint32:
        return int64(n), true
    case float64:
        return int64(n), true
    }
    return 0, false
}

// Bus is a session-bus connection used for discovery and signals.
type Bus struct {
    conn *dbus.Conn
}

// Connect opens a private session-bus connection.
func Connect() (*Bus, error) {
    conn, err := dbus.ConnectSessionBus()
    if err != nil { return nil, errors.Wrap(err, "session bus") }
    return &Bus{conn: conn}, nil
}

func (b *Bus) Close() error { return b.conn.Close() }

// Players lists the MPRIS bus names currently present, sorted.
func (b *Bus) Players(ctx context.Context) ([]string, error) {
    var names []string
    err := b.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names)
    if err != nil { return nil, errors.Wrap(err, "ListNames") }
    return FilterPlayers(names), nil
}

// FilterPlayers keeps the MPRIS names.
func FilterPlayers(names []string) []string {
    var out []string
    for _, n := range names {
        if strings.HasPrefix(n, NamePrefix) { out = append(out, n) }
    }
    sort.Strings(out)
    return out
}

// Player returns a handle on one bus name.
func (b *Bus) Player(name string) *Player {
    return &Player{Name: name, obj: b.conn.Object(name, ObjectPath)}
}

// Active picks the player to follow: the first one playing, else the first
// one listed.
func (b *Bus) Active(ctx context.Context) (*Player, error) {
    names, err := b.Players(ctx)
    if err != nil { return nil, err }
    if len(names) == 0 { return nil, ErrNoPlayer }
    for _, n := range names {
        p := b.Player(n)
        if st, err := p.Status(ctx); err == nil && st == Playing { return p, nil }
    }
    return b.Player(names[0]), nil
}

// ErrNoPlayer means nothing on the bus speaks MPRIS.
var ErrNoPlayer = errors.New("no media player")

// Player is one MPRIS media player.
type Player struct {
    Name string
    obj  dbus.BusObject
}

func (p *Player) prop(ctx context.Context, name string) (dbus.Variant, error) {
    var v dbus.Variant
    err := p.obj.CallWithContext(ctx, propsIface+".Get", 0, PlayerIface, name).Store(&v)
    return v, errors.Wrapf(err, "%s %s", p.Name, name)
}

func (p *Player) Metadata(ctx context.Context) (Metadata, error) {
    v, err := p.prop(ctx, "Metadata")
    if err != nil { return Metadata{}, err }
    md, _ := v.Value().(map[string]dbus.Variant)
    return ParseMetadata(md), nil
}

func (p *Player) Status(ctx context.Context) (Status, error) {
    v, err := p.prop(ctx, "PlaybackStatus")
    if err != nil { return "", err }
    s, _ := v.Value().(string)
    return Status(s), nil
}

func (p *Player) Position(ctx context.Context) (time.Duration, error) {
    v, err := p.prop(ctx, "Position")
    if err != nil { return 0, err }
    us, _ := variantInt(v)
    return time.Duration(us) * time.Microsecond, nil
}

// Sample implements lyrics.PositionSource.
func (p *Player) Sample(ctx context.Context) (lyrics.Sample, error) {
    pos, err := p.Position(ctx)
    if err != nil { return lyrics.Sample{}, err }
    st, err := p.Status(ctx)
    if err != nil { return lyrics.Sample{}, err }
    return lyrics.Sample{Position: pos, Playing: st == Playing}, nil
}

func (p *Player) call(ctx context.Context, method string) error {
    return errors.Wrapf(p.obj.CallWithContext(ctx, PlayerIface+"."+method, 0).Err, "%s %s", p.Name, method)
}

func (p *Player) PlayPause(ctx context.Context) error { return p.call(ctx, "PlayPause") }
func (p *Player) Next(ctx context.Context) error      { return p.call(ctx, "Next") }
func (p *Player) Previous(ctx context.Context) error  { return p.call(ctx, "Previous") }

// Source is what the lyrics panel needs from a player, whichever back-end
// provides it.
type Source interface {
    lyrics.PositionSource
    Metadata(ctx context.Context) (Metadata, error)
    Status(ctx context.Context) (Status, error)
    PlayPause(ctx context.Context) error
    Next(ctx context.Context) error
    Previous(ctx context.Context) error
}

var (
    _ Source = (*Player)(nil)
    _ Source = (*Playerctl)(nil)
)
