package mpris

import (
    "context"
    "testing"
    "time"

    "github.com/godbus/dbus/v5"
    "github.com/pkg/errors"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "hyprwidgets/internal/lyrics"
    "hyprwidgets/internal/proc/proctest"
)

func TestParseMetadata(t *testing.T) {
    m := ParseMetadata(map[string]dbus.Variant{
        "mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/org/mpris/track/7")),
        "xesam:title":   dbus.MakeVariant("Digital Love"),
        "xesam:artist":  dbus.MakeVariant([]string{"Daft Punk", "Someone Else"}),
        "xesam:album":   dbus.MakeVariant("Discovery"),
        "mpris:length":  dbus.MakeVariant(int64(301_000_000)),
    })
    assert.Equal(t, Metadata{
        TrackID: "/org/mpris/track/7",
        Title:   "Digital Love",
        Artist:  "Daft Punk",
        Album:   "Discovery",
        Length:  301 * time.Second,
    }, m)
    assert.Equal(t, lyrics.Track{Artist: "Daft Punk", Title: "Digital Love", Album: "Discovery", Duration: 301 * time.Second}, m.Track())
}

func TestParseMetadataTolerant(t *testing.T) {
    m := ParseMetadata(map[string]dbus.Variant{
        "xesam:artist": dbus.MakeVariant([]string{}),
        "mpris:length": dbus.MakeVariant(uint64(1_000_000)),
    })
    assert.Equal(t, "", m.Artist)
    assert.Equal(t, time.Second, m.Length)
    assert.Equal(t, Metadata{}, ParseMetadata(nil))
}

func TestFilterPlayers(t *testing.T) {
    got := FilterPlayers([]string{"org.freedesktop.DBus", "org.mpris.MediaPlayer2.spotify", ":1.5", "org.mpris.MediaPlayer2.firefox.instance_1_9"})
    assert.Equal(t, []string{"org.mpris.MediaPlayer2.firefox.instance_1_9", "org.mpris.MediaPlayer2.spotify"}, got)
}

func TestClassify(t *testing.T) {
    own := &owners{m: map[string]string{}}

    ev, ok := classify(&dbus.Signal{
        Sender: "org.freedesktop.DBus",
        Name:   "org.freedesktop.DBus.NameOwnerChanged",
        Body:   []interface{}{"org.mpris.MediaPlayer2.spotify", "", ":1.42"},
    }, own)
    require.True(t, ok)
    assert.Equal(t, Event{Kind: Appeared, Player: "org.mpris.MediaPlayer2.spotify"}, ev)

    ev, ok = classify(&dbus.Signal{
        Sender: ":1.42",
        Name:   PlayerIface + ".Seeked",
        Body:   []interface{}{int64(42_500_000)},
    }, own)
    require.True(t, ok)
    assert.Equal(t, Seeked, ev.Kind)
    assert.Equal(t, "org.mpris.MediaPlayer2.spotify", ev.Player)
    assert.Equal(t, 42500*time.Millisecond, ev.Position)

    ev, ok = classify(&dbus.Signal{
        Sender: ":1.42",
        Name:   "org.freedesktop.DBus.Properties.PropertiesChanged",
        Body: []interface{}{PlayerIface, map[string]dbus.Variant{
            "PlaybackStatus": dbus.MakeVariant("Paused"),
            "Metadata":       dbus.MakeVariant(map[string]dbus.Variant{"xesam:title": dbus.MakeVariant("Aerodynamic")}),
        }, []string{}},
    }, own)
    require.True(t, ok)
    assert.Equal(t, Changed, ev.Kind)
    assert.Equal(t, Paused, ev.Status)
    require.NotNil(t, ev.Metadata)
    assert.Equal(t, "Aerodynamic", ev.Metadata.Title)

    _, ok = classify(&dbus.Signal{
        Sender: ":1.42",
        Name:   "org.freedesktop.DBus.Properties.PropertiesChanged",
        Body:   []interface{}{PlayerIface, map[string]dbus.Variant{"Volume": dbus.MakeVariant(0.5)}, []string{}},
    }, own)
    assert.False(t, ok, "unrelated property changes are dropped")

    ev, ok = classify(&dbus.Signal{
        Sender: "org.freedesktop.DBus",
        Name:   "org.freedesktop.DBus.NameOwnerChanged",
        Body:   []interface{}{"org.mpris.MediaPlayer2.spotify", ":1.42", ""},
    }, own)
    require.True(t, ok)
    assert.Equal(t, Vanished, ev.Kind)
    assert.Equal(t, ":1.42", own.lookup(":1.42"))
}

func TestPlayerctl(t *testing.T) {
    fake := proctest.New().
        Stdout("playerctl position", "12.345\n").
        Stdout("playerctl status", "Playing\n").
        Stdout("playerctl metadata --format "+metadataFormat, "/t/1\tBand\tSong\tLP\t200000000\n")
    p := &Playerctl{R: fake}
    ctx := context.Background()

    s, err := p.Sample(ctx)
    require.NoError(t, err)
    assert.Equal(t, lyrics.Sample{Position: 12345 * time.Millisecond, Playing: true}, s)

    m, err := p.Metadata(ctx)
    require.NoError(t, err)
    assert.Equal(t, Metadata{TrackID: "/t/1", Artist: "Band", Title: "Song", Album: "LP", Length: 200 * time.Second}, m)

    require.NoError(t, (&Playerctl{R: fake, Player: "spotify"}).Next(ctx))
    assert.Equal(t, 1, fake.Count("playerctl --player=spotify next"))
}

func TestPlayerctlNoPlayer(t *testing.T) {
    fake := proctest.New().Exit("playerctl position", 1, "No players found")
    _, err := (&Playerctl{R: fake}).Sample(context.Background())
    require.Error(t, err)
    assert.Contains(t, err.Error(), "No players found")
}

type fakeMatcher struct {
    failAt  int
    added   int
    removed int
}

func (f *fakeMatcher) AddMatchSignalContext(context.Context, ...dbus.MatchOption) error {
    if f.added+1 == f.failAt { return errors.New("bus said no") }
    f.added++
    return nil
}

func (f *fakeMatcher) RemoveMatchSignal(...dbus.MatchOption) error {
    f.removed++
    return nil
}

func TestAddMatchesReleases(t *testing.T) {
    m := &fakeMatcher{}
    release, err := addMatches(context.Background(), m, watchRules)
    require.NoError(t, err)
    assert.Equal(t, len(watchRules), m.added)
    assert.Zero(t, m.removed)

    release()
    assert.Equal(t, len(watchRules), m.removed)
}

func TestAddMatchesUndoesPartial(t *testing.T) {
    m := &fakeMatcher{failAt: 3}
    _, err := addMatches(context.Background(), m, watchRules)
    require.Error(t, err)
    assert.Equal(t, 2, m.added)
    assert.Equal(t, 2, m.removed)
}
