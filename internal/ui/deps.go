package ui

import (
    "context"
    "time"

    "github.com/sirupsen/logrus"

    "hyprwidgets/internal/audio"
    "hyprwidgets/internal/bluetooth"
    "hyprwidgets/internal/config"
    "hyprwidgets/internal/dock"
    "hyprwidgets/internal/hypr"
    "hyprwidgets/internal/launcher"
    "hyprwidgets/internal/lyrics"
    "hyprwidgets/internal/mpris"
    "hyprwidgets/internal/planner"
    "hyprwidgets/internal/theme"
    "hyprwidgets/internal/wifi"
)

type Audio interface {
    Sinks(ctx context.Context) ([]audio.Sink, error)
    Level(ctx context.Context) (audio.Level, error)
    SetVolume(ctx context.Context, percent int) error
    ToggleMute(ctx context.Context) error
    SetDefault(ctx context.Context, id int) error
}

type Bluetooth interface {
    Powered(ctx context.Context) (bool, error)
    SetPower(ctx context.Context, on bool) error
    Devices(ctx context.Context) ([]bluetooth.Device, error)
    Connect(ctx context.Context, addr string) error
    Disconnect(ctx context.Context, addr string) error
    Scan(ctx context.Context, d time.Duration) error
}

type Brightness interface {
    Percent(ctx context.Context) (int, error)
    Set(ctx context.Context, pct int) error
}

type WiFi interface {
    Networks(ctx context.Context) ([]wifi.Network, error)
    Radio(ctx context.Context) (bool, error)
    SetRadio(ctx context.Context, on bool) error
    Disconnect(ctx context.Context, ssid string) error
    Connect(ctx context.Context, ssid string, p wifi.Prompter) (wifi.Result, error)
    Busy(ssid string) bool
}

type Windows interface {
    Clients(ctx context.Context) ([]hypr.Client, error)
    FocusClass(ctx context.Context, class string) error
}

type Launcher interface {
    Command(cmdline string) error
    InTerminal(cmdline string) error
}

type Toaster interface {
    Toast(ctx context.Context, summary, body string)
}

// Deps are the back-ends the panels drive. Any field may be nil; the panel
// that needs it then shows the gap instead of failing.
type Deps struct {
    Cfg config.Config
    Log logrus.FieldLogger

    Audio      Audio
    Bluetooth  Bluetooth
    Brightness Brightness
    // BacklightGlob is watched for brightness changes; empty disables the
    // watch and brightness is polled instead.
    BacklightGlob string
    WiFi          WiFi

    // Player returns the active player.
    Player func(ctx context.Context) (mpris.Source, error)
    // PlayerEvents subscribes to player signals; nil means poll.
    PlayerEvents func(ctx context.Context) (<-chan mpris.Event, error)
    Lyrics       *lyrics.Fetcher
    LyricIDs     LyricPins

    Windows      Windows
    WindowEvents func(ctx context.Context) (<-chan hypr.Event, error)
    Pinned       *dock.Store

    RunCache *launcher.RunCache
    Launch   Launcher

    Calendar *planner.CalendarStore
    Schedule *planner.ScheduleStore
    Settings *planner.SettingsStore

    Notify Toaster
    Theme  theme.Sources
}

// LyricPins remembers which lyric record the user chose for a track.
type LyricPins interface {
    Get(signature string) (int64, bool)
    Put(signature string, id int64) error
    Forget(signature string) error
}
