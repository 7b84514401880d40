package config

import (
    "io/fs"
    "os"
    "path/filepath"
    "time"

    "github.com/pkg/errors"
    "gopkg.in/yaml.v3"
)

type Intervals struct {
    WifiScan      time.Duration `yaml:"wifi_scan"`
    BluetoothScan time.Duration `yaml:"bluetooth_scan"`
    Audio         time.Duration `yaml:"audio"`
    Brightness    time.Duration `yaml:"brightness"`
}

type Lyrics struct {
    BaseURL         string        `yaml:"base_url"`
    UserAgent       string        `yaml:"user_agent"`
    SyncOffset      time.Duration `yaml:"sync_offset"`
    OffsetStep      time.Duration `yaml:"offset_step"`
    ResyncInterval  time.Duration `yaml:"resync_interval"`
    MinWake         time.Duration `yaml:"min_wake"`
    MaxDurationDiff time.Duration `yaml:"max_duration_diff"`
    Timeout         time.Duration `yaml:"timeout"`
    // Position selects the position source: "mpris" or "playerctl".
    Position string `yaml:"position"`
}

type Launcher struct {
    Terminal    string        `yaml:"terminal"`
    RunCacheTTL time.Duration `yaml:"run_cache_ttl"`
}

type Dock struct {
    PinnedFile string `yaml:"pinned_file"`
}

type Planner struct {
    Dir string `yaml:"dir"`
}

type Config struct {
    Intervals Intervals `yaml:"intervals"`
    Lyrics    Lyrics    `yaml:"lyrics"`
    Launcher  Launcher  `yaml:"launcher"`
    Dock      Dock      `yaml:"dock"`
    Planner   Planner   `yaml:"planner"`

    Theme    string `yaml:"theme"`
    LogLevel string `yaml:"log_level"`
    Panel    string `yaml:"panel"`
}

func Default() Config {
    return Config{
        Intervals: Intervals{
            WifiScan:      10 * time.Second,
            BluetoothScan: 15 * time.Second,
            Audio:         2 * time.Second,
            Brightness:    2 * time.Second,
        },
        Lyrics: Lyrics{
            BaseURL:         "https://lrclib.net",
            UserAgent:       "hyprwidgets (https://github.com/hyprwidgets/hyprwidgets)",
            SyncOffset:      -550 * time.Millisecond,
            OffsetStep:      50 * time.Millisecond,
            ResyncInterval:  10 * time.Second,
            MinWake:         20 * time.Millisecond,
            MaxDurationDiff: 2 * time.Second,
            Timeout:         10 * time.Second,
            Position:        "mpris",
        },
        Launcher: Launcher{
            Terminal:    "alacritty",
            RunCacheTTL: 24 * time.Hour,
        },
        Dock: Dock{
            PinnedFile: filepath.Join(Dir(), "pinned.json"),
        },
        Planner: Planner{
            Dir: Dir(),
        },
        Theme:    "auto",
        LogLevel: "info",
        Panel:    "control",
    }
}

// Dir is $XDG_CONFIG_HOME/hyprwidgets.
func Dir() string {
    base := os.Getenv("XDG_CONFIG_HOME")
    if base == "" {
        home, err := os.UserHomeDir()
        if err != nil { return filepath.Join(".config", "hyprwidgets") }
        base = filepath.Join(home, ".config")
    }
    return filepath.Join(base, "hyprwidgets")
}

func Path() string { return filepath.Join(Dir(), "config.yml") }

// Load reads the config file at the default path.
func Load() (Config, error) { return LoadFile(Path()) }

// LoadFile reads path and overlays it onto the defaults. A missing file is not
// an error.
func LoadFile(path string) (Config, error) {
    cfg := Default()
    data, err := os.ReadFile(path)
    if err != nil {
        if errors.Is(err, fs.ErrNotExist) {
            return cfg, nil
        }
        return cfg, err
    }
    // Overlay: unmarshal and merge onto defaults
    var user Config
    if err := yaml.Unmarshal(data, &user); err != nil {
        return cfg, err
    }
    return merge(cfg, user), nil
}

func merge(cfg, user Config) Config {
    m := cfg
    if user.Intervals.WifiScan > 0 { m.Intervals.WifiScan = user.Intervals.WifiScan }
    if user.Intervals.BluetoothScan > 0 { m.Intervals.BluetoothScan = user.Intervals.BluetoothScan }
    if user.Intervals.Audio > 0 { m.Intervals.Audio = user.Intervals.Audio }
    if user.Intervals.Brightness > 0 { m.Intervals.Brightness = user.Intervals.Brightness }

    if user.Lyrics.BaseURL != "" { m.Lyrics.BaseURL = user.Lyrics.BaseURL }
    if user.Lyrics.UserAgent != "" { m.Lyrics.UserAgent = user.Lyrics.UserAgent }
    // zero is a legitimate offset, so only an explicit non-zero overrides
    if user.Lyrics.SyncOffset != 0 { m.Lyrics.SyncOffset = user.Lyrics.SyncOffset }
    if user.Lyrics.OffsetStep > 0 { m.Lyrics.OffsetStep = user.Lyrics.OffsetStep }
    if user.Lyrics.ResyncInterval > 0 { m.Lyrics.ResyncInterval = user.Lyrics.ResyncInterval }
    if user.Lyrics.MinWake > 0 { m.Lyrics.MinWake = user.Lyrics.MinWake }
    if user.Lyrics.MaxDurationDiff > 0 { m.Lyrics.MaxDurationDiff = user.Lyrics.MaxDurationDiff }
    if user.Lyrics.Timeout > 0 { m.Lyrics.Timeout = user.Lyrics.Timeout }
    if user.Lyrics.Position != "" { m.Lyrics.Position = user.Lyrics.Position }

    if user.Launcher.Terminal != "" { m.Launcher.Terminal = user.Launcher.Terminal }
    if user.Launcher.RunCacheTTL > 0 { m.Launcher.RunCacheTTL = user.Launcher.RunCacheTTL }
    if user.Dock.PinnedFile != "" { m.Dock.PinnedFile = ExpandUser(user.Dock.PinnedFile) }
    if user.Planner.Dir != "" { m.Planner.Dir = ExpandUser(user.Planner.Dir) }

    if user.Theme != "" { m.Theme = user.Theme }
    if user.LogLevel != "" { m.LogLevel = user.LogLevel }
    if user.Panel != "" { m.Panel = user.Panel }
    return m
}

// ExpandUser expands a path starting with ~ to the user's home.
func ExpandUser(p string) string {
    if p == "" { return p }
    if p[0] != '~' { return p }
    home, err := os.UserHomeDir()
    if err != nil { return p }
    if p == "~" { return home }
    return filepath.Join(home, p[2:])
}

// StateDir is $XDG_STATE_HOME/hyprwidgets, created on demand.
func StateDir() (string, error) {
    return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// CacheDir is $XDG_CACHE_HOME/hyprwidgets, created on demand.
func CacheDir() (string, error) {
    return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) (string, error) {
    base := os.Getenv(env)
    if base == "" {
        home, err := os.UserHomeDir()
        if err != nil { return "", err }
        base = filepath.Join(home, fallback)
    }
    dir := filepath.Join(base, "hyprwidgets")
    if err := os.MkdirAll(dir, 0o755); err != nil { return "", err }
    return dir, nil
}
