package main

import (
    "context"
    "fmt"
    "os"
    "os/signal"
    "path/filepath"
    "syscall"
    "time"

    singleinstance "github.com/allan-simon/go-singleinstance"
    tea "github.com/charmbracelet/bubbletea"
    "github.com/pkg/errors"
    "github.com/samber/lo"
    "github.com/sirupsen/logrus"
    flag "github.com/spf13/pflag"
    "golang.org/x/term"

    "hyprwidgets/internal/audio"
    "hyprwidgets/internal/bluetooth"
    "hyprwidgets/internal/brightness"
    "hyprwidgets/internal/cache"
    "hyprwidgets/internal/config"
    "hyprwidgets/internal/dock"
    "hyprwidgets/internal/hypr"
    "hyprwidgets/internal/launcher"
    "hyprwidgets/internal/logging"
    "hyprwidgets/internal/lyrics"
    "hyprwidgets/internal/mpris"
    "hyprwidgets/internal/notify"
    "hyprwidgets/internal/planner"
    "hyprwidgets/internal/proc"
    "hyprwidgets/internal/run"
    "hyprwidgets/internal/theme"
    "hyprwidgets/internal/ui"
    "hyprwidgets/internal/wifi"
)

const backlightGlob = "/sys/class/backlight/*/actual_brightness"

type options struct {
    panel      string
    configPath string
    logLevel   string
    theme      string
    rebuild    bool
    once       bool
}

func parseFlags() options {
    var o options
    flag.StringVarP(&o.panel, "panel", "p", "", "panel to open: "+fmt.Sprint(ui.PanelNames))
    flag.StringVarP(&o.configPath, "config", "c", config.Path(), "config file")
    flag.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
    flag.StringVar(&o.theme, "theme", "", "theme mode: auto, dark or light")
    flag.BoolVar(&o.rebuild, "rebuild-run-cache", false, "rebuild the launcher's $PATH cache and exit")
    flag.BoolVar(&o.once, "once", false, "print a one-shot status summary and exit")
    flag.Parse()
    return o
}

func main() {
    if err := realMain(parseFlags()); err != nil {
        fmt.Fprintln(os.Stderr, "hyprwidgets:", err)
        os.Exit(1)
    }
}

func realMain(o options) error {
    cfg, err := config.LoadFile(o.configPath)
    if err != nil { return errors.Wrap(err, "load config") }
    if o.logLevel != "" { cfg.LogLevel = o.logLevel }
    if o.theme != "" { cfg.Theme = o.theme }
    if o.panel != "" { cfg.Panel = o.panel }
    if !lo.Contains(ui.PanelNames, cfg.Panel) { return errors.Errorf("unknown panel %q", cfg.Panel) }

    log, closer, err := logging.Setup(cfg.LogLevel)
    if err != nil { fmt.Fprintln(os.Stderr, "hyprwidgets: logging disabled:", err) }
    defer closer.Close()

    if o.rebuild {
        rc, err := runCache(cfg)
        if err != nil { return err }
        exes, err := rc.Rebuild()
        if err != nil { return err }
        fmt.Printf("indexed %d executables into %s\n", len(exes), rc.File)
        return nil
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    deps, cleanup := buildDeps(cfg, log)
    defer cleanup()

    if o.once || !term.IsTerminal(int(os.Stdout.Fd())) {
        sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
        defer cancel()
        fmt.Print(ui.Snapshot(sctx, deps))
        return nil
    }

    lock, err := lockFile()
    if err != nil { return err }
    defer lock.Close()

    th := theme.Detect(cfg.Theme)
    m := ui.NewModel(deps, th, cfg.Panel)
    defer m.Close()
    p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
    m.Attach(p)
    log.WithFields(logrus.Fields{"panel": cfg.Panel, "theme": cfg.Theme}).Info("starting")
    if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) { return err }
    return nil
}

// lockFile keeps a second interactive instance from fighting over the same
// players and connections.
func lockFile() (*os.File, error) {
    dir, err := config.StateDir()
    if err != nil { return nil, err }
    f, err := singleinstance.CreateLockFile(filepath.Join(dir, "hyprwidgets.lock"))
    if err != nil { return nil, errors.New("hyprwidgets is already running") }
    return f, nil
}

func runCache(cfg config.Config) (*launcher.RunCache, error) {
    dir, err := config.CacheDir()
    if err != nil { return nil, errors.Wrap(err, "cache dir") }
    return &launcher.RunCache{
        File:    filepath.Join(dir, "run_cache.txt"),
        TTL:     cfg.Launcher.RunCacheTTL,
        PathEnv: os.Getenv("PATH"),
    }, nil
}

// buildDeps wires every back-end. Any that cannot start is left nil and the
// panel that needs it reports the gap.
func buildDeps(cfg config.Config, log *logrus.Logger) (*ui.Deps, func()) {
    var closers []func()
    r := proc.Exec{}
    deps := &ui.Deps{
        Cfg:           cfg,
        Log:           log,
        Audio:         audio.Mixer{R: r},
        Bluetooth:     bluetooth.Controller{R: r},
        Brightness:    brightness.Backlight{R: r},
        BacklightGlob: backlightGlob,
        Windows:       hypr.Ctl{R: r},
        Pinned:        &dock.Store{Path: cfg.Dock.PinnedFile},
        Launch:        run.Launcher{Terminal: cfg.Launcher.Terminal},
        Calendar: &planner.CalendarStore{
            EventsPath:    filepath.Join(cfg.Planner.Dir, "events.json"),
            RecurringPath: filepath.Join(cfg.Planner.Dir, "permanent_events.json"),
        },
        Schedule: &planner.ScheduleStore{Path: filepath.Join(cfg.Planner.Dir, "schedule.json")},
        Settings: &planner.SettingsStore{Path: filepath.Join(cfg.Planner.Dir, "settings.json")},
        Theme:    theme.DefaultSources(),
    }

    nm, err := wifi.ConnectNM()
    if err != nil {
        log.WithError(err).Info("system bus unavailable, Wi-Fi via nmcli only")
        nm = nil
    } else {
        closers = append(closers, func() { _ = nm.Close() })
    }
    deps.WiFi = wifi.NewService(r, nm, log.WithField("component", "wifi"))

    if sock, err := hypr.EventSocket(); err == nil {
        deps.WindowEvents = func(ctx context.Context) (<-chan hypr.Event, error) { return hypr.Stream(ctx, sock) }
    } else {
        log.WithError(err).Info("not running under Hyprland")
    }

    if rc, err := runCache(cfg); err == nil {
        deps.RunCache = rc
    } else {
        log.WithError(err).Warn("launcher cache disabled")
    }

    bus, err := mpris.Connect()
    switch {
    case cfg.Lyrics.Position == "playerctl" || err != nil:
        if err != nil { log.WithError(err).Info("session bus unavailable, using playerctl") }
        pc := &mpris.Playerctl{R: r}
        deps.Player = func(context.Context) (mpris.Source, error) { return pc, nil }
    default:
        closers = append(closers, func() { _ = bus.Close() })
        deps.Player = func(ctx context.Context) (mpris.Source, error) {
            p, err := bus.Active(ctx)
            if err != nil { return nil, err }
            return p, nil
        }
        deps.PlayerEvents = bus.Watch
    }

    ids := lyricIDs()
    deps.LyricIDs = ids
    deps.Lyrics = lyrics.NewFetcher(&lyrics.Resolver{
        Lookup:  lyrics.NewClient(cfg.Lyrics.BaseURL, cfg.Lyrics.UserAgent, cfg.Lyrics.Timeout),
        IDs:     ids,
        MaxDiff: cfg.Lyrics.MaxDurationDiff,
        Log:     log.WithField("component", "lyrics"),
    })

    n := notify.New("hyprwidgets", log)
    deps.Notify = n
    closers = append(closers, func() { _ = n.Close() })

    return deps, func() {
        for i := len(closers) - 1; i >= 0; i-- { closers[i]() }
    }
}

func lyricIDs() *cache.LyricIDs {
    dir, err := config.CacheDir()
    if err != nil { dir = os.TempDir() }
    return cache.NewLyricIDs(filepath.Join(dir, "lyrics_ids.json"))
}
