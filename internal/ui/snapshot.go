package ui

import (
    "context"
    "fmt"
    "strings"
    "sync"

    "github.com/pkg/errors"
    "golang.org/x/sync/errgroup"

    "hyprwidgets/internal/mpris"
)

// Snapshot reads every back-end once and returns a plain-text summary, for
// when stdout is not a terminal. Back-ends that fail are reported inline.
func Snapshot(ctx context.Context, deps *Deps) string {
    var (
        mu    sync.Mutex
        lines = map[string]string{}
    )
    set := func(key, format string, args ...any) {
        mu.Lock()
        lines[key] = fmt.Sprintf(format, args...)
        mu.Unlock()
    }
    fail := func(key string, err error) { set(key, "%s: %v", key, err) }

    g, gctx := errgroup.WithContext(ctx)
    if a := deps.Audio; a != nil {
        g.Go(func() error {
            lv, err := a.Level(gctx)
            if err != nil { fail("volume", err); return nil }
            muted := ""
            if lv.Muted { muted = " (muted)" }
            set("volume", "volume: %d%%%s", lv.Percent, muted)
            return nil
        })
    }
    if b := deps.Brightness; b != nil {
        g.Go(func() error {
            pct, err := b.Percent(gctx)
            if err != nil { fail("brightness", err); return nil }
            set("brightness", "brightness: %d%%", pct)
            return nil
        })
    }
    if bt := deps.Bluetooth; bt != nil {
        g.Go(func() error {
            devs, err := bt.Devices(gctx)
            if err != nil { fail("bluetooth", err); return nil }
            var on []string
            for _, d := range devs {
                if d.Connected { on = append(on, d.Name) }
            }
            set("bluetooth", "bluetooth: %s", orNone(on))
            return nil
        })
    }
    if w := deps.WiFi; w != nil {
        g.Go(func() error {
            nets, err := w.Networks(gctx)
            if err != nil { fail("wifi", err); return nil }
            var on []string
            for _, n := range nets {
                if n.Active { on = append(on, fmt.Sprintf("%s (%d%%)", n.SSID, n.Strength)) }
            }
            set("wifi", "wifi: %s", orNone(on))
            return nil
        })
    }
    if deps.Player != nil {
        g.Go(func() error {
            src, err := deps.Player(gctx)
            if err != nil {
                set("player", "player: %s", "nothing playing")
                if !errors.Is(err, mpris.ErrNoPlayer) { fail("player", err) }
                return nil
            }
            md, err := src.Metadata(gctx)
            if err != nil { fail("player", err); return nil }
            st, _ := src.Status(gctx)
            set("player", "player: %s - %s [%s]", md.Artist, md.Title, st)
            return nil
        })
    }
    _ = g.Wait()

    var b strings.Builder
    for _, key := range []string{"volume", "brightness", "bluetooth", "wifi", "player"} {
        if l, ok := lines[key]; ok { fmt.Fprintln(&b, l) }
    }
    return b.String()
}

func orNone(xs []string) string {
    if len(xs) == 0 { return "none" }
    return strings.Join(xs, ", ")
}
