// Package brightness reads and sets the screen backlight with brightnessctl
// and watches sysfs for changes made elsewhere.
package brightness

import (
    "context"
    "path/filepath"
    "strconv"
    "time"

    "github.com/fsnotify/fsnotify"
    "github.com/pkg/errors"

    "hyprwidgets/internal/poll"
    "hyprwidgets/internal/proc"
)

// Backlight drives brightnessctl.
type Backlight struct {
    R proc.Runner
}

func (b Backlight) read(ctx context.Context, what string) (int, error) {
    out, err := proc.Output(ctx, b.R, "brightnessctl", what)
    if err != nil { return 0, err }
    n, err := strconv.Atoi(out)
    if err != nil { return 0, &proc.ParseError{Tool: "brightnessctl " + what, Input: out} }
    return n, nil
}

// Percent returns the current brightness as a share of max.
func (b Backlight) Percent(ctx context.Context) (int, error) {
    cur, err := b.read(ctx, "get")
    if err != nil { return 0, err }
    max, err := b.read(ctx, "max")
    if err != nil { return 0, err }
    return Percent(cur, max)
}

// Percent converts a raw reading to a whole percentage.
func Percent(cur, max int) (int, error) {
    if max <= 0 { return 0, errors.Errorf("invalid max brightness %d", max) }
    return cur * 100 / max, nil
}

// Set sets brightness to pct, clamped to [1, 100] so the panel never goes
// fully dark.
func (b Backlight) Set(ctx context.Context, pct int) error {
    if pct < 1 { pct = 1 }
    if pct > 100 { pct = 100 }
    _, err := proc.Output(ctx, b.R, "brightnessctl", "set", strconv.Itoa(pct)+"%")
    return err
}

// SysfsGlob matches the brightness files of all backlight devices.
const SysfsGlob = "/sys/class/backlight/*/brightness"

// Watch calls fn whenever one of the files matching glob changes. When nothing
// can be watched it polls fn every fallback instead. It blocks until ctx ends.
func Watch(ctx context.Context, glob string, fallback time.Duration, fn func()) error {
    w, err := watcher(glob)
    if err != nil {
        p := poll.New(fallback, func(context.Context) { fn() })
        p.Start(ctx)
        <-ctx.Done()
        p.Stop()
        return ctx.Err()
    }
    defer w.Close()
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case ev, ok := <-w.Events:
            if !ok { return nil }
            if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 { fn() }
        case <-w.Errors:
        }
    }
}

func watcher(glob string) (*fsnotify.Watcher, error) {
    paths, _ := filepath.Glob(glob)
    if len(paths) == 0 { return nil, errors.New("no backlight device") }
    w, err := fsnotify.NewWatcher()
    if err != nil { return nil, err }
    added := 0
    for _, p := range paths {
        if err := w.Add(p); err == nil { added++ }
    }
    if added == 0 {
        w.Close()
        return nil, errors.New("backlight not watchable")
    }
    return w, nil
}
