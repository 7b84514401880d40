package theme

import (
    "context"
    "time"

    "github.com/fsnotify/fsnotify"
    "github.com/pkg/errors"
    "github.com/sirupsen/logrus"
)

const settle = 150 * time.Millisecond

// Watch re-resolves the theme whenever one of the source files changes and
// sends the result on the returned channel, which closes with ctx. Bursts of
// events (an editor saving, a symlink swap) collapse into one update.
func Watch(ctx context.Context, mode string, src Sources, log logrus.FieldLogger) (<-chan Theme, error) {
    w, err := fsnotify.NewWatcher()
    if err != nil { return nil, errors.Wrap(err, "theme watcher") }
    added := 0
    for _, p := range src.Paths() {
        if err := w.Add(p); err == nil { added++ }
    }
    if added == 0 {
        w.Close()
        return nil, errors.New("no theme paths to watch")
    }
    out := make(chan Theme, 1)
    go func() {
        defer close(out)
        defer w.Close()
        var timer *time.Timer
        var fire <-chan time.Time
        for {
            select {
            case <-ctx.Done():
                return
            case ev, ok := <-w.Events:
                if !ok { return }
                if ev.Op == fsnotify.Chmod { continue }
                if timer == nil {
                    timer = time.NewTimer(settle)
                } else {
                    timer.Reset(settle)
                }
                fire = timer.C
            case err, ok := <-w.Errors:
                if !ok { return }
                log.WithError(err).Debug("theme watch")
            case <-fire:
                fire = nil
                select {
                case out <- Resolve(mode, src):
                case <-ctx.Done():
                    return
                }
            }
        }
    }()
    return out, nil
}
