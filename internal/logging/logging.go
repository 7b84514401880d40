package logging

import (
    "io"
    "os"
    "path/filepath"

    "github.com/sirupsen/logrus"

    "hyprwidgets/internal/config"
)

// Setup opens the log file under the state dir. stdout belongs to the TUI, so
// nothing is written there. The returned closer flushes the file.
func Setup(level string) (*logrus.Logger, io.Closer, error) {
    log := logrus.New()
    log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
    lvl, err := logrus.ParseLevel(level)
    if err != nil { lvl = logrus.InfoLevel }
    log.SetLevel(lvl)

    dir, err := config.StateDir()
    if err != nil {
        log.SetOutput(io.Discard)
        return log, io.NopCloser(nil), err
    }
    f, err := os.OpenFile(filepath.Join(dir, "hyprwidgets.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
    if err != nil {
        log.SetOutput(io.Discard)
        return log, io.NopCloser(nil), err
    }
    log.SetOutput(f)
    return log, f, nil
}

// Discard is a logger for tests and headless helpers.
func Discard() *logrus.Logger {
    log := logrus.New()
    log.SetOutput(io.Discard)
    return log
}
