package brightness

import (
    "context"
    "os"
    "path/filepath"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "hyprwidgets/internal/proc"
    "hyprwidgets/internal/proc/proctest"
)

func TestPercent(t *testing.T) {
    fake := proctest.New().Stdout("brightnessctl get", "480\n").Stdout("brightnessctl max", "960\n")
    pct, err := Backlight{R: fake}.Percent(context.Background())
    require.NoError(t, err)
    assert.Equal(t, 50, pct)

    _, err = Percent(3, 0)
    assert.Error(t, err)
}

func TestPercentGarbage(t *testing.T) {
    fake := proctest.New().Stdout("brightnessctl get", "Device not found")
    _, err := Backlight{R: fake}.Percent(context.Background())
    var pe *proc.ParseError
    assert.ErrorAs(t, err, &pe)
}

func TestSetClamps(t *testing.T) {
    fake := proctest.New()
    b := Backlight{R: fake}
    require.NoError(t, b.Set(context.Background(), 0))
    require.NoError(t, b.Set(context.Background(), 120))
    require.NoError(t, b.Set(context.Background(), 35))
    assert.Equal(t, []string{"brightnessctl set 1%", "brightnessctl set 100%", "brightnessctl set 35%"}, fake.Calls())
}

func TestWatchFile(t *testing.T) {
    dir := t.TempDir()
    dev := filepath.Join(dir, "intel_backlight")
    require.NoError(t, os.MkdirAll(dev, 0o755))
    file := filepath.Join(dev, "brightness")
    require.NoError(t, os.WriteFile(file, []byte("10\n"), 0o644))

    var hits atomic.Int32
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    go func() { _ = Watch(ctx, filepath.Join(dir, "*", "brightness"), time.Hour, func() { hits.Add(1) }) }()

    assert.Eventually(t, func() bool {
        _ = os.WriteFile(file, []byte("20\n"), 0o644)
        return hits.Load() > 0
    }, 2*time.Second, 20*time.Millisecond)
}

func TestWatchFallsBackToPolling(t *testing.T) {
    var hits atomic.Int32
    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan error, 1)
    go func() { done <- Watch(ctx, filepath.Join(t.TempDir(), "*", "brightness"), 10*time.Millisecond, func() { hits.Add(1) }) }()
    assert.Eventually(t, func() bool { return hits.Load() >= 2 }, time.Second, 5*time.Millisecond)
    cancel()
    assert.ErrorIs(t, <-done, context.Canceled)
}
