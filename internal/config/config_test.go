package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
    t.Setenv("XDG_CONFIG_HOME", t.TempDir())
    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, 10*time.Second, cfg.Intervals.WifiScan)
    assert.Equal(t, -550*time.Millisecond, cfg.Lyrics.SyncOffset)
    assert.Equal(t, "https://lrclib.net", cfg.Lyrics.BaseURL)
}

func TestLoadOverlaysUserValues(t *testing.T) {
    dir := t.TempDir()
    t.Setenv("XDG_CONFIG_HOME", dir)
    p := filepath.Join(dir, "hyprwidgets", "config.yml")
    require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
    require.NoError(t, os.WriteFile(p, []byte(`
intervals:
  wifi_scan: 30s
lyrics:
  sync_offset: 200ms
  base_url: http://localhost:9999
theme: light
`), 0o644))

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, 30*time.Second, cfg.Intervals.WifiScan)
    assert.Equal(t, 15*time.Second, cfg.Intervals.BluetoothScan, "untouched keys keep defaults")
    assert.Equal(t, 200*time.Millisecond, cfg.Lyrics.SyncOffset)
    assert.Equal(t, "http://localhost:9999", cfg.Lyrics.BaseURL)
    assert.Equal(t, "light", cfg.Theme)
    assert.Equal(t, 50*time.Millisecond, cfg.Lyrics.OffsetStep)
}

func TestLoadRejectsBadYAML(t *testing.T) {
    p := filepath.Join(t.TempDir(), "config.yml")
    require.NoError(t, os.WriteFile(p, []byte("intervals: [nope"), 0o644))
    _, err := LoadFile(p)
    assert.Error(t, err)
}

func TestExpandUser(t *testing.T) {
    home, err := os.UserHomeDir()
    require.NoError(t, err)
    assert.Equal(t, home, ExpandUser("~"))
    assert.Equal(t, filepath.Join(home, "x", "y"), ExpandUser("~/x/y"))
    assert.Equal(t, "/abs", ExpandUser("/abs"))
}

func TestStateDirHonoursXDG(t *testing.T) {
    dir := t.TempDir()
    t.Setenv("XDG_STATE_HOME", dir)
    got, err := StateDir()
    require.NoError(t, err)
    assert.Equal(t, filepath.Join(dir, "hyprwidgets"), got)
    fi, err := os.Stat(got)
    require.NoError(t, err)
    assert.True(t, fi.IsDir())
}
