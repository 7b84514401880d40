package theme

import (
    "context"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "hyprwidgets/internal/logging"
)

const omarchyTOML = `
[colors.primary]
background = "#1e1e2e"
foreground = "0xcdd6f4"

[colors.normal]
red = "#f38ba8"
blue = "89b4fa"
`

func write(t *testing.T, path, body string) {
    t.Helper()
    require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
    require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadAlacrittyNormalizesHex(t *testing.T) {
    p := filepath.Join(t.TempDir(), "alacritty.toml")
    write(t, p, omarchyTOML)
    pal, ok := LoadAlacritty(p)
    require.True(t, ok)
    assert.Equal(t, "#1e1e2e", pal.Background)
    assert.Equal(t, "#cdd6f4", pal.Foreground)
    assert.Equal(t, "#89b4fa", pal.Accent())
    assert.Equal(t, "#f38ba8", pal.Warn())
}

func TestLoadAlacrittyImportsAreOverridden(t *testing.T) {
    dir := t.TempDir()
    write(t, filepath.Join(dir, "themes", "base.yml"), "colors:\n  primary:\n    background: '#fafafa'\n    foreground: '#101010'\n")
    write(t, filepath.Join(dir, "alacritty.toml"), "[general]\nimport = [\"themes/*.yml\"]\n\n[colors.primary]\nforeground = \"#222222\"\n")

    pal, ok := LoadAlacritty(filepath.Join(dir, "alacritty.toml"))
    require.True(t, ok)
    assert.Equal(t, "#fafafa", pal.Background)
    assert.Equal(t, "#222222", pal.Foreground)
}

func TestResolve(t *testing.T) {
    dir := t.TempDir()
    src := Sources{
        Omarchy:   filepath.Join(dir, "omarchy", "current", "theme", "alacritty.toml"),
        Alacritty: filepath.Join(dir, "alacritty.toml"),
        Pywal:     filepath.Join(dir, "colors.json"),
    }
    th := Resolve("auto", src)
    assert.True(t, th.Dark, "nothing found means dark")
    assert.True(t, th.Colors.Empty())

    write(t, src.Pywal, `{"special":{"background":"#f5f5f5"}}`)
    assert.False(t, Resolve("auto", src).Dark)
    assert.True(t, Resolve("dark", src).Dark)

    write(t, src.Omarchy, omarchyTOML)
    th = Resolve("auto", src)
    assert.True(t, th.Dark)
    assert.Equal(t, "#1e1e2e", th.Colors.Background)
    assert.False(t, Resolve("light", src).Dark)
}

func TestWatchResolvesOnChange(t *testing.T) {
    dir := t.TempDir()
    src := Sources{Omarchy: filepath.Join(dir, "current", "theme", "alacritty.toml")}
    write(t, src.Omarchy, omarchyTOML)

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    ch, err := Watch(ctx, "auto", src, logging.Discard())
    require.NoError(t, err)

    write(t, src.Omarchy, "[colors.primary]\nbackground = \"#ffffff\"\nforeground = \"#000000\"\n")
    select {
    case th := <-ch:
        assert.False(t, th.Dark)
        assert.Equal(t, "#ffffff", th.Colors.Background)
    case <-time.After(3 * time.Second):
        t.Fatal("no theme update")
    }

    cancel()
    assert.Eventually(t, func() bool {
        _, open := <-ch
        return !open
    }, time.Second, 10*time.Millisecond)
}
