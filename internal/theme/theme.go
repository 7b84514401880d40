// Package theme resolves the desktop color scheme the widgets follow and
// watches it for changes.
package theme

import (
    "encoding/json"
    "os"
    "path/filepath"
    "strconv"
)

// Theme is a resolved scheme. Mode is the requested mode: auto, dark or light.
type Theme struct {
    Mode   string
    Dark   bool
    Colors Palette
}

// Sources are the files consulted in auto mode, in order.
type Sources struct {
    // Omarchy is the current Omarchy theme's alacritty.toml.
    Omarchy string
    // Alacritty is the user's own alacritty config.
    Alacritty string
    // Pywal is pywal's colors.json.
    Pywal string
}

func DefaultSources() Sources {
    cfg := os.Getenv("XDG_CONFIG_HOME")
    home, _ := os.UserHomeDir()
    if cfg == "" { cfg = filepath.Join(home, ".config") }
    return Sources{
        Omarchy:   filepath.Join(cfg, "omarchy", "current", "theme", "alacritty.toml"),
        Alacritty: filepath.Join(cfg, "alacritty", "alacritty.toml"),
        Pywal:     filepath.Join(home, ".cache", "wal", "colors.json"),
    }
}

// Paths lists what a watcher should follow for src: the files and the
// directories holding them, so theme switches that replace a symlink are seen.
func (src Sources) Paths() []string {
    var out []string
    for _, p := range []string{src.Omarchy, src.Alacritty, src.Pywal} {
        if p == "" { continue }
        out = append(out, filepath.Dir(p), p)
    }
    if src.Omarchy != "" {
        // ~/.config/omarchy/current is itself a symlink that theme switches swap
        out = append(out, filepath.Dir(filepath.Dir(src.Omarchy)))
    }
    return out
}

// Detect resolves mode against the default sources.
func Detect(mode string) Theme { return Resolve(mode, DefaultSources()) }

// Resolve picks colors from the first source that has them and derives
// darkness from the background. dark and light force the flag but keep any
// palette found.
func Resolve(mode string, src Sources) Theme {
    t := Theme{Mode: mode, Dark: true}
    if pal, ok := LoadAlacritty(src.Omarchy); ok {
        t.Colors = pal
    } else if pal, ok := LoadAlacritty(src.Alacritty); ok {
        t.Colors = pal
    } else if bg, ok := pywalBackground(src.Pywal); ok {
        t.Colors = Palette{Background: bg}
    }
    switch mode {
    case "dark":
        t.Dark = true
    case "light":
        t.Dark = false
    default:
        if l, ok := luminance(t.Colors.Background); ok { t.Dark = l < 0.5 }
    }
    return t
}

type pywalColors struct {
    Special struct {
        Background string `json:"background"`
        Foreground string `json:"foreground"`
    } `json:"special"`
}

func pywalBackground(path string) (string, bool) {
    b, err := os.ReadFile(path)
    if err != nil { return "", false }
    var c pywalColors
    if err := json.Unmarshal(b, &c); err != nil || c.Special.Background == "" { return "", false }
    return normalizeHex(c.Special.Background), true
}

// luminance is the perceived brightness of a #rrggbb color in [0,1].
func luminance(hex string) (float64, bool) {
    r, g, b, ok := hexToRGB(hex)
    if !ok { return 0, false }
    return 0.2126*float64(r)/255 + 0.7152*float64(g)/255 + 0.0722*float64(b)/255, true
}

func hexToRGB(s string) (int, int, int, bool) {
    if len(s) != 7 || s[0] != '#' { return 0, 0, 0, false }
    var rgb [3]int
    for i := range rgb {
        v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
        if err != nil { return 0, 0, 0, false }
        rgb[i] = int(v)
    }
    return rgb[0], rgb[1], rgb[2], true
}
