package theme

import (
    "os"
    "path/filepath"
    "strings"

    toml "github.com/pelletier/go-toml/v2"
    "gopkg.in/yaml.v3"
)

// Palette is the subset of a terminal color scheme the widgets draw with.
type Palette struct {
    Background string
    Foreground string
    Normal     map[string]string
    Bright     map[string]string
}

func (p Palette) Empty() bool { return p.Background == "" && p.Foreground == "" }

// Accent is the highlight color: blue, then magenta, then the foreground.
func (p Palette) Accent() string {
    for _, m := range []map[string]string{p.Normal, p.Bright} {
        if c := m["blue"]; c != "" { return c }
    }
    if c := p.Normal["magenta"]; c != "" { return c }
    return p.Foreground
}

// Warn is the color for errors and muted state.
func (p Palette) Warn() string {
    if c := p.Normal["red"]; c != "" { return c }
    return p.Bright["red"]
}

// LoadAlacritty reads an alacritty config (TOML or legacy YAML), follows its
// imports and returns the merged palette. An importing file overrides what it
// imports.
func LoadAlacritty(path string) (Palette, bool) {
    root := parseWithImports(path, map[string]struct{}{})
    if root == nil { return Palette{}, false }
    pal := extractPalette(root)
    return pal, !pal.Empty()
}

func parseWithImports(path string, visited map[string]struct{}) map[string]any {
    if _, seen := visited[path]; seen { return nil }
    visited[path] = struct{}{}
    data, err := os.ReadFile(path)
    if err != nil { return nil }
    var root map[string]any
    switch strings.ToLower(filepath.Ext(path)) {
    case ".yml", ".yaml":
        if err := yaml.Unmarshal(data, &root); err != nil { return nil }
    case ".toml":
        if err := toml.Unmarshal(data, &root); err != nil { return nil }
    default:
        return nil
    }
    dir := filepath.Dir(path)
    merged := map[string]any{}
    for _, imp := range imports(root) {
        imp = expandUser(imp)
        if !filepath.IsAbs(imp) { imp = filepath.Join(dir, imp) }
        paths := []string{imp}
        if strings.ContainsAny(imp, "*?[") {
            if gl, _ := filepath.Glob(imp); len(gl) > 0 { paths = gl }
        }
        for _, p := range paths {
            if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
                merged = mergeMaps(merged, parseWithImports(p, visited))
            }
        }
    }
    return mergeMaps(merged, root)
}

// imports reads the top-level "import" key or the newer [general] import.
func imports(root map[string]any) []string {
    v, ok := root["import"]
    if !ok {
        gen, _ := root["general"].(map[string]any)
        if v, ok = gen["import"]; !ok { return nil }
    }
    switch vv := v.(type) {
    case string:
        return []string{vv}
    case []any:
        out := make([]string, 0, len(vv))
        for _, it := range vv {
            if s, ok := it.(string); ok { out = append(out, s) }
        }
        return out
    }
    return nil
}

func extractPalette(root map[string]any) Palette {
    pal := Palette{Normal: map[string]string{}, Bright: map[string]string{}}
    colors, _ := root["colors"].(map[string]any)
    if colors == nil { return pal }
    if prim, ok := colors["primary"].(map[string]any); ok {
        if bg, ok := prim["background"].(string); ok { pal.Background = normalizeHex(bg) }
        if fg, ok := prim["foreground"].(string); ok { pal.Foreground = normalizeHex(fg) }
    }
    copyColors(colors["normal"], pal.Normal)
    copyColors(colors["bright"], pal.Bright)
    return pal
}

func copyColors(v any, dst map[string]string) {
    m, _ := v.(map[string]any)
    for k, c := range m {
        if s, ok := c.(string); ok { dst[k] = normalizeHex(s) }
    }
}

func mergeMaps(a, b map[string]any) map[string]any {
    if a == nil { a = map[string]any{} }
    for k, v := range b {
        if ma, ok := a[k].(map[string]any); ok {
            if mb, ok := v.(map[string]any); ok {
                a[k] = mergeMaps(ma, mb)
                continue
            }
        }
        a[k] = v
    }
    return a
}

func expandUser(p string) string {
    if p == "" || p[0] != '~' { return p }
    home, err := os.UserHomeDir()
    if err != nil { return p }
    if p == "~" { return home }
    return filepath.Join(home, p[2:])
}

// normalizeHex turns "0x1d2021" and "1d2021" into "#1d2021".
func normalizeHex(s string) string {
    s = strings.TrimSpace(s)
    switch {
    case strings.HasPrefix(s, "0x") && len(s) == 8:
        return "#" + s[2:]
    case len(s) == 6:
        return "#" + s
    }
    return s
}
