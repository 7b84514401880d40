package run

import (
    "os/exec"
    "strings"

    "github.com/pkg/errors"
)

// fallbackTerminals are tried, in order, after the configured one.
var fallbackTerminals = []string{"alacritty", "kitty", "foot", "wezterm", "ghostty", "gnome-terminal", "xterm"}

// lookPath is exec.LookPath; tests replace it.
var lookPath = exec.LookPath

// FindTerminal returns the preferred terminal if installed, else the first
// installed fallback.
func FindTerminal(preferred string) (string, error) {
    candidates := append([]string{preferred}, fallbackTerminals...)
    seen := map[string]struct{}{}
    var tried []string
    for _, t := range candidates {
        if t == "" { continue }
        if _, ok := seen[t]; ok { continue }
        seen[t] = struct{}{}
        tried = append(tried, t)
        if _, err := lookPath(t); err == nil { return t, nil }
    }
    return "", errors.Errorf("no terminal found (tried: %s)", strings.Join(tried, ", "))
}
