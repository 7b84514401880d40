package ui

import (
    "context"
    "os/exec"
    "strings"
    "time"

    "github.com/atotto/clipboard"
    tea "github.com/charmbracelet/bubbletea"
    "github.com/pkg/errors"
)

// copyClipboard puts s on the clipboard. atotto covers X11 and wl-clipboard;
// wl-copy is tried directly as a last resort for minimal Wayland setups.
func copyClipboard(s string) error {
    if err := clipboard.WriteAll(s); err == nil { return nil }
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    cmd := exec.CommandContext(ctx, "wl-copy")
    cmd.Stdin = strings.NewReader(s)
    if err := cmd.Run(); err != nil { return errors.Wrap(err, "clipboard unavailable") }
    return nil
}

// copyCmd copies s off the loop and reports the outcome in the status line.
func copyCmd(what, s string) tea.Cmd {
    return func() tea.Msg {
        if s == "" { return statusMsg("nothing to copy") }
        if err := copyClipboard(s); err != nil { return statusMsg(err.Error()) }
        return statusMsg("copied " + what)
    }
}
