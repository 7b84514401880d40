// Package hypr talks to the Hyprland compositor: the event socket and hyprctl.
package hypr

import (
    "bufio"
    "context"
    "net"
    "os"
    "path/filepath"
    "strings"

    "github.com/pkg/errors"
)

// Event is one line of the event socket, "name>>data".
type Event struct {
    Name string
    Data string
}

// ParseEvent splits a socket line. Lines without the separator are rejected.
func ParseEvent(line string) (Event, bool) {
    name, data, ok := strings.Cut(strings.TrimRight(line, "\r\n"), ">>")
    if !ok || name == "" { return Event{}, false }
    return Event{Name: name, Data: data}, true
}

// Window is the payload of openwindow: address, workspace, class and title.
type Window struct {
    Address   string
    Workspace string
    Class     string
    Title     string
}

// OpenWindow decodes an openwindow event. The title may itself contain commas.
func (e Event) OpenWindow() (Window, bool) {
    if e.Name != "openwindow" { return Window{}, false }
    f := strings.SplitN(e.Data, ",", 4)
    if len(f) < 3 { return Window{}, false }
    w := Window{Address: normalizeAddr(f[0]), Workspace: f[1], Class: f[2]}
    if len(f) == 4 { w.Title = f[3] }
    return w, true
}

// Address returns the window address carried by closewindow, activewindowv2
// and similar events.
func (e Event) Address() string {
    addr, _, _ := strings.Cut(e.Data, ",")
    return normalizeAddr(addr)
}

// hyprctl prints "0x55d1..." while events carry the bare hex.
func normalizeAddr(a string) string {
    a = strings.TrimSpace(a)
    if a == "" || strings.HasPrefix(a, "0x") { return a }
    return "0x" + a
}

// SocketDir is the per-instance runtime directory Hyprland creates.
func SocketDir() (string, error) {
    sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
    if sig == "" { return "", errors.New("HYPRLAND_INSTANCE_SIGNATURE not set") }
    if rt := os.Getenv("XDG_RUNTIME_DIR"); rt != "" {
        dir := filepath.Join(rt, "hypr", sig)
        if _, err := os.Stat(dir); err == nil { return dir, nil }
    }
    return filepath.Join("/tmp", "hypr", sig), nil
}

// EventSocket is the path of .socket2.sock.
func EventSocket() (string, error) {
    dir, err := SocketDir()
    if err != nil { return "", err }
    return filepath.Join(dir, ".socket2.sock"), nil
}

// Stream reads events from the unix socket at path until ctx ends or the
// compositor closes the connection; then the channel closes.
func Stream(ctx context.Context, path string) (<-chan Event, error) {
    var d net.Dialer
    conn, err := d.DialContext(ctx, "unix", path)
    if err != nil { return nil, errors.Wrap(err, "hyprland event socket") }
    out := make(chan Event, 32)
    go func() {
        <-ctx.Done()
        conn.Close()
    }()
    go func() {
        defer close(out)
        defer conn.Close()
        sc := bufio.NewScanner(conn)
        sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
        for sc.Scan() {
            ev, ok := ParseEvent(sc.Text())
            if !ok { continue }
            select {
            case out <- ev:
            case <-ctx.Done():
                return
            }
        }
    }()
    return out, nil
}
