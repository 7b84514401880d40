package hypr

import (
    "context"
    "encoding/json"
    "regexp"

    "github.com/pkg/errors"

    "hyprwidgets/internal/proc"
)

// Client is one window as reported by `hyprctl -j clients`.
type Client struct {
    Address      string `json:"address"`
    Class        string `json:"class"`
    InitialClass string `json:"initialClass"`
    Title        string `json:"title"`
    PID          int    `json:"pid"`
    Mapped       bool   `json:"mapped"`
    Workspace    struct {
        ID   int    `json:"id"`
        Name string `json:"name"`
    } `json:"workspace"`
    FocusHistoryID int `json:"focusHistoryID"`
}

// Ctl runs hyprctl.
type Ctl struct {
    R proc.Runner
}

func (c Ctl) Clients(ctx context.Context) ([]Client, error) {
    out, err := proc.Output(ctx, c.R, "hyprctl", "-j", "clients")
    if err != nil { return nil, err }
    var cs []Client
    if err := json.Unmarshal([]byte(out), &cs); err != nil { return nil, errors.Wrap(err, "hyprctl clients") }
    return cs, nil
}

// FocusClass focuses the most recent window whose class matches exactly.
// The class is quoted so it is matched literally.
func (c Ctl) FocusClass(ctx context.Context, class string) error {
    return c.dispatch(ctx, "focuswindow", "class:^("+regexp.QuoteMeta(class)+")$")
}

func (c Ctl) FocusAddress(ctx context.Context, addr string) error {
    return c.dispatch(ctx, "focuswindow", "address:"+addr)
}

func (c Ctl) dispatch(ctx context.Context, args ...string) error {
    out, err := proc.Output(ctx, c.R, "hyprctl", append([]string{"dispatch"}, args...)...)
    if err != nil { return err }
    // hyprctl exits 0 even when the dispatcher fails
    if out != "" && out != "ok" { return errors.Errorf("hyprctl dispatch %s: %s", args[0], out) }
    return nil
}
