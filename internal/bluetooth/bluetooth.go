// Package bluetooth wraps bluetoothctl.
package bluetooth

import (
    "context"
    "sort"
    "strconv"
    "strings"
    "time"

    "github.com/samber/lo"
    "golang.org/x/sync/errgroup"

    "hyprwidgets/internal/proc"
)

type Device struct {
    Address   string
    Name      string
    Paired    bool
    Connected bool
}

// ParseDevices reads `bluetoothctl devices` lines ("Device AA:BB:.. Name").
// Anything else (agent chatter, blank lines) is skipped.
func ParseDevices(out string) []Device {
    var devs []Device
    for _, ln := range (proc.Result{Stdout: out}).Lines() {
        if !strings.HasPrefix(ln, "Device ") { continue }
        f := strings.SplitN(ln, " ", 3)
        if len(f) < 3 || f[1] == "" { continue }
        devs = append(devs, Device{Address: f[1], Name: strings.TrimSpace(f[2])})
    }
    return devs
}

// SortDevices puts connected devices first, then orders by name.
func SortDevices(devs []Device) {
    sort.SliceStable(devs, func(i, j int) bool {
        if devs[i].Connected != devs[j].Connected { return devs[i].Connected }
        return devs[i].Name < devs[j].Name
    })
}

// Controller drives bluetoothctl.
type Controller struct {
    R proc.Runner
}

func (c Controller) out(ctx context.Context, args ...string) (string, error) {
    return proc.Output(ctx, c.R, "bluetoothctl", args...)
}

// Powered reads the adapter state from `bluetoothctl show`.
func (c Controller) Powered(ctx context.Context) (bool, error) {
    out, err := c.out(ctx, "show")
    if err != nil { return false, err }
    return strings.Contains(out, "Powered: yes"), nil
}

func (c Controller) SetPower(ctx context.Context, on bool) error {
    state := "off"
    if on { state = "on" }
    _, err := c.out(ctx, "power", state)
    return err
}

func (c Controller) Connect(ctx context.Context, addr string) error {
    _, err := c.out(ctx, "connect", addr)
    return err
}

func (c Controller) Disconnect(ctx context.Context, addr string) error {
    _, err := c.out(ctx, "disconnect", addr)
    return err
}

// Devices merges known, paired and connected devices. The three listings run
// in parallel; only the first is required.
func (c Controller) Devices(ctx context.Context) ([]Device, error) {
    var all, paired, connected []Device
    g, gctx := errgroup.WithContext(ctx)
    g.Go(func() error {
        out, err := c.out(gctx, "devices")
        all = ParseDevices(out)
        return err
    })
    g.Go(func() error {
        out, _ := c.out(gctx, "devices", "Paired")
        paired = ParseDevices(out)
        return nil
    })
    g.Go(func() error {
        out, _ := c.out(gctx, "devices", "Connected")
        connected = ParseDevices(out)
        return nil
    })
    if err := g.Wait(); err != nil { return nil, err }

    isPaired := lo.SliceToMap(paired, func(d Device) (string, bool) { return d.Address, true })
    isConn := lo.SliceToMap(connected, func(d Device) (string, bool) { return d.Address, true })
    devs := lo.UniqBy(all, func(d Device) string { return d.Address })
    for i := range devs {
        devs[i].Paired = isPaired[devs[i].Address]
        devs[i].Connected = isConn[devs[i].Address]
    }
    SortDevices(devs)
    return devs, nil
}

// Scan runs discovery for d, then returns. bluetoothctl stops scanning itself
// when the timeout elapses.
func (c Controller) Scan(ctx context.Context, d time.Duration) error {
    secs := int(d / time.Second)
    if secs < 1 { secs = 1 }
    _, err := c.out(ctx, "--timeout", strconv.Itoa(secs), "scan", "on")
    return err
}
