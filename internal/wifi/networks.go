package wifi

import (
    "context"
    "sort"
    "strconv"
    "strings"

    "github.com/samber/lo"

    "hyprwidgets/internal/proc"
)

// Network is one visible access point, merged by SSID.
type Network struct {
    SSID     string
    Strength uint8
    Secure   bool
    Active   bool
    Saved    bool
}

// SortNetworks orders the list for display: the active network first, then by
// signal strength, then by name. Duplicate SSIDs keep their best entry and
// hidden networks are dropped.
func SortNetworks(nets []Network) []Network {
    nets = lo.Filter(nets, func(n Network, _ int) bool { return n.SSID != "" })
    sort.SliceStable(nets, func(i, j int) bool {
        a, b := nets[i], nets[j]
        if a.Active != b.Active { return a.Active }
        if a.Strength != b.Strength { return a.Strength > b.Strength }
        return a.SSID < b.SSID
    })
    return lo.UniqBy(nets, func(n Network) string { return n.SSID })
}

// SplitTerse splits one line of `nmcli -t` output, honouring the \: and \\
// escapes nmcli uses inside fields.
func SplitTerse(line string) []string {
    var (
        out []string
        cur strings.Builder
    )
    for i := 0; i < len(line); i++ {
        c := line[i]
        switch {
        case c == '\\' && i+1 < len(line):
            i++
            cur.WriteByte(line[i])
        case c == ':':
            out = append(out, cur.String())
            cur.Reset()
        default:
            cur.WriteByte(c)
        }
    }
    return append(out, cur.String())
}

// ParseNetworkList reads `nmcli -t -f ACTIVE,SSID,SIGNAL,SECURITY dev wifi list`.
// Malformed lines are skipped.
func ParseNetworkList(out string) []Network {
    var nets []Network
    for _, ln := range (proc.Result{Stdout: out}).Lines() {
        f := SplitTerse(ln)
        if len(f) < 4 { continue }
        sig, err := strconv.Atoi(f[2])
        if err != nil || sig < 0 || sig > 100 { continue }
        sec := strings.TrimSpace(f[3])
        nets = append(nets, Network{
            SSID:     f[1],
            Strength: uint8(sig),
            Secure:   sec != "" && sec != "--",
            Active:   f[0] == "yes",
        })
    }
    return SortNetworks(nets)
}

// ParseActiveSSID reads `nmcli -t -f active,ssid dev wifi` and returns the
// SSID marked active, if any.
func ParseActiveSSID(out string) string {
    for _, ln := range (proc.Result{Stdout: out}).Lines() {
        f := SplitTerse(ln)
        if len(f) >= 2 && f[0] == "yes" { return f[1] }
    }
    return ""
}

// Lister produces the network list.
type Lister interface {
    Networks(ctx context.Context) ([]Network, error)
}

// Nmcli lists networks and toggles the radio through the nmcli binary.
type Nmcli struct {
    R proc.Runner
}

func (n Nmcli) Networks(ctx context.Context) ([]Network, error) {
    out, err := proc.Output(ctx, n.R, "nmcli", "-t", "-f", "ACTIVE,SSID,SIGNAL,SECURITY", "dev", "wifi", "list")
    if err != nil { return nil, err }
    nets := ParseNetworkList(out)
    saved, err := n.SavedSSIDs(ctx)
    if err == nil {
        for i := range nets {
            nets[i].Saved = saved[nets[i].SSID]
        }
    }
    return nets, nil
}

// SavedSSIDs lists wireless profile names from `nmcli -t -f NAME,TYPE connection show`.
func (n Nmcli) SavedSSIDs(ctx context.Context) (map[string]bool, error) {
    out, err := proc.Output(ctx, n.R, "nmcli", "-t", "-f", "NAME,TYPE", "connection", "show")
    if err != nil { return nil, err }
    saved := map[string]bool{}
    for _, ln := range (proc.Result{Stdout: out}).Lines() {
        f := SplitTerse(ln)
        if len(f) == 2 && strings.Contains(f[1], "wireless") { saved[f[0]] = true }
    }
    return saved, nil
}

func (n Nmcli) ActiveSSID(ctx context.Context) (string, error) {
    out, err := proc.Output(ctx, n.R, "nmcli", "-t", "-f", "active,ssid", "dev", "wifi")
    if err != nil { return "", err }
    return ParseActiveSSID(out), nil
}

// Radio reports whether the Wi-Fi radio is enabled.
func (n Nmcli) Radio(ctx context.Context) (bool, error) {
    out, err := proc.Output(ctx, n.R, "nmcli", "radio", "wifi")
    if err != nil { return false, err }
    return out == "enabled", nil
}

func (n Nmcli) SetRadio(ctx context.Context, on bool) error {
    state := "off"
    if on { state = "on" }
    _, err := proc.Output(ctx, n.R, "nmcli", "radio", "wifi", state)
    return err
}

// Disconnect takes the named profile down.
func (n Nmcli) Disconnect(ctx context.Context, ssid string) error {
    _, err := proc.Output(ctx, n.R, "nmcli", "connection", "down", "id", ssid)
    return err
}
