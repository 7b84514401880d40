package ui

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/charmbracelet/bubbles/spinner"
    tea "github.com/charmbracelet/bubbletea"
    "github.com/pkg/errors"
    "golang.org/x/sync/errgroup"

    "hyprwidgets/internal/audio"
    "hyprwidgets/internal/bluetooth"
    "hyprwidgets/internal/brightness"
    "hyprwidgets/internal/poll"
    "hyprwidgets/internal/proc"
    "hyprwidgets/internal/wifi"
)

type section int

const (
    secAudio section = iota
    secBrightness
    secBluetooth
    secWifi
    numSections
)

func (s section) String() string {
    return [...]string{"Audio", "Brightness", "Bluetooth", "Wi-Fi"}[s]
}

const (
    volumeStep     = 5
    brightnessStep = 5
    btScanFor      = 10 * time.Second
)

type audioMsg struct {
    sinks []audio.Sink
    level audio.Level
    err   error
}

type brightMsg struct {
    pct int
    err error
}

type btMsg struct {
    on      bool
    devices []bluetooth.Device
    err     error
}

type wifiMsg struct {
    on       bool
    networks []wifi.Network
    err      error
}

// actionMsg reports a user action; the section is refreshed afterwards.
type actionMsg struct {
    sec  section
    what string
    err  error
}

type wifiStepMsg struct{ a wifi.Attempt }

type wifiDoneMsg struct {
    ssid string
    res  wifi.Result
    err  error
}

type controlPanel struct {
    deps     *Deps
    prompter wifi.Prompter
    appCtx   context.Context
    s        stamp
    pollers  [numSections]*poll.Poller

    focus  section
    cursor [numSections]int

    sinks    []audio.Sink
    level    audio.Level
    audioErr error

    bright    int
    brightErr error

    btOn     bool
    devices  []bluetooth.Device
    btErr    error
    scanning bool

    wifiOn     bool
    networks   []wifi.Network
    wifiErr    error
    connecting string
    step       wifi.Step
    spin       spinner.Model
}

func newControlPanel(deps *Deps, p wifi.Prompter, appCtx context.Context) *controlPanel {
    return &controlPanel{
        deps:     deps,
        prompter: p,
        appCtx:   appCtx,
        spin:     spinner.New(spinner.WithSpinner(spinner.Dot)),
    }
}

func (c *controlPanel) title() string   { return "Control" }
func (c *controlPanel) capturing() bool { return false }

func (c *controlPanel) activate(s stamp) tea.Cmd {
    c.s = s
    cfg := c.deps.Cfg.Intervals
    if c.deps.Audio != nil {
        c.pollers[secAudio] = poll.New(cfg.Audio, func(ctx context.Context) { s.post(fetchAudio(ctx, c.deps.Audio)) })
    }
    if c.deps.Bluetooth != nil {
        c.pollers[secBluetooth] = poll.New(cfg.BluetoothScan, func(ctx context.Context) { s.post(fetchBluetooth(ctx, c.deps.Bluetooth)) })
    }
    if c.deps.WiFi != nil {
        c.pollers[secWifi] = poll.New(cfg.WifiScan, func(ctx context.Context) { s.post(fetchWifi(ctx, c.deps.WiFi)) })
    }
    if b := c.deps.Brightness; b != nil {
        read := func() {
            pct, err := b.Percent(s.ctx())
            if proc.IsCancelled(err) { return }
            s.post(brightMsg{pct: pct, err: err})
        }
        if c.deps.BacklightGlob == "" {
            c.pollers[secBrightness] = poll.New(cfg.Brightness, func(context.Context) { read() })
        } else {
            go read()
            go brightness.Watch(s.ctx(), c.deps.BacklightGlob, cfg.Brightness, read)
        }
    }
    for _, p := range c.pollers {
        if p != nil { p.Start(s.ctx()) }
    }
    if c.connecting != "" { return c.spin.Tick }
    return nil
}

func (c *controlPanel) deactivate() {
    for i, p := range c.pollers {
        if p != nil { p.Stop() }
        c.pollers[i] = nil
    }
}

func (c *controlPanel) refresh(sec section) {
    if p := c.pollers[sec]; p != nil { p.TriggerOnce() }
}

func fetchAudio(ctx context.Context, a Audio) tea.Msg {
    var m audioMsg
    g, gctx := errgroup.WithContext(ctx)
    g.Go(func() (err error) { m.sinks, err = a.Sinks(gctx); return err })
    g.Go(func() (err error) { m.level, err = a.Level(gctx); return err })
    m.err = g.Wait()
    if proc.IsCancelled(m.err) { return nil }
    return m
}

func fetchBluetooth(ctx context.Context, b Bluetooth) tea.Msg {
    var m btMsg
    g, gctx := errgroup.WithContext(ctx)
    g.Go(func() (err error) { m.on, err = b.Powered(gctx); return err })
    g.Go(func() (err error) { m.devices, err = b.Devices(gctx); return err })
    m.err = g.Wait()
    if proc.IsCancelled(m.err) { return nil }
    return m
}

func fetchWifi(ctx context.Context, w WiFi) tea.Msg {
    var m wifiMsg
    g, gctx := errgroup.WithContext(ctx)
    g.Go(func() (err error) { m.on, err = w.Radio(gctx); return err })
    g.Go(func() (err error) { m.networks, err = w.Networks(gctx); return err })
    m.err = g.Wait()
    if proc.IsCancelled(m.err) { return nil }
    return m
}

// do runs an action off the loop and reports it as an actionMsg.
func (c *controlPanel) do(sec section, what string, fn func(ctx context.Context) error) tea.Cmd {
    return c.s.cmd(func(ctx context.Context) tea.Msg {
        err := fn(ctx)
        if proc.IsCancelled(err) { return nil }
        return actionMsg{sec: sec, what: what, err: err}
    })
}

func (c *controlPanel) update(msg tea.Msg) tea.Cmd {
    switch msg := msg.(type) {
    case audioMsg:
        c.audioErr = msg.err
        if msg.err == nil { c.sinks, c.level = msg.sinks, msg.level }
    case brightMsg:
        c.brightErr = msg.err
        if msg.err == nil { c.bright = msg.pct }
    case btMsg:
        c.btErr = msg.err
        if msg.err == nil { c.btOn, c.devices = msg.on, msg.devices }
    case wifiMsg:
        c.wifiErr = msg.err
        if msg.err == nil { c.wifiOn, c.networks = msg.on, msg.networks }
    case actionMsg:
        if msg.sec == secBluetooth && msg.what == "scan" { c.scanning = false }
        c.refresh(msg.sec)
        if msg.err != nil { return status(msg.what + ": " + msg.err.Error()) }
        return status(msg.what)
    case wifiStepMsg:
        if msg.a.SSID == c.connecting { c.step = msg.a.Step }
    case wifiDoneMsg:
        if msg.ssid == c.connecting { c.connecting = "" }
        c.refresh(secWifi)
        return status(describeWifi(msg.res, msg.err))
    case spinner.TickMsg:
        if c.connecting == "" { return nil }
        var cmd tea.Cmd
        c.spin, cmd = c.spin.Update(msg)
        return cmd
    case tea.KeyMsg:
        return c.onKey(msg)
    }
    c.clampCursors()
    return nil
}

func describeWifi(res wifi.Result, err error) string {
    switch {
    case errors.Is(err, wifi.ErrInFlight):
        return "already connecting to " + res.Attempt.SSID
    case res.Outcome == wifi.Connected:
        return "connected to " + res.Attempt.SSID
    case res.Outcome == wifi.Abandoned:
        return "connection to " + res.Attempt.SSID + " cancelled"
    case res.Err != nil:
        return res.Attempt.SSID + ": " + res.Err.Error()
    }
    return res.Attempt.SSID + ": " + res.Outcome.String()
}

func status(s string) tea.Cmd { return func() tea.Msg { return statusMsg(s) } }

func (c *controlPanel) listLen(sec section) int {
    switch sec {
    case secAudio:
        return len(c.sinks)
    case secBluetooth:
        return len(c.devices)
    case secWifi:
        return len(c.networks)
    }
    return 0
}

func (c *controlPanel) clampCursors() {
    for sec := section(0); sec < numSections; sec++ {
        n := c.listLen(sec)
        if c.cursor[sec] >= n { c.cursor[sec] = max(0, n-1) }
    }
}

func (c *controlPanel) onKey(msg tea.KeyMsg) tea.Cmd {
    sec := c.focus
    switch msg.String() {
    case "l", "right":
        c.focus = (c.focus + 1) % numSections
    case "h", "left":
        c.focus = (c.focus + numSections - 1) % numSections
    case "j", "down":
        if c.cursor[sec] < c.listLen(sec)-1 { c.cursor[sec]++ }
    case "k", "up":
        if c.cursor[sec] > 0 { c.cursor[sec]-- }
    case "r":
        for s := section(0); s < numSections; s++ { c.refresh(s) }
    case "+", "=":
        return c.nudge(+1)
    case "-":
        return c.nudge(-1)
    case "m":
        if a := c.deps.Audio; a != nil { return c.do(secAudio, "mute toggled", a.ToggleMute) }
    case "p":
        if b := c.deps.Bluetooth; b != nil {
            on := !c.btOn
            return c.do(secBluetooth, fmt.Sprintf("bluetooth power %s", onOff(on)), func(ctx context.Context) error { return b.SetPower(ctx, on) })
        }
    case "s":
        if b := c.deps.Bluetooth; b != nil && !c.scanning {
            c.scanning = true
            return c.do(secBluetooth, "scan", func(ctx context.Context) error { return b.Scan(ctx, btScanFor) })
        }
    case "w":
        if w := c.deps.WiFi; w != nil {
            on := !c.wifiOn
            return c.do(secWifi, fmt.Sprintf("wi-fi radio %s", onOff(on)), func(ctx context.Context) error { return w.SetRadio(ctx, on) })
        }
    case "d":
        if n, ok := c.selectedNetwork(); ok && n.Active {
            w := c.deps.WiFi
            return c.do(secWifi, "disconnected from "+n.SSID, func(ctx context.Context) error { return w.Disconnect(ctx, n.SSID) })
        }
    case "y":
        if n, ok := c.selectedNetwork(); ok { return copyCmd("SSID", n.SSID) }
    case "enter":
        return c.activateSelected()
    }
    return nil
}

func onOff(on bool) string {
    if on { return "on" }
    return "off"
}

func (c *controlPanel) selectedNetwork() (wifi.Network, bool) {
    if c.deps.WiFi == nil || len(c.networks) == 0 { return wifi.Network{}, false }
    return c.networks[c.cursor[secWifi]], true
}

func (c *controlPanel) nudge(dir int) tea.Cmd {
    switch c.focus {
    case secAudio:
        a := c.deps.Audio
        if a == nil { return nil }
        pct := c.level.Percent + dir*volumeStep
        return c.do(secAudio, fmt.Sprintf("volume %d%%", clamp(pct, 0, audio.MaxPercent)), func(ctx context.Context) error { return a.SetVolume(ctx, pct) })
    case secBrightness:
        b := c.deps.Brightness
        if b == nil { return nil }
        pct := clamp(c.bright+dir*brightnessStep, 1, 100)
        c.bright = pct
        return c.do(secBrightness, fmt.Sprintf("brightness %d%%", pct), func(ctx context.Context) error { return b.Set(ctx, pct) })
    }
    return nil
}

func clamp(v, low, high int) int { return min(max(v, low), high) }

func (c *controlPanel) activateSelected() tea.Cmd {
    switch c.focus {
    case secAudio:
        if len(c.sinks) == 0 { return nil }
        sink := c.sinks[c.cursor[secAudio]]
        a := c.deps.Audio
        return c.do(secAudio, "output: "+sink.Name, func(ctx context.Context) error { return a.SetDefault(ctx, sink.ID) })
    case secBluetooth:
        if len(c.devices) == 0 { return nil }
        d := c.devices[c.cursor[secBluetooth]]
        b := c.deps.Bluetooth
        if d.Connected {
            return c.do(secBluetooth, "disconnected "+d.Name, func(ctx context.Context) error { return b.Disconnect(ctx, d.Address) })
        }
        return c.do(secBluetooth, "connected "+d.Name, func(ctx context.Context) error { return b.Connect(ctx, d.Address) })
    case secWifi:
        n, ok := c.selectedNetwork()
        if !ok || n.Active { return nil }
        return c.connect(n.SSID)
    }
    return nil
}

// connect runs the Wi-Fi chain on the application context so that switching
// panels does not abort a half-done connection. One chain runs at a time.
func (c *controlPanel) connect(ssid string) tea.Cmd {
    w := c.deps.WiFi
    if c.connecting != "" { return status("still connecting to " + c.connecting) }
    if w.Busy(ssid) { return status("already connecting to " + ssid) }
    c.connecting = ssid
    c.step = wifi.TryExisting
    send, ctx := c.s.send, c.appCtx
    go func() {
        res, err := w.Connect(ctx, ssid, c.prompter)
        if ctx.Err() != nil { return }
        if n := c.deps.Notify; n != nil && err == nil && res.Outcome != wifi.Abandoned {
            n.Toast(ctx, "Wi-Fi", describeWifi(res, nil))
        }
        send(wifiDoneMsg{ssid: ssid, res: res, err: err})
    }()
    return c.spin.Tick
}

func (c *controlPanel) view(width, height int) string {
    var b strings.Builder
    for sec := section(0); sec < numSections; sec++ {
        head := sec.String()
        if sec == c.focus {
            head = selectedStyle.Render("▸ " + head)
        } else {
            head = headerStyle.Render("  " + head)
        }
        fmt.Fprintln(&b, head)
        switch sec {
        case secAudio:
            c.viewAudio(&b)
        case secBrightness:
            c.viewBrightness(&b)
        case secBluetooth:
            c.viewBluetooth(&b)
        case secWifi:
            c.viewWifi(&b, height)
        }
        fmt.Fprintln(&b)
    }
    fmt.Fprint(&b, dimStyle.Render("h/l section · j/k move · enter select · +/- level · m mute · p bt power · s scan · w radio · d disconnect · y copy"))
    return b.String()
}

func errLine(b *strings.Builder, err error) bool {
    if err == nil { return false }
    fmt.Fprintln(b, "   "+warnStyle.Render(err.Error()))
    return true
}

func (c *controlPanel) viewAudio(b *strings.Builder) {
    if c.deps.Audio == nil { fmt.Fprintln(b, dimStyle.Render("   unavailable")); return }
    if errLine(b, c.audioErr) && len(c.sinks) == 0 { return }
    muted := ""
    if c.level.Muted { muted = warnStyle.Render(" muted") }
    fmt.Fprintf(b, "   volume %s %d%%%s\n", bar(c.level.Percent, audio.MaxPercent, 20), c.level.Percent, muted)
    for i, s := range c.sinks {
        def := " "
        if s.IsDefault { def = "*" }
        fmt.Fprintf(b, "  %s %s %s\n", cursor(c.focus == secAudio && i == c.cursor[secAudio]), def, s.Name)
    }
}

func (c *controlPanel) viewBrightness(b *strings.Builder) {
    if c.deps.Brightness == nil { fmt.Fprintln(b, dimStyle.Render("   unavailable")); return }
    if errLine(b, c.brightErr) { return }
    fmt.Fprintf(b, "   %s %d%%\n", bar(c.bright, 100, 20), c.bright)
}

func (c *controlPanel) viewBluetooth(b *strings.Builder) {
    if c.deps.Bluetooth == nil { fmt.Fprintln(b, dimStyle.Render("   unavailable")); return }
    errLine(b, c.btErr)
    state := "off"
    if c.btOn { state = "on" }
    if c.scanning { state += " · scanning" }
    fmt.Fprintln(b, "   power "+state)
    for i, d := range c.devices {
        mark := " "
        if d.Connected { mark = "●" } else if d.Paired { mark = "○" }
        fmt.Fprintf(b, "  %s %s %s %s\n", cursor(c.focus == secBluetooth && i == c.cursor[secBluetooth]), mark, d.Name, dimStyle.Render(d.Address))
    }
}

func (c *controlPanel) viewWifi(b *strings.Builder, height int) {
    if c.deps.WiFi == nil { fmt.Fprintln(b, dimStyle.Render("   unavailable")); return }
    errLine(b, c.wifiErr)
    state := "off"
    if c.wifiOn { state = "on" }
    if c.connecting != "" { state += fmt.Sprintf(" · %s %s (%s)", c.spin.View(), c.connecting, c.step) }
    fmt.Fprintln(b, "   radio "+state)
    limit := max(3, height-20)
    for i, n := range c.networks {
        if i >= limit { break }
        mark := " "
        if n.Active { mark = "●" } else if n.Saved { mark = "○" }
        lock := " "
        if n.Secure { lock = "🔒" }
        fmt.Fprintf(b, "  %s %s %s %3d%% %s\n", cursor(c.focus == secWifi && i == c.cursor[secWifi]), mark, lock, n.Strength, n.SSID)
    }
}

func bar(v, top, width int) string {
    if top <= 0 { return "" }
    n := clamp(v*width/top, 0, width)
    return "[" + strings.Repeat("█", n) + strings.Repeat("·", width-n) + "]"
}
