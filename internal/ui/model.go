package ui

import (
    "context"
    "fmt"
    "strings"
    "sync"
    "time"

    "github.com/charmbracelet/bubbles/textinput"
    tea "github.com/charmbracelet/bubbletea"
    "github.com/charmbracelet/lipgloss"
    "github.com/sirupsen/logrus"

    "hyprwidgets/internal/logging"
    "hyprwidgets/internal/proc"
    "hyprwidgets/internal/theme"
    "hyprwidgets/internal/wifi"
)

// panel is one tab. Panels live on the event loop; only activate hands work
// to other goroutines, and everything those goroutines produce comes back as
// a stamped message.
type panel interface {
    title() string
    // activate starts the panel's pollers and subscriptions.
    activate(s stamp) tea.Cmd
    // deactivate stops them; results still in flight are dropped.
    deactivate()
    update(msg tea.Msg) tea.Cmd
    view(width, height int) string
    // capturing reports that a text field has the keyboard.
    capturing() bool
}

// stamp identifies one activation of one panel. Async results carry the stamp
// they were started under and are dropped when it is no longer current.
type stamp struct {
    panel int
    epoch int
    owner *proc.Owner
    send  func(tea.Msg)
}

func (s stamp) ctx() context.Context { return s.owner.Context() }

// post delivers msg to the panel unless the activation has ended. Sending
// blocks until the loop receives, so the owner lock is not held across it;
// whatever slips past a concurrent Close is dropped by the epoch check.
func (s stamp) post(msg tea.Msg) {
    if !s.owner.Alive() { return }
    s.send(panelMsg{panel: s.panel, epoch: s.epoch, msg: msg})
}

// cmd runs fn as a tea.Cmd under the activation's context.
func (s stamp) cmd(fn func(ctx context.Context) tea.Msg) tea.Cmd {
    return func() tea.Msg {
        msg := fn(s.ctx())
        if msg == nil || !s.owner.Alive() { return nil }
        return panelMsg{panel: s.panel, epoch: s.epoch, msg: msg}
    }
}

type panelMsg struct {
    panel int
    epoch int
    msg   tea.Msg
}

type statusMsg string

var nowFunc = time.Now

// sender forwards messages into the program once it exists.
type sender struct {
    mu sync.RWMutex
    fn func(tea.Msg)
}

func (s *sender) set(fn func(tea.Msg)) {
    s.mu.Lock()
    s.fn = fn
    s.mu.Unlock()
}

func (s *sender) send(msg tea.Msg) {
    s.mu.RLock()
    fn := s.fn
    s.mu.RUnlock()
    if fn != nil { fn(msg) }
}

// Panel names accepted by --panel.
var PanelNames = []string{"control", "lyrics", "dock", "launcher", "planner"}

type Model struct {
    width  int
    height int

    deps   *Deps
    log    logrus.FieldLogger
    th     theme.Theme
    ctx    context.Context
    cancel context.CancelFunc
    out    *sender

    panels []panel
    epochs []int
    active int
    stamp  stamp

    prompt   *passwordPrompt
    pending  []passwordRequest
    help     bool
    helpText string
    status   string
}

// NewModel builds the root model. Attach must be called with the program
// before it runs so background work can reach the loop.
func NewModel(deps *Deps, th theme.Theme, initial string) *Model {
    if deps.Log == nil { deps.Log = logging.Discard() }
    ctx, cancel := context.WithCancel(context.Background())
    m := &Model{
        deps:   deps,
        log:    deps.Log,
        th:     th,
        ctx:    ctx,
        cancel: cancel,
        out:    &sender{},
    }
    m.panels = []panel{
        newControlPanel(deps, m.prompter(), ctx),
        newLyricsPanel(deps),
        newDockPanel(deps),
        newLauncherPanel(deps),
        newPlannerPanel(deps),
    }
    if svc, ok := deps.WiFi.(*wifi.Service); ok && svc.Chain != nil {
        svc.Chain.OnStep = func(a wifi.Attempt) { m.out.send(wifiStepMsg{a: a}) }
    }
    m.epochs = make([]int, len(m.panels))
    for i, name := range PanelNames {
        if name == initial { m.active = i }
    }
    applyTheme(th)
    return m
}

// Attach connects the model to the program that runs it.
func (m *Model) Attach(p *tea.Program) { m.out.set(p.Send) }

// Close cancels all background work. It is safe to call more than once.
func (m *Model) Close() {
    if m.stamp.owner != nil {
        m.panels[m.active].deactivate()
        m.stamp.owner.Close()
        m.stamp.owner = nil
    }
    m.cancel()
}

func (m *Model) Init() tea.Cmd {
    return tea.Batch(m.switchTo(m.active), m.watchTheme())
}

func (m *Model) switchTo(i int) tea.Cmd {
    if m.stamp.owner != nil {
        m.panels[m.active].deactivate()
        m.stamp.owner.Close()
    }
    m.active = i
    m.epochs[i]++
    m.stamp = stamp{panel: i, epoch: m.epochs[i], owner: proc.NewOwner(m.ctx), send: m.out.send}
    m.status = ""
    return m.panels[i].activate(m.stamp)
}

func (m *Model) watchTheme() tea.Cmd {
    ch, err := theme.Watch(m.ctx, m.th.Mode, m.deps.Theme, m.log)
    if err != nil {
        m.log.WithError(err).Debug("theme hot reload off")
        return nil
    }
    return waitTheme(ch)
}

func waitTheme(ch <-chan theme.Theme) tea.Cmd {
    return func() tea.Msg {
        th, ok := <-ch
        if !ok { return nil }
        return themeChanged{th: th, next: waitTheme(ch)}
    }
}

type themeChanged struct {
    th   theme.Theme
    next tea.Cmd
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
    switch msg := msg.(type) {
    case tea.WindowSizeMsg:
        m.width, m.height = msg.Width, msg.Height
        m.helpText = ""
        return m, nil

    case panelMsg:
        if msg.panel != m.active || msg.epoch != m.epochs[msg.panel] { return m, nil }
        return m, m.panels[m.active].update(msg.msg)

    case themeChanged:
        m.th = msg.th
        applyTheme(msg.th)
        m.helpText = ""
        return m, msg.next

    case statusMsg:
        m.status = string(msg)
        return m, nil

    case passwordRequest:
        m.pending = append(m.pending, msg)
        return m, m.nextPrompt()

    case wifiDoneMsg, wifiStepMsg:
        // the chain outlives panel switches, so its messages are not stamped
        return m, m.panels[0].update(msg)

    case tea.KeyMsg:
        if m.prompt != nil { return m, m.updatePrompt(msg) }
        switch msg.String() {
        case "ctrl+c":
            return m.quit()
        case "tab":
            return m, m.switchTo((m.active + 1) % len(m.panels))
        case "shift+tab":
            return m, m.switchTo((m.active + len(m.panels) - 1) % len(m.panels))
        }
        if m.panels[m.active].capturing() { return m, m.panels[m.active].update(msg) }
        switch msg.String() {
        case "q":
            return m.quit()
        case "?":
            m.help = !m.help
            return m, nil
        case "1", "2", "3", "4", "5":
            i := int(msg.String()[0] - '1')
            if i != m.active { return m, m.switchTo(i) }
            return m, nil
        case "esc":
            if m.help { m.help = false; return m, nil }
        }
        return m, m.panels[m.active].update(msg)
    }
    if m.prompt != nil {
        var cmd tea.Cmd
        m.prompt.input, cmd = m.prompt.input.Update(msg)
        return m, cmd
    }
    return m, m.panels[m.active].update(msg)
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
    for _, req := range m.pending {
        req.reply <- promptReply{err: wifi.ErrUserCancelled}
    }
    m.pending = nil
    if m.prompt != nil {
        m.prompt.req.reply <- promptReply{err: wifi.ErrUserCancelled}
        m.prompt = nil
    }
    m.Close()
    return m, tea.Quit
}

func (m *Model) View() string {
    var b strings.Builder
    tabs := make([]string, len(m.panels))
    for i, p := range m.panels {
        label := fmt.Sprintf(" %d %s ", i+1, p.title())
        if i == m.active {
            tabs[i] = activeTabStyle.Render(label)
        } else {
            tabs[i] = tabStyle.Render(label)
        }
    }
    fmt.Fprintln(&b, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
    fmt.Fprintln(&b, ruleStyle.Render(strings.Repeat("─", max(10, m.width))))

    bodyHeight := max(3, m.height-4)
    switch {
    case m.prompt != nil:
        b.WriteString(m.prompt.view())
    case m.help:
        b.WriteString(m.renderHelp())
    default:
        b.WriteString(m.panels[m.active].view(m.width, bodyHeight))
    }

    if m.status != "" {
        fmt.Fprintln(&b)
        fmt.Fprint(&b, statusStyle.Render(m.status))
    }
    return b.String()
}

// passwordRequest is how the Wi-Fi chain asks for a password from its own
// goroutine. The reply channel is buffered so answering never blocks the loop.
type passwordRequest struct {
    ssid  string
    reply chan promptReply
}

type promptReply struct {
    password string
    err      error
}

// prompter bridges wifi.Prompter onto the event loop.
func (m *Model) prompter() wifi.Prompter {
    return wifi.PrompterFunc(func(ctx context.Context, ssid string) (string, error) {
        reply := make(chan promptReply, 1)
        m.out.send(passwordRequest{ssid: ssid, reply: reply})
        select {
        case r := <-reply:
            return r.password, r.err
        case <-ctx.Done():
            return "", ctx.Err()
        }
    })
}

type passwordPrompt struct {
    req   passwordRequest
    input textinput.Model
}

func (m *Model) nextPrompt() tea.Cmd {
    if m.prompt != nil || len(m.pending) == 0 { return nil }
    req := m.pending[0]
    m.pending = m.pending[1:]
    in := textinput.New()
    in.Placeholder = "password"
    in.EchoMode = textinput.EchoPassword
    in.EchoCharacter = '•'
    in.CharLimit = 63
    m.prompt = &passwordPrompt{req: req, input: in}
    return m.prompt.input.Focus()
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
    switch msg.String() {
    case "esc", "ctrl+c":
        m.prompt.req.reply <- promptReply{err: wifi.ErrUserCancelled}
        m.prompt = nil
        return m.nextPrompt()
    case "enter":
        pw := m.prompt.input.Value()
        if pw == "" { return nil }
        m.prompt.req.reply <- promptReply{password: pw}
        m.prompt = nil
        return m.nextPrompt()
    }
    var cmd tea.Cmd
    m.prompt.input, cmd = m.prompt.input.Update(msg)
    return cmd
}

func (p *passwordPrompt) view() string {
    body := fmt.Sprintf("Password for %s\n\n%s\n\n%s",
        titleStyle.Render(p.req.ssid), p.input.View(), statusStyle.Render("enter connect · esc cancel"))
    return boxStyle.Render(body)
}
