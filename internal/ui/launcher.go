package ui

import (
    "context"
    "fmt"
    "strings"

    "github.com/charmbracelet/bubbles/textinput"
    tea "github.com/charmbracelet/bubbletea"
    "github.com/dustin/go-humanize"

    "hyprwidgets/internal/launcher"
)

const launcherResults = 50

type runCacheMsg struct {
    exes    []launcher.Executable
    rebuilt bool
    err     error
}

type launchedMsg struct {
    cmdline string
    err     error
}

type launcherPanel struct {
    deps *Deps
    s    stamp

    input   textinput.Model
    exes    []launcher.Executable
    results []launcher.Executable
    cursor  int
    loading bool
    err     error
}

func newLauncherPanel(deps *Deps) *launcherPanel {
    in := textinput.New()
    in.Prompt = "run: "
    in.Placeholder = "command"
    return &launcherPanel{deps: deps, input: in}
}

func (l *launcherPanel) title() string { return "Run" }

// capturing is always true: every printable key belongs to the query.
func (l *launcherPanel) capturing() bool { return true }

func (l *launcherPanel) activate(s stamp) tea.Cmd {
    l.s = s
    l.input.SetValue("")
    l.cursor = 0
    return tea.Batch(l.input.Focus(), l.load(false))
}

func (l *launcherPanel) deactivate() { l.input.Blur() }

func (l *launcherPanel) load(force bool) tea.Cmd {
    if l.deps.RunCache == nil { return nil }
    l.loading = true
    rc := l.deps.RunCache
    return l.s.cmd(func(context.Context) tea.Msg {
        exes, rebuilt, err := rc.Load(force)
        return runCacheMsg{exes: exes, rebuilt: rebuilt, err: err}
    })
}

func (l *launcherPanel) search() {
    l.results = launcher.Search(l.exes, l.input.Value(), launcherResults)
    if l.cursor >= len(l.results) { l.cursor = max(0, len(l.results)-1) }
}

func (l *launcherPanel) update(msg tea.Msg) tea.Cmd {
    switch msg := msg.(type) {
    case runCacheMsg:
        l.loading = false
        l.err = msg.err
        l.exes = msg.exes
        l.search()
        if msg.rebuilt { return status(fmt.Sprintf("indexed %d executables", len(msg.exes))) }
        return nil
    case launchedMsg:
        if msg.err != nil { return status(msg.err.Error()) }
        l.input.SetValue("")
        l.search()
        return status("launched " + msg.cmdline)
    case tea.KeyMsg:
        return l.onKey(msg)
    }
    var cmd tea.Cmd
    l.input, cmd = l.input.Update(msg)
    return cmd
}

func (l *launcherPanel) onKey(msg tea.KeyMsg) tea.Cmd {
    switch msg.String() {
    case "esc":
        if l.input.Value() == "" { return nil }
        l.input.SetValue("")
        l.search()
        return nil
    case "down", "ctrl+n":
        if l.cursor < len(l.results)-1 { l.cursor++ }
        return nil
    case "up", "ctrl+p":
        if l.cursor > 0 { l.cursor-- }
        return nil
    case "ctrl+r":
        return l.load(true)
    case "enter":
        return l.launch(false)
    case "alt+enter":
        return l.launch(true)
    }
    var cmd tea.Cmd
    l.input, cmd = l.input.Update(msg)
    l.cursor = 0
    l.search()
    return cmd
}

// launch runs the highlighted executable with any arguments typed after the
// first word, or the raw query when nothing matches.
func (l *launcherPanel) launch(terminal bool) tea.Cmd {
    query := strings.TrimSpace(l.input.Value())
    if query == "" || l.deps.Launch == nil { return nil }
    cmdline := query
    if len(l.results) > 0 { cmdline = launcher.CommandLine(l.results[l.cursor], query) }
    run := l.deps.Launch.Command
    if terminal { run = l.deps.Launch.InTerminal }
    return l.s.cmd(func(context.Context) tea.Msg {
        return launchedMsg{cmdline: cmdline, err: run(cmdline)}
    })
}

func (l *launcherPanel) cacheLabel() string {
    if l.deps.RunCache == nil { return "no run cache" }
    age, ok := l.deps.RunCache.Age()
    if !ok { return "run cache not built" }
    return fmt.Sprintf("%d executables · indexed %s", len(l.exes), humanize.Time(nowFunc().Add(-age)))
}

func (l *launcherPanel) view(width, height int) string {
    var b strings.Builder
    fmt.Fprintln(&b, l.input.View())
    switch {
    case l.loading:
        fmt.Fprintln(&b, dimStyle.Render("indexing $PATH…"))
    case l.err != nil:
        fmt.Fprintln(&b, warnStyle.Render(l.err.Error()))
    default:
        fmt.Fprintln(&b, dimStyle.Render(l.cacheLabel()))
    }
    rows := max(1, height-4)
    for i, e := range l.results {
        if i >= rows { break }
        line := fmt.Sprintf("%s %-24s %s", cursor(i == l.cursor), e.Name, dimStyle.Render(e.Path))
        if i == l.cursor { line = fmt.Sprintf("%s %-24s %s", cursor(true), selectedStyle.Render(e.Name), dimStyle.Render(e.Path)) }
        fmt.Fprintln(&b, line)
    }
    fmt.Fprint(&b, dimStyle.Render("enter run · alt+enter in terminal · ctrl+r reindex · esc clear"))
    return b.String()
}
