package ui

import (
    "context"
    "fmt"
    "strings"

    "github.com/charmbracelet/bubbles/textinput"
    tea "github.com/charmbracelet/bubbletea"

    "hyprwidgets/internal/dock"
    "hyprwidgets/internal/hypr"
    "hyprwidgets/internal/proc"
)

type clientsMsg struct {
    clients []hypr.Client
    err     error
}

type windowEventMsg struct{ ev hypr.Event }

type pinnedMsg struct {
    apps []dock.App
    err  error
}

type dockPanel struct {
    deps  *Deps
    s     stamp
    state *dock.State

    items   []dock.Item
    cursor  int
    filter  textinput.Model
    editing bool
    err     error
    pinErr  error // last pinned load failure; blocks saves until a load succeeds
    live    bool
}

func newDockPanel(deps *Deps) *dockPanel {
    in := textinput.New()
    in.Prompt = "/"
    in.Placeholder = "filter"
    return &dockPanel{deps: deps, state: dock.NewState(nil), filter: in}
}

func (d *dockPanel) title() string   { return "Dock" }
func (d *dockPanel) capturing() bool { return d.editing }

func (d *dockPanel) activate(s stamp) tea.Cmd {
    d.s = s
    d.live = false
    if d.deps.WindowEvents != nil {
        if ch, err := d.deps.WindowEvents(s.ctx()); err == nil {
            d.live = true
            go func() {
                for ev := range ch { s.post(windowEventMsg{ev: ev}) }
            }()
        } else {
            d.deps.Log.WithError(err).Debug("hyprland events unavailable")
        }
    }
    return tea.Batch(d.loadPinned(), d.loadClients())
}

func (d *dockPanel) deactivate() {}

func (d *dockPanel) loadPinned() tea.Cmd {
    if d.deps.Pinned == nil { return nil }
    st := d.deps.Pinned
    return d.s.cmd(func(context.Context) tea.Msg {
        apps, err := st.Load()
        return pinnedMsg{apps: apps, err: err}
    })
}

func (d *dockPanel) loadClients() tea.Cmd {
    if d.deps.Windows == nil { return nil }
    w := d.deps.Windows
    return d.s.cmd(func(ctx context.Context) tea.Msg {
        cs, err := w.Clients(ctx)
        if proc.IsCancelled(err) { return nil }
        return clientsMsg{clients: cs, err: err}
    })
}

func (d *dockPanel) refreshItems() {
    d.items = dock.Filter(d.state.Items(), strings.TrimSpace(d.filter.Value()))
    if d.cursor >= len(d.items) { d.cursor = max(0, len(d.items)-1) }
}

func (d *dockPanel) update(msg tea.Msg) tea.Cmd {
    switch msg := msg.(type) {
    case pinnedMsg:
        d.pinErr = msg.err
        if msg.err == nil { d.state.Pinned = msg.apps }
        d.refreshItems()
    case clientsMsg:
        d.err = msg.err
        if msg.err == nil { d.state.Reset(msg.clients) }
        d.refreshItems()
    case windowEventMsg:
        if d.state.Apply(msg.ev) { d.refreshItems() }
    case tea.KeyMsg:
        if d.editing { return d.editKey(msg) }
        return d.onKey(msg)
    default:
        if d.editing {
            var cmd tea.Cmd
            d.filter, cmd = d.filter.Update(msg)
            return cmd
        }
    }
    return nil
}

func (d *dockPanel) editKey(msg tea.KeyMsg) tea.Cmd {
    switch msg.String() {
    case "esc":
        d.filter.SetValue("")
        fallthrough
    case "enter":
        d.editing = false
        d.filter.Blur()
        d.refreshItems()
        return nil
    }
    var cmd tea.Cmd
    d.filter, cmd = d.filter.Update(msg)
    d.refreshItems()
    return cmd
}

func (d *dockPanel) selected() (dock.Item, bool) {
    if len(d.items) == 0 { return dock.Item{}, false }
    return d.items[d.cursor], true
}

func (d *dockPanel) onKey(msg tea.KeyMsg) tea.Cmd {
    switch msg.String() {
    case "j", "down":
        if d.cursor < len(d.items)-1 { d.cursor++ }
    case "k", "up":
        if d.cursor > 0 { d.cursor-- }
    case "/":
        d.editing = true
        return d.filter.Focus()
    case "r":
        return d.loadClients()
    case "enter":
        it, ok := d.selected()
        if !ok || d.deps.Windows == nil || d.deps.Launch == nil { return nil }
        w, launch := d.deps.Windows, d.deps.Launch
        return d.s.cmd(func(ctx context.Context) tea.Msg {
            if err := dock.Activate(ctx, it, w, launch.Command); err != nil { return statusMsg(err.Error()) }
            return nil
        })
    case "p":
        it, ok := d.selected()
        if !ok { return nil }
        if d.pinErr != nil { return status("pinned apps not loaded, not saving: " + d.pinErr.Error()) }
        if it.Pinned {
            d.state.Pinned = dock.Unpin(d.state.Pinned, it.Class)
        } else {
            d.state.Pinned = dock.Pin(d.state.Pinned, dock.App{Class: it.Class, Exec: d.guessExec(it.Class)})
        }
        return d.savePinned()
    case "J", "K":
        it, ok := d.selected()
        if !ok || !it.Pinned { return nil }
        if d.pinErr != nil { return status("pinned apps not loaded, not saving: " + d.pinErr.Error()) }
        delta := 1
        if msg.String() == "K" { delta = -1 }
        d.state.Pinned = dock.Move(d.state.Pinned, it.Class, delta)
        cmd := d.savePinned()
        d.follow(it.Class)
        return cmd
    }
    return nil
}

// follow puts the cursor on the shown item with class, if any.
func (d *dockPanel) follow(class string) {
    for i, it := range d.items {
        if it.Class == class {
            d.cursor = i
            return
        }
    }
}

// guessExec uses the lowercase class as the command, which is right for
// most applications; the user can edit the pinned file for the rest.
func (d *dockPanel) guessExec(class string) string {
    return strings.ToLower(class)
}

func (d *dockPanel) savePinned() tea.Cmd {
    d.refreshItems()
    if d.deps.Pinned == nil { return nil }
    st, apps := d.deps.Pinned, append([]dock.App(nil), d.state.Pinned...)
    return func() tea.Msg {
        if err := st.Save(apps); err != nil { return statusMsg("save pinned: " + err.Error()) }
        return nil
    }
}

func (d *dockPanel) view(width, height int) string {
    var b strings.Builder
    if d.editing || d.filter.Value() != "" { fmt.Fprintln(&b, d.filter.View()) }
    if d.err != nil { fmt.Fprintln(&b, warnStyle.Render(d.err.Error())) }
    if d.pinErr != nil { fmt.Fprintln(&b, warnStyle.Render("pinned apps: "+d.pinErr.Error())) }
    if !d.live && d.deps.WindowEvents != nil { fmt.Fprintln(&b, dimStyle.Render("not live: press r to refresh")) }
    if len(d.items) == 0 { fmt.Fprintln(&b, dimStyle.Render("no pinned or running apps")) }
    for i, it := range d.items {
        if i >= height-3 { break }
        pin := " "
        if it.Pinned { pin = "📌" }
        run := dimStyle.Render("·")
        if it.Running() { run = selectedStyle.Render(strings.Repeat("●", min(it.Windows, 5))) }
        fmt.Fprintf(&b, "%s %s %-30s %s\n", cursor(i == d.cursor), pin, it.Class, run)
    }
    fmt.Fprint(&b, dimStyle.Render("enter focus/launch · p pin/unpin · J/K move · / filter · r refresh"))
    return b.String()
}
